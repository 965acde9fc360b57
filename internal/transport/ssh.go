package transport

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"ucifleet/pkg/logging"

	"golang.org/x/crypto/ssh"
)

// SSHConnection talks to a device over SSH. Zero-value fields fall back to
// the usual defaults: port 22, user root.
//
// The executor may Close a connection from another goroutine to abort a
// stuck worker, so access to the client is mutex-guarded and Execute works
// on a snapshot of the client pointer.
type SSHConnection struct {
	Host     string
	Port     int
	User     string
	Password string
	KeyFile  string
	Timeout  time.Duration

	mu     sync.Mutex
	client *ssh.Client
}

var _ Connection = (*SSHConnection)(nil)

// Connect dials the device and authenticates. Idempotent.
func (c *SSHConnection) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.connectLocked()
	return err
}

func (c *SSHConnection) connectLocked() (*ssh.Client, error) {
	if c.client != nil {
		return c.client, nil
	}

	config, err := c.clientConfig()
	if err != nil {
		return nil, &ConnectionError{Target: c.Host, Err: err}
	}

	address := net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.port()))
	client, err := ssh.Dial("tcp", address, config)
	if err != nil {
		return nil, &ConnectionError{Target: c.Host, Err: err}
	}

	c.client = client
	logging.Debug("SSH", "connected to %s", address)
	return client, nil
}

// Execute runs one command in a fresh session, connecting first if needed.
// A concurrent Close surfaces as a session error, never a crash.
func (c *SSHConnection) Execute(command string) (ExecResult, error) {
	c.mu.Lock()
	client, err := c.connectLocked()
	c.mu.Unlock()
	if err != nil {
		return ExecResult{}, err
	}

	session, err := client.NewSession()
	if err != nil {
		return ExecResult{}, &ConnectionError{Target: c.Host, Err: err}
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	exitCode := 0
	if err := session.Run(command); err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitStatus()
		} else {
			return ExecResult{}, &ConnectionError{Target: c.Host, Err: err}
		}
	}

	return ExecResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode}, nil
}

// Close tears down the SSH client. Safe to call repeatedly and from a
// goroutine other than the one executing commands.
func (c *SSHConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

func (c *SSHConnection) port() int {
	if c.Port == 0 {
		return 22
	}
	return c.Port
}

func (c *SSHConnection) user() string {
	if c.User == "" {
		return "root"
	}
	return c.User
}

func (c *SSHConnection) clientConfig() (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod

	if c.KeyFile != "" {
		key, err := os.ReadFile(c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading ssh key %s: %w", c.KeyFile, err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("parsing ssh key %s: %w", c.KeyFile, err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if c.Password != "" {
		auth = append(auth, ssh.Password(c.Password))
	}
	if len(auth) == 0 {
		return nil, fmt.Errorf("no ssh auth configured for %s", c.Host)
	}

	return &ssh.ClientConfig{
		User: c.user(),
		Auth: auth,
		// Router fleets are provisioned devices on trusted management
		// networks; host keys churn on every reflash.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.Timeout,
	}, nil
}
