package transport

import (
	"fmt"
)

// ExecResult carries the three outputs of one remote command.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Connection is the boundary between the core and whatever carries commands
// to a device. The core never depends on whether this is SSH, serial, or a
// test double.
type Connection interface {
	// Connect establishes the session. Calling Connect on an established
	// connection is a no-op.
	Connect() error
	// Execute runs one shell command on the device.
	Execute(command string) (ExecResult, error)
	// Close tears down the session. Safe to call more than once.
	Close() error
}

// ConnectionError reports a failure to reach or authenticate with a device.
type ConnectionError struct {
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ExecError reports a staged command that the device rejected with a
// nonzero exit code.
type ExecError struct {
	Command  string
	Stderr   string
	ExitCode int
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("command %q failed with exit code %d: %s", e.Command, e.ExitCode, e.Stderr)
}

// Run executes a command and converts nonzero exits into an ExecError so
// callers can treat transport failures and command failures uniformly.
func Run(conn Connection, command string) (string, error) {
	res, err := conn.Execute(command)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return res.Stdout, &ExecError{Command: command, Stderr: res.Stderr, ExitCode: res.ExitCode}
	}
	return res.Stdout, nil
}

// FetchPackage dumps one UCI package's configuration from the device.
func FetchPackage(conn Connection, pkg string) (string, error) {
	return Run(conn, "uci export "+pkg)
}

// Revert discards all pending (uncommitted) changes on the device.
func Revert(conn Connection) error {
	_, err := Run(conn, "uci revert")
	return err
}

// DeferredCommitCommand builds the device-local commit instruction: the
// device sleeps for delaySeconds on its own clock, then commits pending
// changes and restarts the affected services. The command detaches
// immediately, so dispatch latency does not skew commit timing between
// devices. This approximates simultaneity; it is best-effort, not a
// coordinated-commit guarantee.
func DeferredCommitCommand(delaySeconds int) string {
	return fmt.Sprintf(
		"nohup sh -c 'sleep %d && uci commit && /etc/init.d/network restart && wifi reload' >/dev/null 2>&1 &",
		delaySeconds)
}

// DispatchDeferredCommit schedules the deferred commit on the device and
// returns once the device accepted the instruction. It does not wait for
// the device-side timer.
func DispatchDeferredCommit(conn Connection, delaySeconds int) error {
	_, err := Run(conn, DeferredCommitCommand(delaySeconds))
	return err
}
