package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

const scriptTestLayer = `
packages:
  network:
    lan:
      type: interface
      options:
        proto: static
        ipaddr: 192.168.1.1
      lists:
        dns: [1.1.1.1, 9.9.9.9]
`

func writeLayer(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "base.yaml")
	if err := os.WriteFile(path, []byte(scriptTestLayer), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func resetScriptFlags() {
	scriptCommit = false
	scriptReload = false
	scriptOutput = ""
}

func TestScriptCommandRendersCommands(t *testing.T) {
	defer resetScriptFlags()
	scriptCommit = true

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	if err := runScript(cmd, []string{writeLayer(t)}); err != nil {
		t.Fatalf("runScript failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"#!/bin/sh",
		"uci set network.lan='interface'",
		"uci set network.lan.proto='static'",
		"uci add_list network.lan.dns='1.1.1.1'",
		"uci commit",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("script output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "wifi reload") {
		t.Error("script output should not reload without --reload")
	}
}

func TestScriptCommandWritesFile(t *testing.T) {
	defer resetScriptFlags()
	scriptOutput = filepath.Join(t.TempDir(), "provision.sh")

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	if err := runScript(cmd, []string{writeLayer(t)}); err != nil {
		t.Fatalf("runScript failed: %v", err)
	}

	data, err := os.ReadFile(scriptOutput)
	if err != nil {
		t.Fatalf("script file not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "#!/bin/sh") {
		t.Errorf("script file should start with a shebang, got %q", string(data)[:20])
	}
}

func TestScriptCommandMissingLayer(t *testing.T) {
	defer resetScriptFlags()

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	if err := runScript(cmd, []string{filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
		t.Error("expected an error for a missing layer")
	}
}
