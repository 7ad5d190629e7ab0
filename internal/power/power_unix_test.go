//go:build !windows

package power

import (
	"strings"
	"testing"
)

func TestSystemRunsShutdownNow(t *testing.T) {
	cmd, ok := System().(Command)
	if !ok {
		t.Fatalf("System() = %T; want Command", System())
	}
	if cmd.Path != "shutdown" || strings.Join(cmd.Args, " ") != "-h now" {
		t.Fatalf("unexpected command %s %v", cmd.Path, cmd.Args)
	}
}

func TestCommandSuccess(t *testing.T) {
	if err := (Command{Path: "sh", Args: []string{"-c", "exit 0"}}).Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestCommandFailureIncludesOutput(t *testing.T) {
	err := Command{Path: "sh", Args: []string{"-c", "echo must be root >&2; exit 1"}}.Shutdown()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "must be root") {
		t.Fatalf("error should carry command output, got %v", err)
	}
}

func TestCommandMissingBinary(t *testing.T) {
	err := Command{Path: "/nonexistent/shutdown-binary"}.Shutdown()
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}
