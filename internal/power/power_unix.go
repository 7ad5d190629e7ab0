//go:build !windows

package power

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// Command runs an external program to power off the machine.
type Command struct {
	Path string
	Args []string
}

// System returns the trigger for this platform: "shutdown -h now".
func System() Trigger {
	return Command{Path: "shutdown", Args: []string{"-h", "now"}}
}

func (c Command) Shutdown() error {
	cmd := exec.Command(c.Path, c.Args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(output.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", c.Path, err, msg)
		}
		return fmt.Errorf("%s: %w", c.Path, err)
	}
	return nil
}
