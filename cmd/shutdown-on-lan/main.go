package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/shutdown-on-lan/shutdown-on-lan/internal/config"
	"github.com/shutdown-on-lan/shutdown-on-lan/internal/power"
	"github.com/shutdown-on-lan/shutdown-on-lan/internal/version"
	"github.com/spf13/cobra"
)

const (
	exitFailure = 1
	exitUsage   = 64 // EX_USAGE
)

// Seams replaced by tests.
var (
	openStore     = config.NewPlatformStore
	systemTrigger = power.System
	resolvePaths  = config.CurrentPaths
)

// usageError reports invalid command-line usage; main exits with EX_USAGE.
type usageError struct {
	msg string
}

func (e usageError) Error() string {
	return e.msg
}

func main() {
	rootCmd := newRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var usage usageError
		if errors.As(err, &usage) {
			os.Exit(exitUsage)
		}
		os.Exit(exitFailure)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shutdown-on-lan",
		Short: "Remotely shut down this machine with a shared secret",
		Long: `shutdown-on-lan implements the opposite of wake-on-LAN: it listens on a TCP
port and powers the machine off when a client sends the configured secret.

Without a subcommand the listener is started (as a service when launched by
the Windows service manager).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDefault,
	}
	rootCmd.Version = version.FormatVersion(version.String())
	rootCmd.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})

	rootCmd.PersistentFlags().Bool("verbose", false, "Log per-connection debug output")
	rootCmd.PersistentFlags().String("log-file", "", "Also append log output to this file")
	addRunFlags(rootCmd)

	rootCmd.AddCommand(
		newGetCommand(),
		newSetCommand(),
		newResetCommand(),
		newRunCommand(),
		newAttemptsCommand(),
		newInstallCommand(),
		newUninstallCommand(),
		newVersionCommand(),
	)
	return rootCmd
}
