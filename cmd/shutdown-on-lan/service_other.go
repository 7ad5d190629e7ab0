//go:build !windows

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "install",
		Short:         "Create the default configuration (service registration is Windows only)",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInstall,
	}
}

func newUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "uninstall",
		Short:         "Remove the Windows service (no-op on this platform)",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Uninstallation is only required on Windows")
			return nil
		},
	}
}

func runDefault(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), "Running in standalone mode")
	return runStandalone(cmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	if _, _, err := loadConfiguration(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Installation is only required on Windows")
	return nil
}
