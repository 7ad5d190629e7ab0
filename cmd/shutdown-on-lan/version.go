package main

import (
	"runtime"

	"github.com/shutdown-on-lan/shutdown-on-lan/internal/version"
	"github.com/spf13/cobra"
)

type versionView struct {
	Version string `json:"version" yaml:"version"`
	Release string `json:"release" yaml:"release"`
	Go      string `json:"go" yaml:"go"`
	Target  string `json:"target" yaml:"target"`
}

func newVersionCommand() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:           "version",
		Short:         "Show the build version",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runVersion,
	}
	addOutputFlag(versionCmd)
	return versionCmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	out, err := newOutputFormatter(cmd)
	if err != nil {
		return err
	}

	v := version.String()
	if out.Structured() {
		return out.Print(versionView{
			Version: v,
			Release: version.Release(v),
			Go:      runtime.Version(),
			Target:  runtime.GOOS + "/" + runtime.GOARCH,
		})
	}
	out.Printf("shutdown-on-lan %s (%s, %s/%s)\n", version.FormatVersion(v), runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}
