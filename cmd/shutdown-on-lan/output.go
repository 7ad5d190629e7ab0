package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// OutputFormatter prints command results as text, JSON or YAML.
type OutputFormatter struct {
	format string
	w      io.Writer
}

// newOutputFormatter creates a formatter from the command's --output flag.
func newOutputFormatter(cmd *cobra.Command) (*OutputFormatter, error) {
	format, _ := cmd.Flags().GetString("output")
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "", formatText:
		format = formatText
	case formatJSON, formatYAML:
	default:
		return nil, usageError{msg: fmt.Sprintf("unknown output format %q (want text, json or yaml)", format)}
	}
	return &OutputFormatter{format: format, w: cmd.OutOrStdout()}, nil
}

// Structured reports whether data is printed as JSON or YAML.
func (f *OutputFormatter) Structured() bool {
	return f.format != formatText
}

// Print writes data in the structured format.
func (f *OutputFormatter) Print(data interface{}) error {
	switch f.format {
	case formatYAML:
		out, err := yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		_, err = f.w.Write(out)
		return err
	default:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(f.w, string(out))
		return err
	}
}

// Println writes a text line.
func (f *OutputFormatter) Println(a ...interface{}) {
	fmt.Fprintln(f.w, a...)
}

// Printf writes formatted text.
func (f *OutputFormatter) Printf(format string, a ...interface{}) {
	fmt.Fprintf(f.w, format, a...)
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", formatText, "Output format (text|json|yaml)")
}
