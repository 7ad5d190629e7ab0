package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// setupLogging sends the standard logger to stdout and, when logPath is
// set, to an append-mode log file as well. The returned function closes
// the file.
func setupLogging(stdout io.Writer, logPath string) (func(), error) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if logPath == "" {
		log.SetOutput(stdout)
		return func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		log.SetOutput(stdout)
		return func() {}, fmt.Errorf("create log directory: %w", err)
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.SetOutput(stdout)
		return func() {}, fmt.Errorf("open log file: %w", err)
	}

	log.SetOutput(io.MultiWriter(stdout, logFile))
	log.Printf("=== shutdown-on-lan starting (PID: %d) ===", os.Getpid())
	log.Printf("Log file: %s", logPath)
	return func() { logFile.Close() }, nil
}

// setupCommandLogging applies the persistent logging flags of cmd. One-shot
// commands log to stderr so their stdout stays parseable; the listener logs
// to stdout.
func setupCommandLogging(cmd *cobra.Command) func() {
	return setupCommandLoggingTo(cmd, cmd.ErrOrStderr())
}

func setupCommandLoggingTo(cmd *cobra.Command, w io.Writer) func() {
	logPath, _ := cmd.Flags().GetString("log-file")
	closeLog, err := setupLogging(w, logPath)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to initialise logging: %v\n", err)
	}
	return closeLog
}
