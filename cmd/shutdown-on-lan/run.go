package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shutdown-on-lan/shutdown-on-lan/internal/config"
	"github.com/shutdown-on-lan/shutdown-on-lan/internal/journal"
	"github.com/shutdown-on-lan/shutdown-on-lan/internal/listener"
	"github.com/spf13/cobra"
)

const defaultJournalRetention = 30 * 24 * time.Hour

// runOptions carries the flags shared by standalone and service mode.
type runOptions struct {
	Verbose          bool
	NoJournal        bool
	JournalRetention time.Duration
}

func newRunCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:           "run",
		Short:         "Run the listener in standalone mode",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runStandaloneCommand,
	}
	addRunFlags(runCmd)
	return runCmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-journal", false, "Do not record connection attempts")
	cmd.Flags().Duration("journal-retention", defaultJournalRetention, "Discard recorded attempts older than this at startup (0 keeps everything)")
}

func runOptionsFromFlags(cmd *cobra.Command) runOptions {
	verbose, _ := cmd.Flags().GetBool("verbose")
	noJournal, _ := cmd.Flags().GetBool("no-journal")
	retention, err := cmd.Flags().GetDuration("journal-retention")
	if err != nil {
		retention = defaultJournalRetention
	}
	return runOptions{Verbose: verbose, NoJournal: noJournal, JournalRetention: retention}
}

func runStandaloneCommand(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), "Running in standalone mode")
	return runStandalone(cmd)
}

func runStandalone(cmd *cobra.Command) error {
	defer setupCommandLoggingTo(cmd, cmd.OutOrStdout())()

	svc, cleanup, err := prepareListener(runOptionsFromFlags(cmd))
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("shutdown-on-lan started (PID: %d)", os.Getpid())
	if err := svc.Run(ctx); err != nil {
		return err
	}
	log.Println("Listener stopped")
	return nil
}

// prepareListener validates the stored configuration and builds the
// listener with the platform shutdown trigger and, unless disabled, the
// attempt journal. The returned cleanup closes the journal.
func prepareListener(opts runOptions) (*listener.Service, func(), error) {
	_, cfg, err := loadConfiguration()
	if err != nil {
		return nil, nil, err
	}
	log.Printf("[Service] Read configuration with port number: %d", cfg.Port)

	cleanup := func() {}
	var recorder listener.Recorder
	if !opts.NoJournal {
		j, err := openAttemptJournal(false)
		if err != nil {
			log.Printf("[Service] WARNING: attempt journal disabled: %v", err)
		} else {
			recorder = j
			cleanup = func() { j.Close() }
			pruneJournal(j, opts.JournalRetention)
		}
	}

	svc, err := listener.New(listener.Options{
		Config:   cfg,
		Trigger:  systemTrigger(),
		Recorder: recorder,
		Verbose:  opts.Verbose,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

func openAttemptJournal(readOnly bool) (*journal.Journal, error) {
	paths, err := resolvePaths()
	if err != nil {
		return nil, err
	}
	if !readOnly {
		if err := config.EnsureJournalDir(paths); err != nil {
			return nil, err
		}
	}
	return journal.Open(journal.Options{DBPath: paths.JournalDB(), ReadOnly: readOnly})
}

func pruneJournal(j *journal.Journal, retention time.Duration) {
	if retention <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	removed, err := j.Prune(ctx, time.Now().Add(-retention))
	if err != nil {
		log.Printf("[Service] WARNING: failed to prune attempt journal: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("[Service] Pruned %d attempt(s) older than %s", removed, retention)
	}
}
