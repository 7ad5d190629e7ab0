package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shutdown-on-lan/shutdown-on-lan/internal/journal"
	"github.com/spf13/cobra"
)

// attemptView is the structured form printed by "attempts".
type attemptView struct {
	ID            string    `json:"id" yaml:"id"`
	ReceivedAt    time.Time `json:"received_at" yaml:"received_at"`
	RemoteAddr    string    `json:"remote_addr" yaml:"remote_addr"`
	LocalAddr     string    `json:"local_addr" yaml:"local_addr"`
	ExpectedLocal bool      `json:"expected_local" yaml:"expected_local"`
	Outcome       string    `json:"outcome" yaml:"outcome"`
	Detail        string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	PayloadBytes  int       `json:"payload_bytes" yaml:"payload_bytes"`
}

func newAttemptsCommand() *cobra.Command {
	attemptsCmd := &cobra.Command{
		Use:           "attempts",
		Short:         "List recorded connection attempts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runAttempts,
	}
	attemptsCmd.Flags().Int("limit", 20, "Maximum number of attempts to show (0 for all)")
	addOutputFlag(attemptsCmd)
	return attemptsCmd
}

func runAttempts(cmd *cobra.Command, args []string) error {
	defer setupCommandLogging(cmd)()

	out, err := newOutputFormatter(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	if _, err := os.Stat(paths.JournalDB()); errors.Is(err, fs.ErrNotExist) {
		if out.Structured() {
			return out.Print([]attemptView{})
		}
		out.Println("No attempts recorded.")
		return nil
	}

	j, err := openAttemptJournal(true)
	if err != nil {
		return fmt.Errorf("unable to open the attempt journal: %w", err)
	}
	defer j.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	attempts, err := j.Recent(ctx, limit)
	if err != nil {
		return err
	}

	if out.Structured() {
		views := make([]attemptView, len(attempts))
		for i, a := range attempts {
			views[i] = toAttemptView(a)
		}
		return out.Print(views)
	}

	if len(attempts) == 0 {
		out.Println("No attempts recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tREMOTE\tLOCAL\tOUTCOME\tDETAIL")
	for _, a := range attempts {
		local := a.LocalAddr
		if !a.ExpectedLocal {
			local += " (unexpected)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			a.ReceivedAt.Local().Format(time.DateTime), a.RemoteAddr, local, a.Outcome, a.Detail)
	}
	return w.Flush()
}

func toAttemptView(a journal.Attempt) attemptView {
	return attemptView{
		ID:            a.ID,
		ReceivedAt:    a.ReceivedAt,
		RemoteAddr:    a.RemoteAddr,
		LocalAddr:     a.LocalAddr,
		ExpectedLocal: a.ExpectedLocal,
		Outcome:       string(a.Outcome),
		Detail:        a.Detail,
		PayloadBytes:  a.PayloadBytes,
	}
}
