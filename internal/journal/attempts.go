package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// timeLayout is fixed-width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Outcome classifies how a connection attempt ended.
type Outcome string

const (
	OutcomeAccepted      Outcome = "accepted"       // secret matched, shutdown requested
	OutcomeRejected      Outcome = "rejected"       // payload did not match the secret
	OutcomeReadError     Outcome = "read_error"     // connection failed before end-of-stream
	OutcomeTriggerFailed Outcome = "trigger_failed" // secret matched but the OS refused
)

// Attempt is one connection handled by the listener.
type Attempt struct {
	ID            string
	ReceivedAt    time.Time
	RemoteAddr    string
	LocalAddr     string
	ExpectedLocal bool // local address is in the configured address set
	Outcome       Outcome
	Detail        string
	PayloadBytes  int
}

// NewID returns a fresh attempt identifier.
func NewID() string {
	return uuid.NewString()
}

// Record inserts an attempt. A missing ID or timestamp is filled in.
func (j *Journal) Record(ctx context.Context, a Attempt) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	if a.ReceivedAt.IsZero() {
		a.ReceivedAt = time.Now()
	}
	if a.Outcome == "" {
		return fmt.Errorf("journal: attempt %s has no outcome", a.ID)
	}

	return j.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO attempts (id, received_at, remote_addr, local_addr, expected_local, outcome, detail, payload_bytes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, a.ID, a.ReceivedAt.UTC().Format(timeLayout), a.RemoteAddr, a.LocalAddr,
			boolToInt(a.ExpectedLocal), string(a.Outcome), a.Detail, a.PayloadBytes)
		if err != nil {
			return fmt.Errorf("journal: insert attempt %s: %w", a.ID, err)
		}
		return nil
	})
}

// Recent returns up to limit attempts, newest first. A non-positive limit
// returns every attempt.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	query := `SELECT id, received_at, remote_addr, local_addr, expected_local, outcome, detail, payload_bytes
		FROM attempts ORDER BY received_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: list attempts: %w", err)
	}
	defer rows.Close()

	result := make([]Attempt, 0)
	for rows.Next() {
		var (
			a          Attempt
			receivedAt string
			expected   int
			outcome    string
		)
		if err := rows.Scan(&a.ID, &receivedAt, &a.RemoteAddr, &a.LocalAddr, &expected, &outcome, &a.Detail, &a.PayloadBytes); err != nil {
			return nil, fmt.Errorf("journal: scan attempt: %w", err)
		}
		if t, err := time.Parse(timeLayout, receivedAt); err == nil {
			a.ReceivedAt = t
		} else {
			log.Printf("[Journal] attempt %s: invalid received_at %q", a.ID, receivedAt)
		}
		a.ExpectedLocal = expected != 0
		a.Outcome = Outcome(outcome)
		result = append(result, a)
	}
	return result, rows.Err()
}

// Prune deletes attempts received before cutoff and returns how many were removed.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := j.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM attempts WHERE received_at < ?`,
			cutoff.UTC().Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("journal: prune attempts: %w", err)
		}
		removed, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("journal: prune attempts rows affected: %w", err)
		}
		return nil
	})
	return removed, err
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
