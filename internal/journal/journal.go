// Package journal records connection attempts received by the listener in
// a local SQLite database. It never stores the secret or the payload.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	defaultBusyTimeout        = 5 * time.Second
	defaultConnectionLifetime = 0 // unlimited
)

// Options describes parameters for opening a journal.
type Options struct {
	DBPath   string // Database path (required)
	ReadOnly bool   // Open database in read-only mode
}

// Journal provides access to the attempts database.
type Journal struct {
	db       *sql.DB
	dbPath   string
	readOnly bool
}

// Open initialises the journal database, creating it and its schema when
// the journal is writable.
func Open(opts Options) (*Journal, error) {
	if opts.DBPath == "" {
		return nil, fmt.Errorf("journal: database path is empty")
	}

	if !opts.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(opts.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("journal: create directory: %w", err)
		}
	}

	dsn := opts.DBPath
	if opts.ReadOnly {
		dsn = fmt.Sprintf("file:%s?mode=ro", opts.DBPath)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(defaultConnectionLifetime)
	db.SetConnMaxIdleTime(defaultConnectionLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := applyPragmas(ctx, db, opts.ReadOnly); err != nil {
		db.Close()
		return nil, err
	}

	if !opts.ReadOnly {
		if err := applySchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Journal{db: db, dbPath: opts.DBPath, readOnly: opts.ReadOnly}, nil
}

// Close finalises the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Path returns the filesystem path of the backing database.
func (j *Journal) Path() string {
	return j.dbPath
}

func (j *Journal) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	if j.readOnly {
		return fmt.Errorf("journal: opened read-only")
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("journal: rollback failed after %v: %w", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}
