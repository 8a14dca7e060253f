package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"
	"github.com/kinelab/dropjump/internal/pipeline"
)

// Store provides an interface for persisting and reading back RSI analysis
// results. It handles runs and per-trial result rows in a thread-safe
// manner. All writing operations should be considered atomic.
type Store interface {
	// CreateRun registers a new analysis run and returns its unique
	// identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - dataDir: Source directory the trials were loaded from
	//   - config: Optional pipeline configuration snapshot. Can be string,
	//     []byte, or a JSON-serializable object
	//
	// Returns:
	//   - runID: Unique identifier for the created run
	//   - error: If run creation fails or context is cancelled
	CreateRun(ctx context.Context, dataDir string, config any) (runID int64, err error)

	// Run retrieves a specific analysis run by its ID.
	Run(ctx context.Context, id int64) (run *Run, err error)

	// Runs returns all analysis runs in the database, ordered by their
	// creation time in ascending order.
	Runs(ctx context.Context) (runs []*Run, err error)

	// StoreResults saves per-trial result rows for a run in a single
	// atomic transaction. Rejected rows are stored alongside valid ones;
	// the persisted dataset enumerates every input trial.
	StoreResults(ctx context.Context, runID int64, rows []pipeline.TrialResult) error

	// ReadResults returns an iterator over the result rows of a run,
	// optionally filtered. Rows are ordered by subject, trial and limb.
	ReadResults(ctx context.Context, runID int64, options ...ReaderOption) (ResultReader, error)

	// Close releases all database connections and resources. It is safe
	// to call Close multiple times.
	Close() error
}

// ResultReader provides an iterator-based interface for reading stored
// result rows.
type ResultReader interface {
	// Run returns metadata about the run this reader is accessing
	Run() *Run

	// Next advances the iterator and returns true if there is another row
	// to read, false when the iteration is complete or an error occurred
	Next(context.Context) bool

	// Current returns the current result row in the iteration. If called
	// after Next() returned false, the behavior is undefined.
	Current() *ResultRow

	// Error returns any error that occurred during iteration
	Error() error

	// Close releases any resources associated with the reader
	Close() error
}
