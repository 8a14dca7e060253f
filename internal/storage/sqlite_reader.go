package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/kinelab/dropjump/internal/kinematics"
)

// ErrNoData indicates that no results exist for the given run and filters
var ErrNoData = fmt.Errorf("no data available")

// ReaderOption configures a ResultReader with specific filtering criteria
type ReaderOption func(*SqliteResultReader)

// WithSubject restricts the reader to a single subject's rows
func WithSubject(subject string) ReaderOption {
	return func(r *SqliteResultReader) {
		r.subject = &subject
	}
}

// WithLimb restricts the reader to rows of one limb designation
func WithLimb(limb kinematics.Limb) ReaderOption {
	return func(r *SqliteResultReader) {
		r.limb = &limb
	}
}

// WithValidOnly excludes rejected rows from the iteration
func WithValidOnly() ReaderOption {
	return func(r *SqliteResultReader) {
		r.validOnly = true
	}
}

// SqliteResultReader iterates over stored result rows of one run
type SqliteResultReader struct {
	db    *sql.DB
	runID int64
	run   *Run

	subject   *string
	limb      *kinematics.Limb
	validOnly bool

	rows    *sql.Rows
	current *ResultRow
	err     error
}

// Run returns metadata about the run being read
func (r *SqliteResultReader) Run() *Run {
	return r.run
}

// Next advances to the next result row
func (r *SqliteResultReader) Next(ctx context.Context) bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}
	if err := ctx.Err(); err != nil {
		r.err = err
		return false
	}

	var data resultData
	if err := r.rows.Scan(
		&data.ID,
		&data.RunID,
		&data.Subject,
		&data.Trial,
		&data.Limb,
		&data.Valid,
		&data.RejectReason,
		&data.GC,
		&data.TO,
		&data.LD,
		&data.GCT,
		&data.FT,
		&data.HeightFlight,
		&data.HeightPeak,
		&data.RSIFlight,
		&data.RSIPeak,
		&data.MedianRSIFlight,
		&data.MedianRSIPeak,
		&data.AsymmetryFlight,
		&data.AsymmetryPeak,
	); err != nil {
		r.err = fmt.Errorf("scanning result: %w", err)
		return false
	}

	r.current = &ResultRow{
		ID:              data.ID,
		RunID:           data.RunID,
		Subject:         data.Subject,
		Trial:           int(data.Trial),
		Limb:            kinematics.Limb(data.Limb),
		Valid:           data.Valid,
		RejectReason:    stringPtr(data.RejectReason),
		GC:              floatPtr(data.GC),
		TO:              floatPtr(data.TO),
		LD:              floatPtr(data.LD),
		GCT:             floatPtr(data.GCT),
		FT:              floatPtr(data.FT),
		HeightFlight:    floatPtr(data.HeightFlight),
		HeightPeak:      floatPtr(data.HeightPeak),
		RSIFlight:       floatPtr(data.RSIFlight),
		RSIPeak:         floatPtr(data.RSIPeak),
		MedianRSIFlight: floatPtr(data.MedianRSIFlight),
		MedianRSIPeak:   floatPtr(data.MedianRSIPeak),
		AsymmetryFlight: floatPtr(data.AsymmetryFlight),
		AsymmetryPeak:   floatPtr(data.AsymmetryPeak),
	}
	return true
}

// Current returns the current result row
func (r *SqliteResultReader) Current() *ResultRow {
	return r.current
}

// Error returns any error that occurred during iteration
func (r *SqliteResultReader) Error() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

// Close releases the database resources held by the reader
func (r *SqliteResultReader) Close() error {
	if r.rows == nil {
		return nil
	}
	return r.rows.Close()
}

func (r *SqliteResultReader) init(ctx context.Context) error {
	if err := r.initRun(ctx); err != nil {
		return fmt.Errorf("loading run data: %w", err)
	}
	if err := r.initQuery(ctx); err != nil {
		return fmt.Errorf("setting up query: %w", err)
	}
	return nil
}

func (r *SqliteResultReader) initRun(ctx context.Context) error {
	stmt, err := r.db.PrepareContext(ctx, selectRunSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	var data runData
	if err = stmt.QueryRowContext(ctx, r.runID).Scan(&data.ID, &data.CreatedAt, &data.DataDir, &data.Config); err != nil {
		if err == sql.ErrNoRows {
			return ErrNoData
		}
		return err
	}

	r.run = toRun(&data)
	return nil
}

func (r *SqliteResultReader) initQuery(ctx context.Context) error {
	// Rows ordered by subject, trial and limb so grouping stays stable
	// for reporting
	var sb strings.Builder
	sb.WriteString(selectResultsSQL)

	args := []any{r.runID}
	if r.subject != nil {
		sb.WriteString(" AND subject = ?")
		args = append(args, *r.subject)
	}
	if r.limb != nil {
		sb.WriteString(" AND limb = ?")
		args = append(args, r.limb.String())
	}
	if r.validOnly {
		sb.WriteString(" AND valid = 1")
	}
	sb.WriteString(" ORDER BY subject, trial, limb")

	stmt, err := r.db.PrepareContext(ctx, sb.String())
	if err != nil {
		return err
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return err
	}

	r.rows = rows
	return nil
}
