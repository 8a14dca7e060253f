package storage

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/kinelab/dropjump/internal/jump"
	"github.com/kinelab/dropjump/internal/kinematics"
	"github.com/kinelab/dropjump/internal/pipeline"
)

func testStore(t *testing.T) *SqliteStore {
	t.Helper()

	store := NewSqliteStore(filepath.Join(t.TempDir(), "results.sqlite"))
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	})
	return store
}

func sampleRows() []pipeline.TrialResult {
	valid := pipeline.TrialResult{
		Subject: "s01",
		Trial:   1,
		Limb:    kinematics.LimbLeft,
		Valid:   true,
		Marks: &jump.EventMarks{
			GC: 100, TO: 121, LD: 134,
			GCTime: 1.0, TOTime: 1.21, LDTime: 1.34,
			Complete: true,
		},
		Metrics: &jump.Metrics{
			Limb:              kinematics.LimbLeft,
			GroundContactTime: 0.21,
			FlightTime:        0.13,
			HeightFlight:      0.0829,
			HeightPeak:        0.30,
			RSIFlight:         0.3948,
			RSIPeak:           1.4286,
		},
	}

	rejected := pipeline.TrialResult{
		Subject: "s01",
		Trial:   2,
		Limb:    kinematics.LimbLeft,
		Reason:  jump.ReasonIncompleteSequence,
		Marks:   &jump.EventMarks{GC: 100, TO: 121, LD: -1, GCTime: 1.0, TOTime: 1.21},
	}

	bilateral := pipeline.TrialResult{
		Subject: "s02",
		Trial:   1,
		Limb:    kinematics.LimbBilateral,
		Valid:   true,
		Bilateral: &jump.Bilateral{
			MedianRSIFlight: 0.40,
			MedianRSIPeak:   1.40,
			AsymmetryFlight: 0.05,
			AsymmetryPeak:   0.04,
		},
	}

	return []pipeline.TrialResult{valid, rejected, bilateral}
}

func TestSqliteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	runID, err := store.CreateRun(ctx, "data", map[string]any{"workers": 4})
	if err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}
	if err = store.StoreResults(ctx, runID, sampleRows()); err != nil {
		t.Fatalf("Failed to store results: %v", err)
	}

	run, err := store.Run(ctx, runID)
	if err != nil {
		t.Fatalf("Failed to read run: %v", err)
	}
	if run.DataDir != "data" {
		t.Errorf("Expected data dir 'data', got '%s'", run.DataDir)
	}
	if run.Config == nil || *run.Config != `{"workers":4}` {
		t.Errorf("Unexpected run config: %v", run.Config)
	}

	reader, err := store.ReadResults(ctx, runID)
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	defer reader.Close()

	if reader.Run().ID != runID {
		t.Errorf("Expected reader run %d, got %d", runID, reader.Run().ID)
	}

	var rows []*ResultRow
	for reader.Next(ctx) {
		rows = append(rows, reader.Current())
	}
	if err = reader.Error(); err != nil {
		t.Fatalf("Reader failed: %v", err)
	}

	// Ordered by subject, trial, limb
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}

	valid := rows[0]
	if valid.Subject != "s01" || valid.Trial != 1 || valid.Limb != kinematics.LimbLeft {
		t.Errorf("Unexpected first row: %s/%d/%s", valid.Subject, valid.Trial, valid.Limb)
	}
	if !valid.Valid || valid.RejectReason != nil {
		t.Error("Expected first row to be valid without a reason")
	}
	if valid.GCT == nil || math.Abs(*valid.GCT-0.21) > 1e-9 {
		t.Errorf("Unexpected GCT: %v", valid.GCT)
	}
	if valid.RSIFlight == nil || math.Abs(*valid.RSIFlight-0.3948) > 1e-9 {
		t.Errorf("Unexpected flight RSI: %v", valid.RSIFlight)
	}
	if valid.MedianRSIFlight != nil {
		t.Error("Expected no bilateral columns on a single-limb row")
	}

	rejected := rows[1]
	if rejected.Valid {
		t.Error("Expected second row to be rejected")
	}
	if rejected.RejectReason == nil || *rejected.RejectReason != jump.ReasonIncompleteSequence.String() {
		t.Errorf("Unexpected rejection reason: %v", rejected.RejectReason)
	}
	if rejected.GC == nil || rejected.TO == nil {
		t.Error("Expected partial marks to survive on the rejected row")
	}
	if rejected.LD != nil {
		t.Error("Expected no landing mark on the rejected row")
	}
	if rejected.GCT != nil {
		t.Error("Expected no metrics on the rejected row")
	}

	bilateral := rows[2]
	if bilateral.Limb != kinematics.LimbBilateral {
		t.Errorf("Expected bilateral row last, got limb %s", bilateral.Limb)
	}
	if bilateral.MedianRSIFlight == nil || math.Abs(*bilateral.MedianRSIFlight-0.40) > 1e-9 {
		t.Errorf("Unexpected median flight RSI: %v", bilateral.MedianRSIFlight)
	}
	if bilateral.AsymmetryPeak == nil || math.Abs(*bilateral.AsymmetryPeak-0.04) > 1e-9 {
		t.Errorf("Unexpected peak asymmetry: %v", bilateral.AsymmetryPeak)
	}
}

func TestSqliteStore_ReaderFilters(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	runID, err := store.CreateRun(ctx, "data", nil)
	if err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}
	if err = store.StoreResults(ctx, runID, sampleRows()); err != nil {
		t.Fatalf("Failed to store results: %v", err)
	}

	count := func(options ...ReaderOption) int {
		reader, err := store.ReadResults(ctx, runID, options...)
		if err != nil {
			t.Fatalf("Failed to create reader: %v", err)
		}
		defer reader.Close()

		var n int
		for reader.Next(ctx) {
			n++
		}
		if err = reader.Error(); err != nil {
			t.Fatalf("Reader failed: %v", err)
		}
		return n
	}

	if n := count(WithValidOnly()); n != 2 {
		t.Errorf("Expected 2 valid rows, got %d", n)
	}
	if n := count(WithSubject("s01")); n != 2 {
		t.Errorf("Expected 2 rows for s01, got %d", n)
	}
	if n := count(WithSubject("s01"), WithValidOnly()); n != 1 {
		t.Errorf("Expected 1 valid row for s01, got %d", n)
	}
	if n := count(WithLimb(kinematics.LimbBilateral)); n != 1 {
		t.Errorf("Expected 1 bilateral row, got %d", n)
	}
}

func TestSqliteStore_UnknownRun(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	// Initialize the schema through the write path first
	if _, err := store.CreateRun(ctx, "data", nil); err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}

	if _, err := store.ReadResults(ctx, 999); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}
