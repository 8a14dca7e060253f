package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/kinelab/dropjump/internal/jump"
	"github.com/kinelab/dropjump/internal/kinematics"
)

const testSampleRate = 100.0

// dropJumpPosition is the vertical toe trajectory of one clean drop jump:
// impact at 1.0 s, toe-off near 1.21 s, landing near 1.34 s
func dropJumpPosition(ts float64) float64 {
	switch {
	case ts < 1.0:
		return 0
	case ts < 1.1:
		return -0.05 * (ts - 1.0) / 0.1
	case ts < 1.2:
		return -0.05 + 0.05*(ts-1.1)/0.1
	case ts < 1.275:
		return 0.30 * (ts - 1.2) / 0.075
	case ts < 1.35:
		return 0.30 * (1 - (ts-1.275)/0.075)
	default:
		return 0
	}
}

func makeSeries(t *testing.T, duration float64, position func(float64) float64) *kinematics.TimeSeries {
	t.Helper()

	n := int(duration * testSampleRate)
	times := make([]float64, n)
	values := make([]float64, n)
	for i := range times {
		times[i] = float64(i) / testSampleRate
		values[i] = position(times[i])
	}

	series, err := kinematics.NewTimeSeries(times, values)
	if err != nil {
		t.Fatalf("Failed to create series: %v", err)
	}
	return series
}

func testAggregator(options ...func(*Aggregator)) *Aggregator {
	base := []func(*Aggregator){
		WithDetector(jump.NewDetector(jump.WithMinVelocityPeak(0.3))),
		WithValidator(jump.NewValidator(jump.WithValidatorVelocityPeak(0.3))),
	}
	return New(append(base, options...)...)
}

func TestAggregator_Run(t *testing.T) {
	clean := makeSeries(t, 3.5, dropJumpPosition)
	truncated := makeSeries(t, 1.30, dropJumpPosition)
	short := makeSeries(t, 0.03, func(float64) float64 { return 0 })

	sessions := []*kinematics.Session{
		{Subject: "s01", Trials: []*kinematics.Trial{
			{Subject: "s01", ID: 1, LeftToe: clean, RightToe: clean},
			{Subject: "s01", ID: 2, LeftToe: truncated},
		}},
		{Subject: "s02", Trials: []*kinematics.Trial{
			{Subject: "s02", ID: 1, RightToe: short},
		}},
	}

	result := testAggregator(WithWorkers(2)).Run(context.Background(), sessions)

	// Trial 1 contributes left, right and a bilateral row; the rejected
	// trials still appear, each with its reason
	expected := []struct {
		subject string
		trial   int
		limb    kinematics.Limb
		valid   bool
		reason  jump.RejectReason
	}{
		{"s01", 1, kinematics.LimbLeft, true, ""},
		{"s01", 1, kinematics.LimbRight, true, ""},
		{"s01", 1, kinematics.LimbBilateral, true, ""},
		{"s01", 2, kinematics.LimbLeft, false, jump.ReasonIncompleteSequence},
		{"s02", 1, kinematics.LimbRight, false, jump.ReasonInsufficientData},
	}

	if len(result.Rows) != len(expected) {
		t.Fatalf("Expected %d rows, got %d", len(expected), len(result.Rows))
	}

	for i, want := range expected {
		row := result.Rows[i]
		if row.Subject != want.subject || row.Trial != want.trial || row.Limb != want.limb {
			t.Errorf("Row %d: expected %s/%d/%s, got %s/%d/%s",
				i, want.subject, want.trial, want.limb, row.Subject, row.Trial, row.Limb)
		}
		if row.Valid != want.valid {
			t.Errorf("Row %d: expected valid=%t, got valid=%t (reason '%s')", i, want.valid, row.Valid, row.Reason)
		}
		if row.Reason != want.reason {
			t.Errorf("Row %d: expected reason '%s', got '%s'", i, want.reason, row.Reason)
		}
	}

	if result.ValidCount() != 3 {
		t.Errorf("Expected 3 valid rows, got %d", result.ValidCount())
	}
	if result.RejectedCount() != 2 {
		t.Errorf("Expected 2 rejected rows, got %d", result.RejectedCount())
	}
}

func TestAggregator_BilateralRow(t *testing.T) {
	clean := makeSeries(t, 3.5, dropJumpPosition)

	sessions := []*kinematics.Session{
		{Subject: "s01", Trials: []*kinematics.Trial{
			{Subject: "s01", ID: 1, LeftToe: clean, RightToe: clean},
		}},
	}

	result := testAggregator().Run(context.Background(), sessions)
	if len(result.Rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(result.Rows))
	}

	left, bilateral := result.Rows[0], result.Rows[2]
	if bilateral.Limb != kinematics.LimbBilateral || bilateral.Bilateral == nil {
		t.Fatal("Expected a bilateral row with combined metrics")
	}

	// Identical limb traces: zero asymmetry, median equal to either limb
	if bilateral.Bilateral.AsymmetryFlight != 0 || bilateral.Bilateral.AsymmetryPeak != 0 {
		t.Errorf("Expected zero asymmetry, got flight=%.6f peak=%.6f",
			bilateral.Bilateral.AsymmetryFlight, bilateral.Bilateral.AsymmetryPeak)
	}
	if math.Abs(bilateral.Bilateral.MedianRSIFlight-left.Metrics.RSIFlight) > 1e-12 {
		t.Errorf("Expected median flight RSI %.6f, got %.6f",
			left.Metrics.RSIFlight, bilateral.Bilateral.MedianRSIFlight)
	}
}

func TestAggregator_NoBilateralRowWithOneValidLimb(t *testing.T) {
	clean := makeSeries(t, 3.5, dropJumpPosition)
	truncated := makeSeries(t, 1.30, dropJumpPosition)

	sessions := []*kinematics.Session{
		{Subject: "s01", Trials: []*kinematics.Trial{
			{Subject: "s01", ID: 1, LeftToe: clean, RightToe: truncated},
		}},
	}

	result := testAggregator().Run(context.Background(), sessions)
	if len(result.Rows) != 2 {
		t.Fatalf("Expected 2 rows without a bilateral one, got %d", len(result.Rows))
	}
	for _, row := range result.Rows {
		if row.Limb == kinematics.LimbBilateral {
			t.Error("Bilateral row requires both limbs valid")
		}
	}
}

func TestAggregateResult_Grouping(t *testing.T) {
	result := &AggregateResult{Rows: []TrialResult{
		{Subject: "s02", Trial: 1, Valid: true},
		{Subject: "s02", Trial: 2},
		{Subject: "s01", Trial: 1, Valid: true},
	}}

	subjects := result.Subjects()
	if len(subjects) != 2 || subjects[0] != "s02" || subjects[1] != "s01" {
		t.Errorf("Expected first-appearance order [s02 s01], got %v", subjects)
	}

	grouped := result.BySubject()
	if len(grouped["s02"]) != 2 || len(grouped["s01"]) != 1 {
		t.Errorf("Unexpected grouping: %d/%d rows", len(grouped["s02"]), len(grouped["s01"]))
	}
}
