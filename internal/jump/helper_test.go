package jump

import (
	"testing"

	"github.com/kinelab/dropjump/internal/kinematics"
	"github.com/kinelab/dropjump/internal/signal"
)

const traceSampleRate = 100.0

// dropJumpPosition is a piecewise-linear vertical toe trajectory of one
// clean drop jump: drop impact at 1.0 s, toe-off near 1.21 s, landing near
// 1.34 s, then quiet standing on the ground reference.
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

func conditionTrace(t *testing.T, duration float64, position func(float64) float64) *signal.Conditioned {
	t.Helper()

	n := int(duration * traceSampleRate)
	times := make([]float64, n)
	values := make([]float64, n)
	for i := range times {
		times[i] = float64(i) / traceSampleRate
		values[i] = position(times[i])
	}

	series, err := kinematics.NewTimeSeries(times, values)
	if err != nil {
		t.Fatalf("Failed to create series: %v", err)
	}

	conditioned, err := signal.Condition(series, 15)
	if err != nil {
		t.Fatalf("Failed to condition series: %v", err)
	}
	return conditioned
}

// The synthetic impact peaks at 0.5 m/s, below the production default of
// 1.0 m/s tuned for real drop heights
func testDetector(options ...func(*Detector)) *Detector {
	return NewDetector(append([]func(*Detector){WithMinVelocityPeak(0.3)}, options...)...)
}

func testValidator(options ...func(*Validator)) *Validator {
	return NewValidator(append([]func(*Validator){WithValidatorVelocityPeak(0.3)}, options...)...)
}
