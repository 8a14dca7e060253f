package signal

import (
	"errors"
	"math"
	"testing"
)

func TestLowpass_ConstantSignal(t *testing.T) {
	const level = 2.5
	values := make([]float64, 200)
	for i := range values {
		values[i] = level
	}

	filtered, err := Lowpass(values, 15, 100)
	if err != nil {
		t.Fatalf("Failed to filter: %v", err)
	}

	// Steady-state initialization: a constant must pass without any
	// start-up transient
	for i, v := range filtered {
		if math.Abs(v-level) > 1e-9 {
			t.Fatalf("Sample %d: expected %f, got %f", i, level, v)
		}
	}
}

func TestLowpass_InsufficientData(t *testing.T) {
	_, err := Lowpass(make([]float64, MinFilterSamples-1), 15, 100)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

func TestLowpass_InvalidCutoff(t *testing.T) {
	values := make([]float64, 100)

	testCases := []struct {
		name       string
		cutoff     float64
		sampleRate float64
	}{
		{"zero cutoff", 0, 100},
		{"negative cutoff", -5, 100},
		{"cutoff at nyquist", 50, 100},
		{"cutoff above nyquist", 60, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Lowpass(values, tc.cutoff, tc.sampleRate)
			if !errors.Is(err, ErrInvalidCutoff) {
				t.Errorf("Expected ErrInvalidCutoff, got %v", err)
			}
		})
	}
}

func TestLowpass_AttenuatesHighFrequency(t *testing.T) {
	const (
		sampleRate = 100.0
		n          = 500
	)

	// 2 Hz carrier well inside the passband plus a 40 Hz disturbance far
	// beyond the 10 Hz cutoff
	low := make([]float64, n)
	values := make([]float64, n)
	for i := range values {
		ts := float64(i) / sampleRate
		low[i] = math.Sin(2 * math.Pi * 2 * ts)
		values[i] = low[i] + 0.2*math.Sin(2*math.Pi*40*ts)
	}

	filtered, err := Lowpass(values, 10, sampleRate)
	if err != nil {
		t.Fatalf("Failed to filter: %v", err)
	}

	// Compare away from the edges where the forward-backward passes
	// still carry transients
	for i := 50; i < n-50; i++ {
		if diff := math.Abs(filtered[i] - low[i]); diff > 0.05 {
			t.Fatalf("Sample %d: filtered deviates from passband signal by %f", i, diff)
		}
	}
}

func TestGradient_Ramp(t *testing.T) {
	const dt = 0.01
	values := make([]float64, 100)
	for i := range values {
		values[i] = 3 + 2*float64(i)*dt
	}

	grad := Gradient(values, dt)
	for i, g := range grad {
		if math.Abs(g-2) > 1e-9 {
			t.Fatalf("Sample %d: expected slope 2, got %f", i, g)
		}
	}
}

func TestGradient_Degenerate(t *testing.T) {
	if grad := Gradient([]float64{1}, 0.01); len(grad) != 1 || grad[0] != 0 {
		t.Errorf("Expected zero gradient for a single sample, got %v", grad)
	}
	if grad := Gradient([]float64{1, 2}, 0); grad[0] != 0 || grad[1] != 0 {
		t.Errorf("Expected zero gradient for zero dt, got %v", grad)
	}
}
