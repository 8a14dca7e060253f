package kinematics

import (
	"errors"
	"math"
	"testing"
)

func TestNewTimeSeries_Errors(t *testing.T) {
	if _, err := NewTimeSeries(nil, nil); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("Expected ErrEmptySeries, got %v", err)
	}

	if _, err := NewTimeSeries([]float64{0, 0.01}, []float64{1}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Expected ErrLengthMismatch, got %v", err)
	}
}

func TestTimeSeries_Sampling(t *testing.T) {
	const n = 101
	time := make([]float64, n)
	values := make([]float64, n)
	for i := range time {
		time[i] = float64(i) * 0.01
	}

	s, err := NewTimeSeries(time, values)
	if err != nil {
		t.Fatalf("Failed to create series: %v", err)
	}

	if s.Len() != n {
		t.Errorf("Expected length %d, got %d", n, s.Len())
	}
	if dt := s.Dt(); math.Abs(dt-0.01) > 1e-12 {
		t.Errorf("Expected dt 0.01, got %f", dt)
	}
	if sr := s.SampleRate(); math.Abs(sr-100) > 1e-9 {
		t.Errorf("Expected sample rate 100 Hz, got %f", sr)
	}
	if d := s.Duration(); math.Abs(d-1.0) > 1e-12 {
		t.Errorf("Expected duration 1.0 s, got %f", d)
	}
}

func TestTimeSeries_SingleSample(t *testing.T) {
	s, err := NewTimeSeries([]float64{0}, []float64{1})
	if err != nil {
		t.Fatalf("Failed to create series: %v", err)
	}

	if s.Dt() != 0 {
		t.Errorf("Expected dt 0 for a single sample, got %f", s.Dt())
	}
	if s.SampleRate() != 0 {
		t.Errorf("Expected sample rate 0 for a single sample, got %f", s.SampleRate())
	}
}

func TestTimeSeries_WithValues(t *testing.T) {
	s, err := NewTimeSeries([]float64{0, 0.01, 0.02}, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("Failed to create series: %v", err)
	}

	derived := s.WithValues([]float64{4, 5, 6})
	if &derived.Time[0] != &s.Time[0] {
		t.Error("Derived series should share the timestamp slice")
	}
	if derived.Values[0] != 4 {
		t.Errorf("Expected derived values, got %v", derived.Values)
	}
	if s.Values[0] != 1 {
		t.Error("Original series values must not change")
	}
}
