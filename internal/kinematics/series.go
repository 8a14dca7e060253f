package kinematics

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySeries is returned when a series is constructed without samples
	ErrEmptySeries = errors.New("time series has no samples")

	// ErrLengthMismatch is returned when timestamps and values differ in length
	ErrLengthMismatch = errors.New("timestamps and values length mismatch")
)

// TimeSeries is an ordered sequence of uniformly (or near-uniformly) sampled
// values. Timestamps are in seconds, values in meters. A series is immutable
// once loaded; processing stages produce new series instead of mutating.
type TimeSeries struct {
	Time   []float64
	Values []float64
}

// NewTimeSeries creates a series from parallel timestamp and value slices
func NewTimeSeries(time, values []float64) (*TimeSeries, error) {
	if len(time) == 0 {
		return nil, ErrEmptySeries
	}
	if len(time) != len(values) {
		return nil, fmt.Errorf("%w: %d timestamps, %d values", ErrLengthMismatch, len(time), len(values))
	}

	return &TimeSeries{Time: time, Values: values}, nil
}

// Len returns the number of samples in the series
func (s *TimeSeries) Len() int {
	return len(s.Values)
}

// Dt returns the mean sample interval in seconds
func (s *TimeSeries) Dt() float64 {
	if len(s.Time) < 2 {
		return 0
	}
	return (s.Time[len(s.Time)-1] - s.Time[0]) / float64(len(s.Time)-1)
}

// SampleRate returns the mean sampling frequency in Hz
func (s *TimeSeries) SampleRate() float64 {
	dt := s.Dt()
	if dt <= 0 {
		return 0
	}
	return 1 / dt
}

// Duration returns the total span of the series in seconds
func (s *TimeSeries) Duration() float64 {
	if len(s.Time) < 2 {
		return 0
	}
	return s.Time[len(s.Time)-1] - s.Time[0]
}

// WithValues returns a new series sharing this series' timestamps
func (s *TimeSeries) WithValues(values []float64) *TimeSeries {
	return &TimeSeries{Time: s.Time, Values: values}
}
