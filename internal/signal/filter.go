package signal

import (
	"errors"
	"fmt"
	"math"
)

// filterOrder is the order of the low-pass Butterworth filter applied to
// position traces. A fourth-order filter is realized as two cascaded
// second-order sections.
const filterOrder = 4

// MinFilterSamples is the minimum series length the zero-phase filter
// accepts. Shorter series cannot be filtered without the edge transients
// dominating the output.
const MinFilterSamples = 3*filterOrder + 1

var (
	// ErrInsufficientData is returned when a series is too short for
	// filtering or windowing. Trials failing with this error are skipped
	// and recorded, never fatal for the batch.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidCutoff is returned when the cutoff frequency is not within
	// (0, Nyquist) for the series' sample rate.
	ErrInvalidCutoff = errors.New("invalid cutoff frequency")
)

// biquad holds normalized second-order section coefficients (a0 == 1)
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// butterworthSections designs a low-pass Butterworth filter of order 4 as a
// cascade of two biquads using the bilinear transform. Quality factors are
// the analog prototype values 1/(2*cos(pi/8)) and 1/(2*cos(3*pi/8)).
func butterworthSections(cutoffHz, sampleRate float64) ([]biquad, error) {
	nyquist := sampleRate / 2
	if cutoffHz <= 0 || cutoffHz >= nyquist {
		return nil, fmt.Errorf("%w: %.2f Hz, must be within (0, %.2f) Hz", ErrInvalidCutoff, cutoffHz, nyquist)
	}

	qs := []float64{
		1 / (2 * math.Cos(math.Pi/8)),   // 0.5412
		1 / (2 * math.Cos(3*math.Pi/8)), // 1.3066
	}

	w0 := 2 * math.Pi * cutoffHz / sampleRate
	cosW0 := math.Cos(w0)
	sinW0 := math.Sin(w0)

	sections := make([]biquad, len(qs))
	for i, q := range qs {
		alpha := sinW0 / (2 * q)
		a0 := 1 + alpha

		sections[i] = biquad{
			b0: (1 - cosW0) / 2 / a0,
			b1: (1 - cosW0) / a0,
			b2: (1 - cosW0) / 2 / a0,
			a1: -2 * cosW0 / a0,
			a2: (1 - alpha) / a0,
		}
	}

	return sections, nil
}

// apply runs the section over x in direct form II transposed. The internal
// state is seeded with the steady-state response to x[0] so a constant
// input passes through without a start-up transient.
func (s biquad) apply(x []float64) []float64 {
	y := make([]float64, len(x))

	z1 := (1 - s.b0) * x[0]
	z2 := (s.b2 - s.a2) * x[0]

	for i, v := range x {
		out := s.b0*v + z1
		z1 = s.b1*v - s.a1*out + z2
		z2 = s.b2*v - s.a2*out
		y[i] = out
	}

	return y
}

// Lowpass applies a zero-phase fourth-order Butterworth low-pass filter:
// the biquad cascade is run forward and then backward over the series so
// the phase response cancels and event timestamps are not shifted.
func Lowpass(values []float64, cutoffHz, sampleRate float64) ([]float64, error) {
	if len(values) < MinFilterSamples {
		return nil, fmt.Errorf("%w: %d samples, need at least %d", ErrInsufficientData, len(values), MinFilterSamples)
	}

	sections, err := butterworthSections(cutoffHz, sampleRate)
	if err != nil {
		return nil, err
	}

	filtered := make([]float64, len(values))
	copy(filtered, values)

	for _, section := range sections {
		filtered = section.apply(filtered)
		reverse(filtered)
		filtered = section.apply(filtered)
		reverse(filtered)
	}

	return filtered, nil
}

func reverse(values []float64) {
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
}

// Gradient computes the first time-derivative using central differences in
// the interior and one-sided differences at the ends.
func Gradient(values []float64, dt float64) []float64 {
	n := len(values)
	grad := make([]float64, n)
	if n < 2 || dt <= 0 {
		return grad
	}

	grad[0] = (values[1] - values[0]) / dt
	grad[n-1] = (values[n-1] - values[n-2]) / dt
	for i := 1; i < n-1; i++ {
		grad[i] = (values[i+1] - values[i-1]) / (2 * dt)
	}

	return grad
}
