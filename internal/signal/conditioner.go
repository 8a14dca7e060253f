package signal

import (
	"fmt"

	"github.com/kinelab/dropjump/internal/kinematics"
)

// Conditioned bundles the low-passed position trace with its derived
// velocity. Velocity is always computed from the filtered signal, never the
// raw one, to keep derivative noise amplification down.
type Conditioned struct {
	Position *kinematics.TimeSeries // filtered vertical position, meters
	Velocity *kinematics.TimeSeries // first derivative, m/s
}

// Condition low-pass filters a raw vertical position series and derives its
// velocity. Returns ErrInsufficientData when the series is shorter than the
// filter's minimum window.
func Condition(raw *kinematics.TimeSeries, cutoffHz float64) (*Conditioned, error) {
	filtered, err := Lowpass(raw.Values, cutoffHz, raw.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("conditioning series: %w", err)
	}

	return &Conditioned{
		Position: raw.WithValues(filtered),
		Velocity: raw.WithValues(Gradient(filtered, raw.Dt())),
	}, nil
}
