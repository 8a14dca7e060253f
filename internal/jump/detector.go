package jump

import (
	"github.com/kinelab/dropjump/internal/signal"
)

// Default detection thresholds, matching the values established for
// 100 Hz OpenSim toe trajectories.
const (
	DefaultRelThreshold    = 0.05 // m above ground delimiting the contact band
	DefaultMinVelocityPeak = 1.0  // m/s minimum impact/push-off peak magnitude
	DefaultLookbackWindow  = 0.4  // s of velocity history inspected at GC
	DefaultDebounceWindow  = 0.05 // s skipped after each emitted mark
)

// Detection state. The terminal seekingLD-at-end-of-series condition is a
// first-class outcome (incomplete sequence), not an exception path.
type detectorState int

const (
	seekingGC detectorState = iota
	seekingTO
	seekingLD
	done
)

// WithRelThreshold sets the height of the contact band above ground level
func WithRelThreshold(meters float64) func(*Detector) {
	return func(d *Detector) {
		d.relThreshold = meters
	}
}

// WithMinVelocityPeak sets the minimum downward velocity peak magnitude
// required in the lookback window before a ground contact is accepted
func WithMinVelocityPeak(mps float64) func(*Detector) {
	return func(d *Detector) {
		d.minVelocityPeak = mps
	}
}

// WithLookbackWindow sets the velocity history window inspected at GC
func WithLookbackWindow(seconds float64) func(*Detector) {
	return func(d *Detector) {
		d.lookbackWindow = seconds
	}
}

// WithDebounceWindow sets the dead time after each emitted mark. Athletes
// commonly sub-oscillate around the band edge; the scan takes the earliest
// honest crossing and then ignores candidates inside this window.
func WithDebounceWindow(seconds float64) func(*Detector) {
	return func(d *Detector) {
		d.debounceWindow = seconds
	}
}

// Detector is a sequential state machine scanning a conditioned position
// trace and its velocity for the GC, TO and LD landmarks of one reactive
// jump.
type Detector struct {
	relThreshold    float64
	minVelocityPeak float64
	lookbackWindow  float64
	debounceWindow  float64
}

// NewDetector creates a Detector with default thresholds
func NewDetector(options ...func(*Detector)) *Detector {
	d := Detector{
		relThreshold:    DefaultRelThreshold,
		minVelocityPeak: DefaultMinVelocityPeak,
		lookbackWindow:  DefaultLookbackWindow,
		debounceWindow:  DefaultDebounceWindow,
	}

	for _, option := range options {
		option(&d)
	}

	return &d
}

// Detect scans the conditioned trace for the GC -> TO -> LD sequence.
// It never fails: when the series ends before the sequence completes, the
// returned marks are flagged incomplete with ReasonIncompleteSequence.
func (d *Detector) Detect(c *signal.Conditioned, groundLevel float64) EventMarks {
	pos := c.Position.Values
	vel := c.Velocity.Values
	t := c.Position.Time

	sampleRate := c.Position.SampleRate()
	lookback := max(1, int(d.lookbackWindow*sampleRate))
	debounce := max(1, int(d.debounceWindow*sampleRate))
	band := groundLevel + d.relThreshold

	marks := EventMarks{GC: -1, TO: -1, LD: -1}
	state := seekingGC

	for i := 1; i < len(pos); i++ {
		switch state {
		case seekingGC:
			// Contact: inside the band, moving down, with a strong downward
			// velocity peak in the recent past (the drop impact).
			if pos[i] <= band && vel[i] < 0 && minOf(vel[max(0, i-lookback):i+1]) <= -d.minVelocityPeak {
				marks.GC, marks.GCTime = i, t[i]
				state = seekingTO
				i += debounce
			}

		case seekingTO:
			// Push-off: position rises out of the band with positive velocity
			if pos[i] > band && vel[i] > 0 {
				marks.TO, marks.TOTime = i, t[i]
				state = seekingLD
				i += debounce
			}

		case seekingLD:
			// Landing: next return into the band ends the flight phase
			if pos[i] <= band {
				marks.LD, marks.LDTime = i, t[i]
				state = done
			}
		}

		if state == done {
			break
		}
	}

	if state != done {
		marks.Reason = ReasonIncompleteSequence
		return marks
	}

	marks.Complete = marks.GC < marks.TO && marks.TO < marks.LD
	if !marks.Complete {
		marks.Reason = ReasonIncompleteSequence
	}
	return marks
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
