package jump

import (
	"github.com/kinelab/dropjump/internal/signal"
)

// DefaultMinJumpHeight is the minimum flight-method height for a detected
// triple to count as a jump rather than noise or a failed attempt.
const DefaultMinJumpHeight = 0.05 // m

// Verdict is the validator's judgement on a detected GC/TO/LD triple.
// The zero Reason means the triple passed all checks.
type Verdict struct {
	Valid  bool
	Reason RejectReason
}

// WithMinJumpHeight sets the minimum flight-method jump height
func WithMinJumpHeight(meters float64) func(*Validator) {
	return func(v *Validator) {
		v.minJumpHeight = meters
	}
}

// WithValidatorVelocityPeak sets the minimum velocity peak magnitude the
// impact and push-off phases must each reach
func WithValidatorVelocityPeak(mps float64) func(*Validator) {
	return func(v *Validator) {
		v.minVelocityPeak = mps
	}
}

// WithPhaseWindow sets how far around GC the impact velocity peak is
// searched for
func WithPhaseWindow(seconds float64) func(*Validator) {
	return func(v *Validator) {
		v.phaseWindow = seconds
	}
}

// WithGravity sets the gravitational constant used for the flight-method
// height check
func WithGravity(g float64) func(*Validator) {
	return func(v *Validator) {
		v.gravity = g
	}
}

// Validator accepts or rejects a detected triple using height and
// velocity-peak plausibility checks. It produces a verdict and never
// mutates the marks.
type Validator struct {
	minJumpHeight   float64
	minVelocityPeak float64
	phaseWindow     float64
	gravity         float64
}

// NewValidator creates a Validator with default thresholds
func NewValidator(options ...func(*Validator)) *Validator {
	v := Validator{
		minJumpHeight:   DefaultMinJumpHeight,
		minVelocityPeak: DefaultMinVelocityPeak,
		phaseWindow:     DefaultLookbackWindow,
		gravity:         Gravity,
	}

	for _, option := range options {
		option(&v)
	}

	return &v
}

// Validate runs the checks in order: sequence completeness, minimum
// flight-method height, then velocity-profile plausibility. The first
// failing check decides the verdict.
func (v *Validator) Validate(marks EventMarks, c *signal.Conditioned) Verdict {
	if !marks.Complete || marks.GC < 0 || !(marks.GC < marks.TO && marks.TO < marks.LD) {
		return Verdict{Reason: ReasonIncompleteSequence}
	}

	// Height check filters out non-jump noise and failed attempts
	ft := marks.FlightTime()
	if height := 0.5 * v.gravity * ft * ft; height < v.minJumpHeight {
		return Verdict{Reason: ReasonHeightBelowMinimum}
	}

	if !v.plausibleVelocity(marks, c) {
		return Verdict{Reason: ReasonImplausibleVelocity}
	}

	return Verdict{Valid: true}
}

// plausibleVelocity requires a strong downward peak around ground contact
// (the drop impact), a strong upward peak during flight (the push-off) and
// an up-then-down sign change between toe-off and landing. Triples without
// real explosive motion behind them are detector false positives.
func (v *Validator) plausibleVelocity(marks EventMarks, c *signal.Conditioned) bool {
	vel := c.Velocity.Values

	window := int(v.phaseWindow * c.Velocity.SampleRate())
	lo := max(0, marks.GC-window)
	hi := min(marks.TO, marks.GC+window) + 1

	if minOf(vel[lo:hi]) > -v.minVelocityPeak {
		return false
	}

	flight := vel[marks.TO : marks.LD+1]
	if maxOf(flight) < v.minVelocityPeak {
		return false
	}

	// Apex must sit between push-off and landing: the upward peak has to
	// precede the downward one.
	return argMax(flight) < argMin(flight)
}

func argMin(values []float64) int {
	idx := 0
	for i, v := range values {
		if v < values[idx] {
			idx = i
		}
	}
	return idx
}

func argMax(values []float64) int {
	idx := 0
	for i, v := range values {
		if v > values[idx] {
			idx = i
		}
	}
	return idx
}
