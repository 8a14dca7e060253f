package jump

import (
	"errors"
	"fmt"

	"github.com/kinelab/dropjump/internal/kinematics"
	"github.com/kinelab/dropjump/internal/signal"
)

// Gravity is the default gravitational constant in m/s²
const Gravity = 9.81

// ErrInvariantViolation signals an internal contract breach: a triple that
// passed validation still produced a non-positive phase duration. This is a
// defect in the detector/validator chain, surfaced loudly rather than
// silently producing an infinite RSI. Fatal for the trial, not the batch.
var ErrInvariantViolation = errors.New("invariant violation")

// Metrics are the derived quantities for one valid trial and limb.
// RSI is reported by two independent methods: the flight method depends
// only on timing and assumes symmetric take-off/landing kinematics; the
// peak method reads the marker position directly and makes no symmetry
// assumption but is sensitive to marker noise. Large disagreement between
// the two is a data-quality signal.
type Metrics struct {
	Limb kinematics.Limb

	GroundContactTime float64 // s
	FlightTime        float64 // s

	HeightFlight float64 // ½·g·FT², m
	HeightPeak   float64 // peak marker position − ground level, m

	RSIFlight float64
	RSIPeak   float64
}

// WithAnalyzerGravity sets the gravitational constant for height estimation
func WithAnalyzerGravity(g float64) func(*Analyzer) {
	return func(a *Analyzer) {
		a.gravity = g
	}
}

// Analyzer computes ground-contact time, flight time, jump height and RSI
// from a validated triple.
type Analyzer struct {
	gravity float64
}

// NewAnalyzer creates an Analyzer with standard gravity
func NewAnalyzer(options ...func(*Analyzer)) *Analyzer {
	a := Analyzer{gravity: Gravity}

	for _, option := range options {
		option(&a)
	}

	return &a
}

// Analyze derives metrics for a validated triple. A non-positive contact or
// flight duration means the validator contract was bypassed and yields
// ErrInvariantViolation.
func (a *Analyzer) Analyze(marks EventMarks, c *signal.Conditioned, groundLevel float64, limb kinematics.Limb) (*Metrics, error) {
	gct := marks.GroundContactTime()
	ft := marks.FlightTime()

	if gct <= 0 || ft <= 0 {
		return nil, fmt.Errorf("%w: GCT %.4fs, FT %.4fs for limb %s", ErrInvariantViolation, gct, ft, limb)
	}

	heightFlight := 0.5 * a.gravity * ft * ft
	heightPeak := maxOf(c.Position.Values[marks.TO:marks.LD+1]) - groundLevel

	return &Metrics{
		Limb:              limb,
		GroundContactTime: gct,
		FlightTime:        ft,
		HeightFlight:      heightFlight,
		HeightPeak:        heightPeak,
		RSIFlight:         heightFlight / gct,
		RSIPeak:           heightPeak / gct,
	}, nil
}

// Bilateral combines left and right limb metrics for a trial where both
// limbs produced valid jumps: the median RSI across limbs as a robust
// central estimate, and the asymmetry index per method.
type Bilateral struct {
	MedianRSIFlight float64
	MedianRSIPeak   float64

	AsymmetryFlight float64
	AsymmetryPeak   float64
}

// Combine builds bilateral metrics from both limbs. It returns nil when
// either side is missing; asymmetry is only defined with two valid limbs,
// and single-limb metrics stand on their own downstream.
func Combine(left, right *Metrics) *Bilateral {
	if left == nil || right == nil {
		return nil
	}

	return &Bilateral{
		MedianRSIFlight: median(left.RSIFlight, right.RSIFlight),
		MedianRSIPeak:   median(left.RSIPeak, right.RSIPeak),
		AsymmetryFlight: asymmetryIndex(left.RSIFlight, right.RSIFlight),
		AsymmetryPeak:   asymmetryIndex(left.RSIPeak, right.RSIPeak),
	}
}

// median of two observations is their midpoint
func median(a, b float64) float64 {
	return (a + b) / 2
}

// asymmetryIndex is the standard symmetry-index form |L−R| / mean(L, R).
// Zero when both limbs agree, growing with the absolute difference.
func asymmetryIndex(left, right float64) float64 {
	mean := (left + right) / 2
	if mean == 0 {
		return 0
	}
	diff := left - right
	if diff < 0 {
		diff = -diff
	}
	return diff / mean
}
