package jump

// Rejection reasons attached to trials excluded from metric computation.
// Every rejected trial carries its reason into the final result set so the
// analyst sees why it was excluded; nothing is dropped silently.
const (
	ReasonIncompleteSequence  RejectReason = "incomplete sequence"
	ReasonHeightBelowMinimum  RejectReason = "height below threshold"
	ReasonImplausibleVelocity RejectReason = "implausible velocity profile"
	ReasonInsufficientData    RejectReason = "insufficient data"
)

type RejectReason string

func (r RejectReason) String() string {
	return string(r)
}

// EventMarks holds the three temporal landmarks detected for one trial and
// limb: ground contact after the drop (GC), toe-off (TO) and the landing
// ending the reactive jump (LD). Indices are -1 when a mark was not found.
//
// Invariant: GC < TO < LD whenever Complete is true.
type EventMarks struct {
	GC, TO, LD int // sample indices into the conditioned series

	GCTime, TOTime, LDTime float64 // seconds

	Complete bool         // all three marks present and ordered
	Reason   RejectReason // why detection stopped short, when !Complete
}

// GroundContactTime returns TO - GC in seconds
func (m EventMarks) GroundContactTime() float64 {
	return m.TOTime - m.GCTime
}

// FlightTime returns LD - TO in seconds
func (m EventMarks) FlightTime() float64 {
	return m.LDTime - m.TOTime
}
