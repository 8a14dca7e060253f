package kinematics

// Limb designates which foot a signal channel or metric belongs to.
// LimbBilateral marks rows combining both feet.
const (
	LimbLeft      Limb = "left"
	LimbRight     Limb = "right"
	LimbBilateral Limb = "bilateral"
)

type Limb string

func (l Limb) String() string {
	return string(l)
}

// Trial identifies a single drop-vertical-jump recording: subject, trial
// number and the vertical toe position channels that were captured for it.
// Either channel may be nil when the marker set was incomplete.
type Trial struct {
	Subject  string
	ID       int
	LeftToe  *TimeSeries
	RightToe *TimeSeries
}

// Channels returns the per-limb position series present on this trial,
// left first. Missing channels are omitted.
func (t *Trial) Channels() []Channel {
	var channels []Channel
	if t.LeftToe != nil {
		channels = append(channels, Channel{Limb: LimbLeft, Series: t.LeftToe})
	}
	if t.RightToe != nil {
		channels = append(channels, Channel{Limb: LimbRight, Series: t.RightToe})
	}
	return channels
}

// Channel pairs a limb designation with its position series
type Channel struct {
	Limb   Limb
	Series *TimeSeries
}

// Session is a subject's ordered collection of trials. Sessions are
// constructed once at load time and read-only thereafter.
type Session struct {
	Subject string
	Trials  []*Trial
}
