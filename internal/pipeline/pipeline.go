package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/kinelab/dropjump/internal/jump"
	"github.com/kinelab/dropjump/internal/kinematics"
	"github.com/kinelab/dropjump/internal/signal"
)

// DefaultGroundWindow is the trailing quiet-standing window used for the
// ground-level estimate.
const DefaultGroundWindow = 1.5 // s

// DefaultLowpassCutoff is the low-pass cutoff for position conditioning.
const DefaultLowpassCutoff = 15.0 // Hz

// WithWorkers sets the number of trial workers. Trials are independent, so
// the per-trial pipeline parallelizes with no shared mutable state.
func WithWorkers(n int) func(*Aggregator) {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithLogger sets the logger for per-trial rejection reporting
func WithLogger(logger *slog.Logger) func(*Aggregator) {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithLowpassCutoff sets the conditioning low-pass cutoff in Hz
func WithLowpassCutoff(hz float64) func(*Aggregator) {
	return func(a *Aggregator) {
		a.lowpassCutoff = hz
	}
}

// WithGroundWindow sets the trailing ground-estimation window in seconds
func WithGroundWindow(seconds float64) func(*Aggregator) {
	return func(a *Aggregator) {
		a.groundWindow = seconds
	}
}

// WithDetector sets the event detector applied to each trial limb
func WithDetector(d *jump.Detector) func(*Aggregator) {
	return func(a *Aggregator) {
		a.detector = d
	}
}

// WithValidator sets the jump validator applied to detected triples
func WithValidator(v *jump.Validator) func(*Aggregator) {
	return func(a *Aggregator) {
		a.validator = v
	}
}

// WithAnalyzer sets the RSI analyzer applied to validated triples
func WithAnalyzer(an *jump.Analyzer) func(*Aggregator) {
	return func(a *Aggregator) {
		a.analyzer = an
	}
}

// Aggregator applies the conditioning, detection, validation and analysis
// stages to every trial of every session and collects the results into a
// unified dataset. One trial's failure never aborts the batch: per-trial
// errors become structured rejection rows at the trial boundary.
type Aggregator struct {
	lowpassCutoff float64
	groundWindow  float64

	detector  *jump.Detector
	validator *jump.Validator
	analyzer  *jump.Analyzer

	workers int
	logger  *slog.Logger
}

// New creates an Aggregator with default stages and thresholds
func New(options ...func(*Aggregator)) *Aggregator {
	a := Aggregator{
		lowpassCutoff: DefaultLowpassCutoff,
		groundWindow:  DefaultGroundWindow,
		detector:      jump.NewDetector(),
		validator:     jump.NewValidator(),
		analyzer:      jump.NewAnalyzer(),
		workers:       runtime.NumCPU(),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&a)
	}

	return &a
}

// Run processes all trials of all sessions and returns the aggregate
// result. Result order follows input trial order regardless of worker
// scheduling, so grouping by subject is stable for reporting.
func (a *Aggregator) Run(ctx context.Context, sessions []*kinematics.Session) *AggregateResult {
	var trials []*kinematics.Trial
	for _, session := range sessions {
		trials = append(trials, session.Trials...)
	}

	type job struct {
		index int
		trial *kinematics.Trial
	}

	jobs := make(chan job)
	perTrial := make([][]TrialResult, len(trials))

	var wg sync.WaitGroup
	for w := 0; w < a.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				perTrial[j.index] = a.processTrial(j.trial)
			}
		}()
	}

feed:
	for i, trial := range trials {
		select {
		case jobs <- job{index: i, trial: trial}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	result := &AggregateResult{}
	for _, rows := range perTrial {
		result.Rows = append(result.Rows, rows...)
	}
	return result
}

// processTrial runs the full per-limb pipeline for one trial and combines
// the limbs into a bilateral row when both are valid.
func (a *Aggregator) processTrial(trial *kinematics.Trial) []TrialResult {
	var rows []TrialResult
	valid := make(map[kinematics.Limb]*jump.Metrics)

	for _, channel := range trial.Channels() {
		row := a.processChannel(trial, channel)
		if row.Valid {
			valid[row.Limb] = row.Metrics
		}
		rows = append(rows, row)
	}

	if bilateral := jump.Combine(valid[kinematics.LimbLeft], valid[kinematics.LimbRight]); bilateral != nil {
		rows = append(rows, TrialResult{
			Subject:   trial.Subject,
			Trial:     trial.ID,
			Limb:      kinematics.LimbBilateral,
			Valid:     true,
			Bilateral: bilateral,
		})
	}

	return rows
}

func (a *Aggregator) processChannel(trial *kinematics.Trial, channel kinematics.Channel) TrialResult {
	row := TrialResult{
		Subject: trial.Subject,
		Trial:   trial.ID,
		Limb:    channel.Limb,
	}

	logger := a.logger.With(
		slog.String("subject", trial.Subject),
		slog.Int("trial", trial.ID),
		slog.String("limb", channel.Limb.String()),
	)

	conditioned, err := signal.Condition(channel.Series, a.lowpassCutoff)
	if err != nil {
		if errors.Is(err, signal.ErrInsufficientData) {
			logger.Warn("skipping series", slog.String("reason", err.Error()))
			row.Reason = jump.ReasonInsufficientData
			return row
		}

		logger.Error("conditioning failed", slog.String("error", err.Error()))
		row.Reason = jump.ReasonInsufficientData
		return row
	}

	ground := signal.GroundLevel(conditioned.Position.Values, conditioned.Position.SampleRate(), a.groundWindow)

	marks := a.detector.Detect(conditioned, ground)
	row.Marks = &marks
	if !marks.Complete {
		logger.Warn("jump rejected", slog.String("reason", marks.Reason.String()))
		row.Reason = marks.Reason
		return row
	}

	if verdict := a.validator.Validate(marks, conditioned); !verdict.Valid {
		logger.Warn("jump rejected", slog.String("reason", verdict.Reason.String()))
		row.Reason = verdict.Reason
		return row
	}

	metrics, err := a.analyzer.Analyze(marks, conditioned, ground, channel.Limb)
	if err != nil {
		// Validator contract was bypassed; loud, but fatal for this trial only
		logger.Error("analysis failed", slog.String("error", err.Error()))
		row.Reason = jump.RejectReason(err.Error())
		return row
	}

	row.Valid = true
	row.Metrics = metrics
	return row
}
