package pipeline

import (
	"github.com/kinelab/dropjump/internal/jump"
	"github.com/kinelab/dropjump/internal/kinematics"
)

// TrialResult is one row of the aggregate output: a single trial and limb,
// either with full metrics or with a rejection reason. Limb "bilateral"
// rows carry the combined left/right metrics instead.
type TrialResult struct {
	Subject string
	Trial   int
	Limb    kinematics.Limb

	Valid  bool
	Reason jump.RejectReason

	Marks     *jump.EventMarks // nil when conditioning failed
	Metrics   *jump.Metrics    // nil unless Valid and a single limb
	Bilateral *jump.Bilateral  // set on bilateral rows only
}

// AggregateResult is the full collection of per-trial results across all
// subjects and trials, in input trial order. Every input trial/limb appears
// exactly once, valid or not.
type AggregateResult struct {
	Rows []TrialResult
}

// BySubject groups rows by subject, preserving row order within each group.
// Subjects returns the subject keys in first-appearance order so reports
// stay stable across runs.
func (r *AggregateResult) BySubject() map[string][]TrialResult {
	grouped := make(map[string][]TrialResult)
	for _, row := range r.Rows {
		grouped[row.Subject] = append(grouped[row.Subject], row)
	}
	return grouped
}

// Subjects returns subject names in first-appearance order
func (r *AggregateResult) Subjects() []string {
	var subjects []string
	seen := make(map[string]struct{})
	for _, row := range r.Rows {
		if _, ok := seen[row.Subject]; ok {
			continue
		}
		seen[row.Subject] = struct{}{}
		subjects = append(subjects, row.Subject)
	}
	return subjects
}

// ValidCount returns the number of rows carrying metrics
func (r *AggregateResult) ValidCount() int {
	var n int
	for _, row := range r.Rows {
		if row.Valid {
			n++
		}
	}
	return n
}

// RejectedCount returns the number of rows excluded with a reason
func (r *AggregateResult) RejectedCount() int {
	return len(r.Rows) - r.ValidCount()
}
