package storage

import (
	"database/sql"

	"github.com/kinelab/dropjump/internal/pipeline"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && *err == nil && cErr != sql.ErrTxDone {
		*err = cErr
	}
}

func nullFloat(v float64, valid bool) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: valid}
}

// toResultData flattens a pipeline row into its database representation.
// Rejected rows keep their marks when detection got that far, so partial
// sequences stay inspectable after the run.
func toResultData(runID int64, row pipeline.TrialResult) *resultData {
	data := resultData{
		RunID:   runID,
		Subject: row.Subject,
		Trial:   int64(row.Trial),
		Limb:    row.Limb.String(),
		Valid:   row.Valid,
	}

	if row.Reason != "" {
		data.RejectReason = sql.NullString{String: row.Reason.String(), Valid: true}
	}

	if m := row.Marks; m != nil {
		data.GC = nullFloat(m.GCTime, m.GC >= 0)
		data.TO = nullFloat(m.TOTime, m.TO >= 0)
		data.LD = nullFloat(m.LDTime, m.LD >= 0)
	}

	if m := row.Metrics; m != nil {
		data.GCT = nullFloat(m.GroundContactTime, true)
		data.FT = nullFloat(m.FlightTime, true)
		data.HeightFlight = nullFloat(m.HeightFlight, true)
		data.HeightPeak = nullFloat(m.HeightPeak, true)
		data.RSIFlight = nullFloat(m.RSIFlight, true)
		data.RSIPeak = nullFloat(m.RSIPeak, true)
	}

	if b := row.Bilateral; b != nil {
		data.MedianRSIFlight = nullFloat(b.MedianRSIFlight, true)
		data.MedianRSIPeak = nullFloat(b.MedianRSIPeak, true)
		data.AsymmetryFlight = nullFloat(b.AsymmetryFlight, true)
		data.AsymmetryPeak = nullFloat(b.AsymmetryPeak, true)
	}

	return &data
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}
