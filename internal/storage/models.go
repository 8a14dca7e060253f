package storage

import (
	"database/sql"
)

type runData struct {
	ID        int64
	CreatedAt sql.NullTime
	DataDir   string
	Config    sql.NullString
}

type resultData struct {
	ID           int64
	RunID        int64
	Subject      string
	Trial        int64
	Limb         string
	Valid        bool
	RejectReason sql.NullString

	GC sql.NullFloat64
	TO sql.NullFloat64
	LD sql.NullFloat64

	GCT sql.NullFloat64
	FT  sql.NullFloat64

	HeightFlight sql.NullFloat64
	HeightPeak   sql.NullFloat64

	RSIFlight sql.NullFloat64
	RSIPeak   sql.NullFloat64

	MedianRSIFlight sql.NullFloat64
	MedianRSIPeak   sql.NullFloat64
	AsymmetryFlight sql.NullFloat64
	AsymmetryPeak   sql.NullFloat64
}
