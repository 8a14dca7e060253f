package storage

import (
	"time"

	"github.com/kinelab/dropjump/internal/kinematics"
)

// Run represents a single batch analysis run. Each run captures when the
// pipeline executed, which data directory it consumed and the threshold
// configuration it ran with.
type Run struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	DataDir   string    `json:"dataDir"`
	Config    *string   `json:"config,omitempty"` // pipeline configuration in JSON format
}

// ResultRow is one persisted trial/limb outcome. Metric columns are nil on
// rejected rows; bilateral columns are nil on single-limb rows.
type ResultRow struct {
	ID    int64
	RunID int64

	Subject string
	Trial   int
	Limb    kinematics.Limb

	Valid        bool
	RejectReason *string

	GC *float64 // s
	TO *float64 // s
	LD *float64 // s

	GCT *float64 // s
	FT  *float64 // s

	HeightFlight *float64 // m
	HeightPeak   *float64 // m

	RSIFlight *float64
	RSIPeak   *float64

	MedianRSIFlight *float64
	MedianRSIPeak   *float64
	AsymmetryFlight *float64
	AsymmetryPeak   *float64
}
