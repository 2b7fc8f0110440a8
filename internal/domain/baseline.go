package domain

import (
	"math"
	"time"
)

// Baseline is a per-user neutral-rest calibration. One active baseline
// exists at a time; creating a new one supersedes the old (internal/repository
// retains superseded baselines for audit, see DESIGN.md Open Question 4).
type Baseline struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	NeutralTension  float64   `json:"neutralTension"`
	NeutralFatigue  float64   `json:"neutralFatigue"`
	NeutralMasking  float64   `json:"neutralMasking"`
}

// Valid reports whether the baseline's neutral fields are finite numbers
// the engine can apply; baselineApplied reflects this check.
func (b *Baseline) Valid() bool {
	if b == nil {
		return false
	}
	return isFinite(b.NeutralTension) && isFinite(b.NeutralFatigue) && isFinite(b.NeutralMasking)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
