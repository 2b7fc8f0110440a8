// Package subjective defines the Source interface the check-in pipeline
// consumes to retrieve the caller's most recent self-reported mood entry.
// The core never implements a concrete storage/transport for subjective
// entries — that is owned by whatever client surface collects the
// self-report (journal UI, survey prompt, etc).
package subjective

import (
	"context"

	"github.com/saturnino-fabrica-de-software/facemirror/internal/domain"
)

// Source is the narrow interface internal/service's CheckInService depends
// on. A nil entry with a nil error means "no recent entry": the Comparison
// Engine then returns a discrepancy score of 0 with AU-derived insights
// only (spec §4, edge case).
type Source interface {
	GetMostRecentEntry(ctx context.Context) (*domain.SubjectiveEntry, error)
}

// StaticSource is a fixed-entry Source, useful for tests and for replaying
// a single captured entry through the pipeline.
type StaticSource struct {
	Entry *domain.SubjectiveEntry
	Err   error
}

// GetMostRecentEntry returns the configured entry or error.
func (s StaticSource) GetMostRecentEntry(ctx context.Context) (*domain.SubjectiveEntry, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Entry == nil {
		return nil, nil
	}
	clamped := s.Entry.ClampMood()
	return &clamped, nil
}
