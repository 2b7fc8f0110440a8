// Package service wires the five core subsystems into the single
// end-to-end operation a client surface actually calls: capture an image,
// normalize whatever the vision capability returns, score it for quality,
// compare it against the caller's mood and historical baseline, and
// persist the result.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/facemirror/internal/compare"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/domain"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/normalize"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/quality"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/repository"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/subjective"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/vision"
)

// StateCheckRepository is the narrow slice of *repository.Repository this
// service depends on, so tests can substitute a fake.
type StateCheckRepository interface {
	SaveStateCheck(ctx context.Context, input domain.StateCheckInput) (domain.StateCheckRecord, error)
	GetBaseline(ctx context.Context) (*domain.Baseline, error)
}

// CheckInService runs the full Response Normalizer → Quality Gate →
// Comparison Engine pipeline over a single capture.
type CheckInService struct {
	vision  vision.Capability
	mood    subjective.Source
	repo    StateCheckRepository
	gate    *quality.Gate
	compare *compare.Service
	logger  *slog.Logger
}

// NewCheckInService wires the pipeline's dependencies.
func NewCheckInService(visionCap vision.Capability, moodSource subjective.Source, repo StateCheckRepository, logger *slog.Logger) *CheckInService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckInService{
		vision:  visionCap,
		mood:    moodSource,
		repo:    repo,
		gate:    quality.NewGate(),
		compare: compare.NewService(),
		logger:  logger,
	}
}

// CheckInResult bundles everything a caller needs to render one check-in.
type CheckInResult struct {
	Analysis   domain.FacialAnalysis
	Quality    domain.QualityReport
	Comparison domain.ComparisonResult
	Trail      []normalize.Coercion
	Persisted  domain.StateCheckRecord
}

// Run executes one full check-in: analyze the image via the vision
// capability, normalize its response, score quality, compare against the
// caller's most recent subjective entry and stored baseline, then persist.
// A vision failure or unavailability never aborts the pipeline — it
// degrades to the offline fallback per the Response Normalizer's contract.
func (s *CheckInService) Run(ctx context.Context, image []byte, userNote string) (CheckInResult, error) {
	resp, err := vision.CallWithDeadline(ctx, s.vision, vision.Request{Image: image})
	if err != nil {
		s.logger.Warn("vision capability returned an error; degrading to offline fallback", "error", err)
	}

	var payload any
	if resp != nil {
		if resp.Parsed != nil {
			payload = resp.Parsed
		} else {
			payload = resp.Content
		}
	}

	normalized, err := normalize.Normalize(payload)
	if err != nil {
		return CheckInResult{}, fmt.Errorf("normalize vision response: %w", err)
	}

	qualityReport := s.gate.Score(normalized.Analysis)

	entry, err := s.mood.GetMostRecentEntry(ctx)
	if err != nil {
		s.logger.Warn("subjective source failed; comparing with no recent entry", "error", err)
		entry = nil
	}

	baseline, err := s.repo.GetBaseline(ctx)
	if err != nil {
		s.logger.Warn("baseline lookup failed; comparing without baseline adjustment", "error", err)
		baseline = nil
	}

	comparison := s.compare.Compare(entry, normalized.Analysis, baseline)

	record, err := s.repo.SaveStateCheck(ctx, domain.StateCheckInput{
		Analysis:   &normalized.Analysis,
		ImageBytes: image,
		UserNote:   userNote,
	})
	if err != nil {
		return CheckInResult{}, fmt.Errorf("persist state check: %w", err)
	}

	return CheckInResult{
		Analysis:   normalized.Analysis,
		Quality:    qualityReport,
		Comparison: comparison,
		Trail:      normalized.Trail,
		Persisted:  record,
	}, nil
}
