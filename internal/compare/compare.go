// Package compare implements the Comparison Engine: it combines a
// subjective mood/capacity self-report with AU-derived objective signals,
// applies baseline adjustment, and emits a bounded discrepancy score with
// an interpretation.
package compare

import (
	"github.com/saturnino-fabrica-de-software/facemirror/internal/derive"
	"github.com/saturnino-fabrica-de-software/facemirror/internal/domain"
)

const (
	moodHighThreshold     = 4
	tensionFireThreshold  = 0.3
	fatigueFireThreshold  = 0.3
	maskingTensionThresh  = 0.5
	maskingIndicatorFloor = 2

	scoreTensionAdj = 60
	scoreFatigueAdj = 40
	scoreSocialMood = 50

	perIndicatorCap   = 4
	maskingPoints     = 5
	fatigueIndPoints  = 3
	tensionIndPoints  = 3
)

// Service is the Comparison Engine. It holds no state; every call is a
// pure combination of its three inputs.
type Service struct{}

// NewService constructs a Comparison Engine.
func NewService() *Service {
	return &Service{}
}

// Compare combines an optional subjective entry, a canonical facial
// analysis, and an optional baseline into a bounded ComparisonResult.
func (s *Service) Compare(entry *domain.SubjectiveEntry, analysis domain.FacialAnalysis, baseline *domain.Baseline) domain.ComparisonResult {
	smileType := derive.SmileType(analysis.FacsInterpretation, analysis.ActionUnits)
	insights := buildInsights(analysis, smileType)

	if entry == nil {
		return domain.ComparisonResult{
			DiscrepancyScore: 0,
			SubjectiveState:  "No recent entry",
			ObjectiveState:   "neutral",
			IsMaskingLikely:  false,
			BaselineApplied:  false,
			FacsInsights:     insights,
		}
	}

	clamped := entry.ClampMood()

	tension := derive.Tension(analysis.ActionUnits)
	fatigue := derive.Fatigue(analysis.ActionUnits)

	baselineApplied := baseline.Valid()

	tensionAdj := tension
	fatigueAdj := fatigue
	if baselineApplied {
		tensionAdj = clamp01(tension - baseline.NeutralTension)
		fatigueAdj = clamp01(fatigue - baseline.NeutralFatigue)
	}

	score, dominant := score(clamped.Mood, tensionAdj, fatigueAdj, smileType, analysis.FacsInterpretation)

	masking := isMaskingLikely(clamped.Mood, tensionAdj, smileType, analysis.FacsInterpretation)
	if masking && dominant == "neutral" {
		dominant = "masked"
	}

	subjectiveState := clamped.MoodLabel
	if subjectiveState == "" {
		subjectiveState = "No recent entry"
	}

	objectiveState := dominant
	if baselineApplied {
		objectiveState += " (baseline-adjusted)"
	}

	return domain.ComparisonResult{
		DiscrepancyScore: score,
		SubjectiveState:  subjectiveState,
		ObjectiveState:   objectiveState,
		IsMaskingLikely:  masking,
		BaselineApplied:  baselineApplied,
		FacsInsights:     insights,
	}
}

// score computes the additive, clamped discrepancy score and reports which
// named rule contributed the largest single term, for objectiveState.
func score(mood int, tensionAdj, fatigueAdj float64, smileType domain.SmileType, interp domain.FacsInterpretation) (int, string) {
	total := 0
	tensionPts, fatiguePts, socialPts := 0, 0, 0

	highMood := mood >= moodHighThreshold

	if highMood && tensionAdj > tensionFireThreshold {
		tensionPts = scoreTensionAdj
		total += tensionPts
	}
	if highMood && fatigueAdj > fatigueFireThreshold {
		fatiguePts = scoreFatigueAdj
		total += fatiguePts
	}
	if smileType == domain.SmileSocial && highMood {
		socialPts = scoreSocialMood
		total += socialPts
	}

	total += capped(len(interp.MaskingIndicators), perIndicatorCap) * maskingPoints
	total += capped(len(interp.FatigueIndicators), perIndicatorCap) * fatigueIndPoints
	total += capped(len(interp.TensionIndicators), perIndicatorCap) * tensionIndPoints

	dominant := "neutral"
	switch {
	case socialPts >= tensionPts && socialPts >= fatiguePts && socialPts > 0:
		dominant = "masked"
	case tensionPts >= fatiguePts && tensionPts > 0:
		dominant = "tense"
	case fatiguePts > 0:
		dominant = "fatigued"
	}

	return clampIntScore(total), dominant
}

func isMaskingLikely(mood int, tensionAdj float64, smileType domain.SmileType, interp domain.FacsInterpretation) bool {
	highMood := mood >= moodHighThreshold
	if smileType == domain.SmileSocial && highMood {
		return true
	}
	if tensionAdj > maskingTensionThresh && highMood {
		return true
	}
	if len(interp.MaskingIndicators) >= maskingIndicatorFloor {
		return true
	}
	return false
}

func buildInsights(analysis domain.FacialAnalysis, smileType domain.SmileType) domain.FacsInsights {
	detected := make([]string, 0, len(analysis.ActionUnits))
	for _, au := range analysis.ActionUnits {
		if au.IntensityNumeric >= 2 {
			detected = append(detected, au.AUCode)
		}
	}

	tensionCodes := map[string]bool{"AU4": true, "AU14": true, "AU24": true}
	fatigueCodes := map[string]bool{"AU7": true, "AU43": true}

	var tensionAUs, fatigueAUs []string
	for _, code := range detected {
		if tensionCodes[code] {
			tensionAUs = append(tensionAUs, code)
		}
		if fatigueCodes[code] {
			fatigueAUs = append(fatigueAUs, code)
		}
	}

	if derive.LowExpressiveness(analysis.ActionUnits) > 0.3 {
		fatigueAUs = append(fatigueAUs, "low-expressiveness")
	}

	return domain.FacsInsights{
		SmileType:   smileType,
		TensionAUs:  tensionAUs,
		FatigueAUs:  fatigueAUs,
		DetectedAUs: detected,
	}
}

func capped(n, max int) int {
	if n > max {
		return max
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampIntScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
