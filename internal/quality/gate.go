// Package quality scores the reliability of a canonical facial analysis.
// The gate is advisory only — CanProceed is always true, per spec.
package quality

import (
	"math"
	"strings"

	"github.com/saturnino-fabrica-de-software/facemirror/internal/domain"
)

// criticalAUs are weighted most heavily in the score because their
// presence (or absence) is what the Derivation and Comparison layers
// actually reason about.
var criticalAUs = []string{"AU6", "AU12", "AU4", "AU24"}

const criticalIntensityFloor = 2 // "present" means intensity >= B (numeric 2)

// Gate scores detection reliability. It never fails and never blocks.
type Gate struct{}

// NewGate constructs a Quality Gate. It holds no state; all inputs arrive
// per call.
func NewGate() *Gate {
	return &Gate{}
}

// Score computes a 0..100 reliability score plus advisory suggestions.
func (g *Gate) Score(analysis domain.FacialAnalysis) domain.QualityReport {
	score := computeScore(analysis)
	level := levelFor(score)

	report := domain.QualityReport{
		Score:      score,
		Level:      level,
		CanProceed: true,
	}

	if level != domain.QualityHigh {
		report.Suggestions = suggestionsFor(analysis, level)
	}

	return report
}

func computeScore(analysis domain.FacialAnalysis) int {
	confidenceTerm := 40 * clamp01(analysis.Confidence)
	auCountTerm := 30 * math.Min(float64(len(analysis.ActionUnits))/8, 1)
	criticalTerm := 30 * math.Min(float64(countCriticalPresent(analysis.ActionUnits))/2, 1)

	raw := confidenceTerm + auCountTerm + criticalTerm
	rounded := int(math.Round(raw))
	return clampInt(rounded, 0, 100)
}

func countCriticalPresent(aus []domain.AU) int {
	count := 0
	for _, code := range criticalAUs {
		if domain.HasAUWithIntensity(aus, code, criticalIntensityFloor) {
			count++
		}
	}
	return count
}

func levelFor(score int) domain.QualityLevel {
	switch {
	case score >= 60:
		return domain.QualityHigh
	case score >= 30:
		return domain.QualityMedium
	default:
		return domain.QualityLow
	}
}

// suggestionsFor returns a deterministic, fixed-priority list: lighting,
// positioning, environmental, technical.
func suggestionsFor(analysis domain.FacialAnalysis, level domain.QualityLevel) []string {
	var suggestions []string

	if analysis.LightingSeverity == domain.LightingModerate || analysis.LightingSeverity == domain.LightingHigh {
		suggestions = append(suggestions, "Improve lighting to help detect facial details more reliably.")
	}

	if countCriticalPresent(analysis.ActionUnits) == 0 {
		suggestions = append(suggestions, "Face the camera directly so key facial movements can be detected.")
	}

	if hasObstructionClue(analysis.EnvironmentalClues) {
		suggestions = append(suggestions, "Remove obstructions (hair, hands, masks) from view of the face.")
	}

	if level == domain.QualityLow {
		suggestions = append(suggestions, "Retry the capture with better framing; detection is still too weak to trust.")
	}

	return suggestions
}

var obstructionKeywords = []string{"obstruct", "blocked", "covered", "occlu"}

func hasObstructionClue(clues []string) bool {
	for _, clue := range clues {
		lower := strings.ToLower(clue)
		for _, kw := range obstructionKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
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

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
