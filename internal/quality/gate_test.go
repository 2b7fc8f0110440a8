package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saturnino-fabrica-de-software/facemirror/internal/domain"
)

func TestGate_Score_ZeroForEmptyLowConfidence(t *testing.T) {
	gate := NewGate()

	report := gate.Score(domain.FacialAnalysis{
		Confidence:  0,
		ActionUnits: []domain.AU{},
	})

	assert.Equal(t, 0, report.Score)
	assert.Equal(t, domain.QualityLow, report.Level)
	assert.True(t, report.CanProceed)
}

func TestGate_Score_HundredForFullSignal(t *testing.T) {
	gate := NewGate()

	aus := []domain.AU{
		{AUCode: "AU6", IntensityNumeric: 2},
		{AUCode: "AU12", IntensityNumeric: 2},
		{AUCode: "AU4", IntensityNumeric: 2},
		{AUCode: "AU24", IntensityNumeric: 2},
		{AUCode: "AU1", IntensityNumeric: 2},
		{AUCode: "AU2", IntensityNumeric: 2},
		{AUCode: "AU7", IntensityNumeric: 2},
		{AUCode: "AU43", IntensityNumeric: 2},
	}

	report := gate.Score(domain.FacialAnalysis{
		Confidence:  1,
		ActionUnits: aus,
	})

	assert.Equal(t, 100, report.Score)
	assert.Equal(t, domain.QualityHigh, report.Level)
	assert.Empty(t, report.Suggestions)
}

func TestGate_CanProceedAlwaysTrue(t *testing.T) {
	gate := NewGate()
	report := gate.Score(domain.FacialAnalysis{})
	assert.True(t, report.CanProceed)
}

func TestGate_Levels(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		aus        []domain.AU
		wantLevel  domain.QualityLevel
	}{
		// 40*0.1 = 4
		{"low", 0.1, nil, domain.QualityLow},
		// 40*0.9 = 36
		{"medium", 0.9, nil, domain.QualityMedium},
		// 40*0.9 + 30*(2/8) + 30*(2/2) = 73.5 -> 74
		{"high", 0.9, []domain.AU{{AUCode: "AU6", IntensityNumeric: 2}, {AUCode: "AU12", IntensityNumeric: 2}}, domain.QualityHigh},
	}

	gate := NewGate()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := gate.Score(domain.FacialAnalysis{Confidence: tt.confidence, ActionUnits: tt.aus})
			assert.Equal(t, tt.wantLevel, report.Level)
		})
	}
}

func TestGate_SuggestionsSkippedWhenHigh(t *testing.T) {
	gate := NewGate()
	aus := []domain.AU{
		{AUCode: "AU6", IntensityNumeric: 3},
		{AUCode: "AU12", IntensityNumeric: 3},
		{AUCode: "AU4", IntensityNumeric: 3},
		{AUCode: "AU24", IntensityNumeric: 3},
		{AUCode: "AU1", IntensityNumeric: 3},
		{AUCode: "AU2", IntensityNumeric: 3},
		{AUCode: "AU7", IntensityNumeric: 3},
		{AUCode: "AU43", IntensityNumeric: 3},
	}
	report := gate.Score(domain.FacialAnalysis{Confidence: 1, ActionUnits: aus})
	assert.Equal(t, domain.QualityHigh, report.Level)
	assert.Empty(t, report.Suggestions)
}

func TestGate_SuggestionsIncludeLightingWhenModerate(t *testing.T) {
	gate := NewGate()
	report := gate.Score(domain.FacialAnalysis{
		Confidence:       0.2,
		LightingSeverity: domain.LightingModerate,
	})
	assert.NotEmpty(t, report.Suggestions)
	assert.Contains(t, report.Suggestions[0], "lighting")
}

func TestGate_SuggestionsIncludeEnvironmentalOnObstructionKeyword(t *testing.T) {
	gate := NewGate()
	report := gate.Score(domain.FacialAnalysis{
		Confidence:         0.2,
		EnvironmentalClues: []string{"face partially obstructed by hair"},
	})

	found := false
	for _, s := range report.Suggestions {
		if s == "Remove obstructions (hair, hands, masks) from view of the face." {
			found = true
		}
	}
	assert.True(t, found)
}
