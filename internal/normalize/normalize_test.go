package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facemirror/internal/domain"
)

func TestNormalize_NilPayloadYieldsOfflineFallback(t *testing.T) {
	result, err := Normalize(nil)
	require.NoError(t, err)

	assert.Equal(t, 0.3, result.Analysis.Confidence)
	assert.Empty(t, result.Analysis.ActionUnits)
	assert.Contains(t, result.Analysis.EnvironmentalClues, domain.OfflineMarker)
}

func TestNormalize_EmptyTextYieldsOfflineFallback(t *testing.T) {
	result, err := NormalizeText("")
	require.NoError(t, err)
	assert.Equal(t, domain.OfflineFallback(), result.Analysis)
}

func TestNormalize_S5_SnakeCaseWrappedPayload(t *testing.T) {
	text := `{"facs_analysis":{"action_units_detected":[{"au_code":"au12","intensity":"C"}], "confidence":0.7}}`

	result, err := NormalizeText(text)
	require.NoError(t, err)

	require.Len(t, result.Analysis.ActionUnits, 1)
	au := result.Analysis.ActionUnits[0]
	assert.Equal(t, "AU12", au.AUCode)
	assert.Equal(t, 3, au.IntensityNumeric)
	assert.Equal(t, domain.IntensityC, au.Intensity)
	assert.Equal(t, 0.7, result.Analysis.Confidence)
}

func TestNormalize_CodeFenceRecovery(t *testing.T) {
	text := "Here is the analysis:\n```json\n{\"confidence\": 0.5, \"actionUnits\": []}\n```\n"

	result, err := NormalizeText(text)
	require.NoError(t, err)
	assert.Equal(t, 0.5, result.Analysis.Confidence)
}

func TestNormalize_BalancedBraceScanRecovery(t *testing.T) {
	text := `Some preamble text before the object {"confidence": 0.6, "actionUnits": [{"auCode": "AU1", "intensityNumeric": 2, "confidence": 0.5}]} and trailing notes.`

	result, err := NormalizeText(text)
	require.NoError(t, err)
	assert.Equal(t, 0.6, result.Analysis.Confidence)
	require.Len(t, result.Analysis.ActionUnits, 1)
}

func TestNormalize_UnparseableTextFails(t *testing.T) {
	_, err := NormalizeText("not json at all, no braces here")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestNormalize_DedupeKeepsHighestIntensity(t *testing.T) {
	raw := map[string]any{
		"actionUnits": []any{
			map[string]any{"auCode": "AU6", "intensityNumeric": float64(2), "confidence": float64(0.5)},
			map[string]any{"auCode": "au6", "intensityNumeric": float64(4), "confidence": float64(0.3)},
		},
	}

	result, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, result.Analysis.ActionUnits, 1)
	assert.Equal(t, 4, result.Analysis.ActionUnits[0].IntensityNumeric)
}

func TestNormalize_DedupeTiesBreakOnConfidence(t *testing.T) {
	raw := map[string]any{
		"actionUnits": []any{
			map[string]any{"auCode": "AU6", "intensityNumeric": float64(3), "confidence": float64(0.4)},
			map[string]any{"auCode": "AU6", "intensityNumeric": float64(3), "confidence": float64(0.9)},
		},
	}

	result, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, result.Analysis.ActionUnits, 1)
	assert.Equal(t, 0.9, result.Analysis.ActionUnits[0].Confidence)
}

func TestNormalize_MissingIntensityDefaultsToNumericOne(t *testing.T) {
	raw := map[string]any{
		"actionUnits": []any{
			map[string]any{"auCode": "AU10", "confidence": float64(0.2)},
		},
	}

	result, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, result.Analysis.ActionUnits, 1)
	assert.Equal(t, 1, result.Analysis.ActionUnits[0].IntensityNumeric)
	assert.Equal(t, domain.IntensityA, result.Analysis.ActionUnits[0].Intensity)
}

func TestNormalize_ObservationsDefaulting(t *testing.T) {
	raw := map[string]any{
		"observations": []any{
			map[string]any{"value": "slight brow furrow"},
		},
	}

	result, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, result.Analysis.Observations, 1)
	assert.Equal(t, "environmental", result.Analysis.Observations[0].Category)
	assert.Equal(t, domain.SeverityLow, result.Analysis.Observations[0].Severity)
}

func TestNormalize_ConfidenceClampedTo01(t *testing.T) {
	raw := map[string]any{"confidence": float64(1.7)}
	result, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Analysis.Confidence)
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := map[string]any{
		"confidence": float64(0.75),
		"actionUnits": []any{
			map[string]any{"auCode": "AU6", "intensity": "C", "confidence": float64(0.8)},
		},
	}

	first, err := Normalize(raw)
	require.NoError(t, err)

	second, err := Normalize(first.Analysis)
	require.NoError(t, err)

	assert.Equal(t, first.Analysis, second.Analysis)
}

func TestNormalize_PreservesOrderOfFirstAppearance(t *testing.T) {
	raw := map[string]any{
		"actionUnits": []any{
			map[string]any{"auCode": "AU12", "intensityNumeric": float64(2)},
			map[string]any{"auCode": "AU6", "intensityNumeric": float64(3)},
		},
	}

	result, err := Normalize(raw)
	require.NoError(t, err)
	require.Len(t, result.Analysis.ActionUnits, 2)
	assert.Equal(t, "AU12", result.Analysis.ActionUnits[0].AUCode)
	assert.Equal(t, "AU6", result.Analysis.ActionUnits[1].AUCode)
}
