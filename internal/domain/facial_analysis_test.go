package domain

import "testing"

func TestOfflineFallback(t *testing.T) {
	fa := OfflineFallback()

	if fa.Confidence != 0.3 {
		t.Errorf("Confidence = %v, want 0.3", fa.Confidence)
	}
	if len(fa.ActionUnits) != 0 {
		t.Errorf("ActionUnits = %v, want empty", fa.ActionUnits)
	}
	if len(fa.EnvironmentalClues) != 1 || fa.EnvironmentalClues[0] != OfflineMarker {
		t.Errorf("EnvironmentalClues = %v, want [%q]", fa.EnvironmentalClues, OfflineMarker)
	}
	if len(fa.FacsInterpretation.FatigueIndicators) != 1 {
		t.Errorf("FatigueIndicators = %v, want one entry", fa.FacsInterpretation.FatigueIndicators)
	}
}

func TestHasAUWithIntensity(t *testing.T) {
	aus := []AU{
		{AUCode: "AU6", IntensityNumeric: 3},
		{AUCode: "au12", IntensityNumeric: 1},
	}

	if !HasAUWithIntensity(aus, "au6", 2) {
		t.Error("expected AU6 present at >= 2")
	}
	if HasAUWithIntensity(aus, "AU12", 2) {
		t.Error("expected AU12 absent at >= 2")
	}
	if HasAUWithIntensity(aus, "AU24", 1) {
		t.Error("expected AU24 absent entirely")
	}
}

func TestMaxIntensityNumeric(t *testing.T) {
	aus := []AU{
		{AUCode: "AU4", IntensityNumeric: 2},
		{AUCode: "au4", IntensityNumeric: 4},
	}

	if got := MaxIntensityNumeric(aus, "AU4"); got != 4 {
		t.Errorf("MaxIntensityNumeric = %d, want 4", got)
	}
	if got := MaxIntensityNumeric(aus, "AU7"); got != 0 {
		t.Errorf("MaxIntensityNumeric = %d, want 0 for absent AU", got)
	}
}
