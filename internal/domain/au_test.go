package domain

import "testing"

func TestIntensityFromNumeric(t *testing.T) {
	tests := []struct {
		numeric int
		want    Intensity
	}{
		{0, IntensityA},
		{1, IntensityA},
		{2, IntensityB},
		{3, IntensityC},
		{4, IntensityD},
		{5, IntensityE},
		{9, IntensityE},
	}
	for _, tt := range tests {
		if got := IntensityFromNumeric(tt.numeric); got != tt.want {
			t.Errorf("IntensityFromNumeric(%d) = %v, want %v", tt.numeric, got, tt.want)
		}
	}
}

func TestNumericFromIntensity(t *testing.T) {
	tests := []struct {
		intensity Intensity
		want      int
	}{
		{IntensityA, 1},
		{IntensityB, 2},
		{IntensityC, 3},
		{IntensityD, 4},
		{IntensityE, 5},
		{"z", 1}, // unknown defaults to A/1, never rejected
		{"b", 2}, // lowercase accepted
	}
	for _, tt := range tests {
		if got := NumericFromIntensity(tt.intensity); got != tt.want {
			t.Errorf("NumericFromIntensity(%v) = %d, want %d", tt.intensity, got, tt.want)
		}
	}
}

func TestAU_Clamp(t *testing.T) {
	au := AU{AUCode: "au12", Confidence: 1.5, IntensityNumeric: 9}
	got := au.Clamp()

	if got.AUCode != "AU12" {
		t.Errorf("AUCode = %v, want AU12", got.AUCode)
	}
	if got.Confidence != 1 {
		t.Errorf("Confidence = %v, want 1", got.Confidence)
	}
	if got.IntensityNumeric != 5 {
		t.Errorf("IntensityNumeric = %v, want 5", got.IntensityNumeric)
	}
	if got.Intensity != IntensityE {
		t.Errorf("Intensity = %v, want E", got.Intensity)
	}
}

func TestAU_Clamp_DerivesNumericFromLetter(t *testing.T) {
	au := AU{AUCode: "AU6", Intensity: IntensityC}
	got := au.Clamp()

	if got.IntensityNumeric != 3 {
		t.Errorf("IntensityNumeric = %v, want 3", got.IntensityNumeric)
	}
}

func TestAU_Clamp_UnknownIntensityDefaultsToOne(t *testing.T) {
	au := AU{AUCode: "AU99"}
	got := au.Clamp()

	if got.IntensityNumeric != 1 {
		t.Errorf("IntensityNumeric = %v, want 1 (never rejected)", got.IntensityNumeric)
	}
	if got.Intensity != IntensityA {
		t.Errorf("Intensity = %v, want A", got.Intensity)
	}
}
