package normalize

import (
	"strings"

	"github.com/saturnino-fabrica-de-software/facemirror/internal/domain"
)

// auListKeys are the recognized field names for the AU list, tried in order.
var auListKeys = []string{"actionUnits", "action_units_detected", "aus"}

func buildAnalysis(raw map[string]any, b *builder) domain.FacialAnalysis {
	analysis := domain.FacialAnalysis{}

	analysis.Confidence = clamp01(getFloat(raw, "confidence", 0, b))
	analysis.ActionUnits = buildAUs(raw, b)
	analysis.FacsInterpretation = buildInterpretation(raw, b)
	analysis.Observations = buildObservations(raw, b)
	analysis.Lighting = getString(raw, "lighting", "")
	analysis.LightingSeverity = domain.LightingSeverity(getString(raw, "lightingSeverity", getString(raw, "lighting_severity", "")))
	analysis.EnvironmentalClues = getStringSlice(raw, firstPresentKey(raw, "environmentalClues", "environmental_clues"))

	if v, ok := getFloatPtr(raw, "jawTension"); ok {
		analysis.JawTension = v
	} else if v, ok := getFloatPtr(raw, "jaw_tension"); ok {
		analysis.JawTension = v
	}
	if v, ok := getFloatPtr(raw, "eyeFatigue"); ok {
		analysis.EyeFatigue = v
	} else if v, ok := getFloatPtr(raw, "eye_fatigue"); ok {
		analysis.EyeFatigue = v
	}

	return analysis
}

func buildAUs(raw map[string]any, b *builder) []domain.AU {
	var rawList []any
	for _, key := range auListKeys {
		if v, ok := raw[key]; ok {
			if list, ok := v.([]any); ok {
				rawList = list
				break
			}
		}
	}

	aus := make([]domain.AU, 0, len(rawList))
	for _, item := range rawList {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		aus = append(aus, buildAU(m, b))
	}

	return dedupeAUs(aus)
}

func buildAU(m map[string]any, b *builder) domain.AU {
	code := firstString(m, "auCode", "au_code")
	au := domain.AU{
		AUCode:     strings.ToUpper(strings.TrimSpace(code)),
		Name:       getString(m, "name", ""),
		Confidence: clamp01(getFloat(m, "confidence", 0, b)),
	}

	letter, hasLetter := firstStringOK(m, "intensity")
	numeric, hasNumeric := firstIntOK(m, "intensityNumeric", "intensity_numeric")

	switch {
	case hasNumeric && hasLetter:
		au.IntensityNumeric = clampIntensity(numeric)
		au.Intensity = domain.Intensity(strings.ToUpper(letter))
	case hasNumeric:
		au.IntensityNumeric = clampIntensity(numeric)
		au.Intensity = domain.IntensityFromNumeric(au.IntensityNumeric)
		b.record("actionUnits["+au.AUCode+"].intensity", "derived letter from numeric")
	case hasLetter:
		au.Intensity = domain.Intensity(strings.ToUpper(letter))
		au.IntensityNumeric = domain.NumericFromIntensity(au.Intensity)
		b.record("actionUnits["+au.AUCode+"].intensityNumeric", "derived numeric from letter")
	default:
		au.IntensityNumeric = 1
		au.Intensity = domain.IntensityA
		b.record("actionUnits["+au.AUCode+"].intensity", "missing; defaulted to A/1")
	}

	return au
}

// dedupeAUs collapses AUs sharing an auCode, keeping the entry with the
// highest intensityNumeric, breaking ties by higher confidence.
func dedupeAUs(aus []domain.AU) []domain.AU {
	order := make([]string, 0, len(aus))
	best := make(map[string]domain.AU, len(aus))

	for _, au := range aus {
		existing, seen := best[au.AUCode]
		if !seen {
			order = append(order, au.AUCode)
			best[au.AUCode] = au
			continue
		}
		if au.IntensityNumeric > existing.IntensityNumeric ||
			(au.IntensityNumeric == existing.IntensityNumeric && au.Confidence > existing.Confidence) {
			best[au.AUCode] = au
		}
	}

	out := make([]domain.AU, 0, len(order))
	for _, code := range order {
		out = append(out, best[code])
	}
	return out
}

func buildInterpretation(raw map[string]any, b *builder) domain.FacsInterpretation {
	m := firstMap(raw, "facsInterpretation", "facs_interpretation")

	return domain.FacsInterpretation{
		DuchenneSmile:     firstBool(m, "duchenneSmile", "duchenne_smile"),
		SocialSmile:       firstBool(m, "socialSmile", "social_smile"),
		MaskingIndicators: getStringSlice(m, firstPresentKey(m, "maskingIndicators", "masking_indicators")),
		FatigueIndicators: getStringSlice(m, firstPresentKey(m, "fatigueIndicators", "fatigue_indicators")),
		TensionIndicators: getStringSlice(m, firstPresentKey(m, "tensionIndicators", "tension_indicators")),
	}
}

func buildObservations(raw map[string]any, b *builder) []domain.Observation {
	list, _ := raw["observations"].([]any)
	out := make([]domain.Observation, 0, len(list))

	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}

		category := getString(m, "category", "")
		if category == "" {
			category = "environmental"
			b.record("observations[].category", "missing; defaulted to environmental")
		}

		severity := domain.ObservationSeverity(getString(m, "severity", ""))
		if severity == "" {
			severity = domain.SeverityLow
			b.record("observations[].severity", "missing; defaulted to low")
		}

		out = append(out, domain.Observation{
			Category: category,
			Value:    getString(m, "value", ""),
			Evidence: getString(m, "evidence", ""),
			Severity: severity,
		})
	}

	return out
}

func clampAnalysis(a domain.FacialAnalysis) domain.FacialAnalysis {
	a.Confidence = clamp01(a.Confidence)
	clamped := make([]domain.AU, len(a.ActionUnits))
	for i, au := range a.ActionUnits {
		clamped[i] = au.Clamp()
	}
	a.ActionUnits = dedupeAUs(clamped)
	return a
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

func clampIntensity(n int) int {
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}

// --- generic map accessors -------------------------------------------------

func getFloat(m map[string]any, key string, def float64, b *builder) float64 {
	v, ok := m[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return def
	}
}

func getFloatPtr(m map[string]any, key string) (*float64, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	f, ok := v.(float64)
	if !ok {
		return nil, false
	}
	clamped := clamp01(f)
	return &clamped, true
}

func getString(m map[string]any, key, def string) string {
	v, ok := m[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := getString(m, k, ""); s != "" {
			return s
		}
	}
	return ""
}

func firstStringOK(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func firstIntOK(m map[string]any, keys ...string) (int, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			switch n := v.(type) {
			case float64:
				return int(n), true
			case int:
				return n, true
			}
		}
	}
	return 0, false
}

func firstBool(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if bv, ok := v.(bool); ok {
				return bv
			}
		}
	}
	return false
}

func firstMap(raw map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if m, ok := v.(map[string]any); ok {
				return m
			}
		}
	}
	return map[string]any{}
}

func firstPresentKey(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return k
		}
	}
	if len(keys) > 0 {
		return keys[0]
	}
	return ""
}

func getStringSlice(m map[string]any, key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
