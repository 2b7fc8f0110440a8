// Package derive computes tension, fatigue, and smile-type signals from a
// canonical AU set. Every function here is pure: same input, same output,
// no I/O.
package derive

import (
	"github.com/saturnino-fabrica-de-software/facemirror/internal/domain"
)

// Tension computes the 0..1 tension scalar from AU4 (brow lowerer), AU24
// (lip pressor), and AU14 (dimpler).
func Tension(aus []domain.AU) float64 {
	t := 0.4*norm(aus, "AU4") + 0.4*norm(aus, "AU24") + 0.2*norm(aus, "AU14")
	return clamp01(t)
}

// Fatigue computes the 0..1 fatigue scalar from AU43 (eyes closed), AU7
// (lid tightener), and overall low expressiveness.
func Fatigue(aus []domain.AU) float64 {
	f := 0.5*norm(aus, "AU43") + 0.3*norm(aus, "AU7") + 0.2*LowExpressiveness(aus)
	return clamp01(f)
}

// LowExpressiveness is 0 for an empty AU set, otherwise 1 minus the mean
// intensity over 5, floored at 0.
func LowExpressiveness(aus []domain.AU) float64 {
	if len(aus) == 0 {
		return 0
	}
	sum := 0
	for _, au := range aus {
		sum += au.IntensityNumeric
	}
	mean := float64(sum) / float64(len(aus))
	le := 1 - mean/5
	if le < 0 {
		return 0
	}
	return le
}

// norm returns the highest observed intensity for the named AU, scaled to
// [0,1], or 0 when the AU is absent. It never returns NaN.
func norm(aus []domain.AU, code string) float64 {
	max := domain.MaxIntensityNumeric(aus, code)
	if max == 0 {
		return 0
	}
	return float64(max) / 5
}

// SmileType classifies the smile pattern. Interpretation flags, when
// present, take precedence over raw-AU inference.
func SmileType(interp domain.FacsInterpretation, aus []domain.AU) domain.SmileType {
	genuine := interp.DuchenneSmile || (domain.HasAUWithIntensity(aus, "AU6", 2) && domain.HasAUWithIntensity(aus, "AU12", 2))
	if genuine {
		return domain.SmileGenuine
	}

	social := interp.SocialSmile || (domain.HasAUWithIntensity(aus, "AU12", 2) && !domain.HasAUWithIntensity(aus, "AU6", 2))
	if social {
		return domain.SmileSocial
	}

	return domain.SmileNone
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
