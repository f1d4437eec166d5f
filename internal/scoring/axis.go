package scoring

import "github.com/MarloweDigital/Stature/internal/catalog"

// NormalizeAxis maps a raw dimension score in [-3, +3] onto the 0–100 scale
// with a fixed linear transform. Out-of-range input is clamped into range
// first; upstream data is only as trustworthy as the model that produced it.
func NormalizeAxis(raw int) float64 {
	r := clampInt(raw, catalog.MinRawScore, catalog.MaxRawScore)
	return float64(r-catalog.MinRawScore) / float64(catalog.MaxRawScore-catalog.MinRawScore) * 100.0
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
