package stats

import (
	"math"

	"github.com/storedeck/storedeck/internal/store"
)

// Result is the statistical read on a running test.
type Result struct {
	Variants        []VariantResult `json:"variants"`
	Confident       bool            `json:"confident"` // >= 95% confidence
	ConfidenceLevel float64         `json:"confidenceLevel"`
	LeadingVariant  int             `json:"leadingVariant"`
}

type VariantResult struct {
	Index       int     `json:"index"`
	Name        string  `json:"name"`
	Views       int     `json:"views"`
	Conversions int     `json:"conversions"`
	Rate        float64 `json:"rate"`
	CILower     float64 `json:"ciLower"`
	CIUpper     float64 `json:"ciUpper"`
}

// SignificanceTest performs a two-proportion z-test.
// Returns confidence level (0-1) that variant A beats variant B.
func SignificanceTest(aConv, aViews, bConv, bViews int) float64 {
	if aViews == 0 || bViews == 0 {
		return 0.5 // Need data from both variants
	}

	pA := float64(aConv) / float64(aViews)
	pB := float64(bConv) / float64(bViews)

	// Pooled proportion under the null hypothesis pA = pB
	pooledP := float64(aConv+bConv) / float64(aViews+bViews)

	se := math.Sqrt(pooledP * (1 - pooledP) * (1/float64(aViews) + 1/float64(bViews)))
	if se == 0 {
		if pA > pB {
			return 1.0
		} else if pA < pB {
			return 0.0
		}
		return 0.5
	}

	z := (pA - pB) / se

	// P(Z < z) gives the confidence that A > B
	return normalCDF(z)
}

// normalCDF approximates the standard normal CDF via Abramowitz and
// Stegun formula 7.1.26.
func normalCDF(x float64) float64 {
	a1 := 0.254829592
	a2 := -0.284496736
	a3 := 1.421413741
	a4 := -1.453152027
	a5 := 1.061405429
	p := 0.3275911

	sign := 1.0
	if x < 0 {
		sign = -1.0
	}
	x = math.Abs(x) / math.Sqrt(2)

	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)

	return 0.5 * (1.0 + sign*y)
}

// Analyze calculates full statistics for a test. The control is the
// variant flagged IsControl, falling back to index 0.
func Analyze(test *store.Test, variantStats []store.VariantStats) *Result {
	statsMap := make(map[int]store.VariantStats)
	for _, s := range variantStats {
		statsMap[s.Variant] = s
	}

	control := 0
	for i, v := range test.Variants {
		if v.IsControl {
			control = i
			break
		}
	}

	variants := make([]VariantResult, len(test.Variants))
	maxRate := 0.0
	leadingVariant := control

	for i, v := range test.Variants {
		stat := statsMap[i] // Zero-valued if no events yet

		rate := 0.0
		if stat.Views > 0 {
			rate = float64(stat.Conversions) / float64(stat.Views)
		}

		ciLower, ciUpper := WilsonInterval(stat.Conversions, stat.Views, 0.95)

		variants[i] = VariantResult{
			Index:       i,
			Name:        v.Name,
			Views:       stat.Views,
			Conversions: stat.Conversions,
			Rate:        rate,
			CILower:     ciLower,
			CIUpper:     ciUpper,
		}

		if rate > maxRate {
			maxRate = rate
			leadingVariant = i
		}
	}

	// Significance compares the leader against the control; when the
	// control itself leads, compare it against the best challenger.
	var confidenceLevel float64
	if len(variants) >= 2 {
		challenger := leadingVariant
		if leadingVariant == control {
			bestRate := -1.0
			for i := range variants {
				if i == control {
					continue
				}
				if variants[i].Rate > bestRate {
					bestRate = variants[i].Rate
					challenger = i
				}
			}
			confidenceLevel = SignificanceTest(
				variants[control].Conversions, variants[control].Views,
				variants[challenger].Conversions, variants[challenger].Views,
			)
		} else {
			confidenceLevel = SignificanceTest(
				variants[leadingVariant].Conversions, variants[leadingVariant].Views,
				variants[control].Conversions, variants[control].Views,
			)
		}
	}

	return &Result{
		Variants:        variants,
		Confident:       confidenceLevel >= 0.95,
		ConfidenceLevel: confidenceLevel,
		LeadingVariant:  leadingVariant,
	}
}
