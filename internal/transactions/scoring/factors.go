package scoring

import (
	"math"
	"strings"
	"unicode"
)

// Raw lookup tables. Higher raw scores mean a safer offer on that factor.

var financingScores = map[string]int{
	"cash":         25,
	"conventional": 20,
	"fha":          12,
	"va":           12,
	"fha/va":       12,
}

const unknownFinancingScore = 5

// normalizeFinancing lowercases and strips all whitespace, so "FHA / VA"
// matches "fha/va".
func normalizeFinancing(financingType string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(financingType))
}

func financingScore(financingType *string) int {
	if financingType == nil || strings.TrimSpace(*financingType) == "" {
		return unknownFinancingScore
	}
	if score, ok := financingScores[normalizeFinancing(*financingType)]; ok {
		return score
	}
	return unknownFinancingScore
}

func downPaymentScore(percent float64) int {
	switch {
	case percent >= 30:
		return 15
	case percent >= 20:
		return 12
	case percent >= 10:
		return 8
	default:
		return 3
	}
}

func contingenciesScore(count int) int {
	switch {
	case count <= 0:
		return 20
	case count == 1:
		return 15
	case count == 2:
		return 10
	default:
		return 5
	}
}

func timelineScore(closingDays int) int {
	switch {
	case closingDays <= 21:
		return 10
	case closingDays <= 30:
		return 8
	case closingDays <= 45:
		return 5
	default:
		return 2
	}
}

// appraisalGapPercent is the gap as a percentage of price. ok is false when
// there is nothing to compare.
func appraisalGapPercent(gap *float64, price float64) (float64, bool) {
	if price <= 0 || gap == nil {
		return 0, false
	}
	return *gap / price * 100, true
}

func appraisalGapScore(gap *float64, price float64) int {
	pct, ok := appraisalGapPercent(gap, price)
	if !ok || *gap < 0 {
		return 5
	}
	switch {
	case pct >= 5:
		return 15
	case pct >= 1:
		return 10
	default:
		return 5
	}
}

func priceToEstimatePercent(price float64, estimatedValue *float64) (float64, bool) {
	if estimatedValue == nil || *estimatedValue <= 0 {
		return 0, false
	}
	return price / *estimatedValue * 100, true
}

func priceStrengthScore(price float64, estimatedValue *float64) int {
	pct, ok := priceToEstimatePercent(price, estimatedValue)
	if !ok {
		return 8
	}
	switch {
	case pct >= 100:
		return 15
	case pct >= 98:
		return 12
	case pct >= 95:
		return 8
	default:
		return 4
	}
}

// normalize scales a raw factor score onto the factor's weight.
func normalize(raw int, f Factor) int {
	maxRaw := rawMaxima[f]
	if maxRaw <= 0 {
		return 0
	}
	return int(math.Round(float64(raw) / float64(maxRaw) * float64(factorWeights[f])))
}
