// Package scoring computes the deterministic risk evaluation of an offer.
// Everything in this package is pure: no I/O, no clock, no randomness.
package scoring

import "fmt"

// Factor identifies one of the six offer risk factors.
type Factor string

const (
	FactorFinancing     Factor = "financing"
	FactorDownPayment   Factor = "downPayment"
	FactorContingencies Factor = "contingencies"
	FactorTimeline      Factor = "timeline"
	FactorAppraisalGap  Factor = "appraisalGap"
	FactorPriceStrength Factor = "priceStrength"
)

// totalWeight is the ceiling of an offer risk score.
const totalWeight = 100

// factorWeights is how many points each factor may contribute to the total.
var factorWeights = map[Factor]int{
	FactorFinancing:     25,
	FactorDownPayment:   15,
	FactorContingencies: 20,
	FactorTimeline:      10,
	FactorAppraisalGap:  15,
	FactorPriceStrength: 15,
}

// rawMaxima is the best raw score each factor's lookup table can produce.
var rawMaxima = map[Factor]int{
	FactorFinancing:     25,
	FactorDownPayment:   15,
	FactorContingencies: 20,
	FactorTimeline:      10,
	FactorAppraisalGap:  15,
	FactorPriceStrength: 15,
}

func init() {
	sum := 0
	for _, w := range factorWeights {
		sum += w
	}
	if sum != totalWeight {
		panic(fmt.Sprintf("scoring: factor weights sum to %d, want %d", sum, totalWeight))
	}
}

// Weights returns a copy of the factor weights.
func Weights() map[Factor]int {
	out := make(map[Factor]int, len(factorWeights))
	for f, w := range factorWeights {
		out[f] = w
	}
	return out
}
