package scoring

import (
	"fmt"
	"strconv"
	"strings"
)

// Disclaimer is attached to every explanation.
const Disclaimer = "Risk analysis is informational only and does not constitute legal or financial advice."

// explain renders one sentence per factor from the same raw scores that fed
// the breakdown, so the text never disagrees with the numbers.
func explain(in Input, raw rawScores) Explanation {
	return Explanation{
		Financing:     describeFinancing(in.FinancingType, raw.financing),
		DownPayment:   describeDownPayment(in.DownPaymentPercent, raw.downPayment),
		Contingencies: fmt.Sprintf("%d contingency(ies). Score %d/%d (fewer contingencies score higher).", in.ContingenciesCount, raw.contingencies, rawMaxima[FactorContingencies]),
		Timeline:      fmt.Sprintf("Closing in %d days. Score %d/%d (faster close scores higher).", in.ClosingDays, raw.timeline, rawMaxima[FactorTimeline]),
		AppraisalGap:  describeAppraisalGap(in.AppraisalGap, in.Price, raw.appraisalGap),
		PriceStrength: describePriceStrength(in.Price, in.EstimatedValue, raw.priceStrength),
		Disclaimer:    Disclaimer,
	}
}

func describeFinancing(financingType *string, score int) string {
	name := "unknown"
	if financingType != nil {
		if trimmed := strings.TrimSpace(*financingType); trimmed != "" {
			name = trimmed
		}
	}
	return fmt.Sprintf("Financing type: %s. Score %d/%d (higher indicates stronger financing).", name, score, rawMaxima[FactorFinancing])
}

func describeDownPayment(percent float64, score int) string {
	return fmt.Sprintf("Down payment %s%%. Score %d/%d (higher indicates stronger down payment).",
		strconv.FormatFloat(percent, 'f', -1, 64), score, rawMaxima[FactorDownPayment])
}

func describeAppraisalGap(gap *float64, price float64, score int) string {
	pct := "0"
	if p, ok := appraisalGapPercent(gap, price); ok {
		pct = strconv.FormatFloat(p, 'f', 1, 64)
	}
	return fmt.Sprintf("Appraisal gap coverage %s%% of price. Score %d/%d.", pct, score, rawMaxima[FactorAppraisalGap])
}

func describePriceStrength(price float64, estimatedValue *float64, score int) string {
	pct, ok := priceToEstimatePercent(price, estimatedValue)
	if !ok {
		return "No estimated value for comparison. Score based on default."
	}
	return fmt.Sprintf("Price at %s%% of estimated value. Score %d/%d.",
		strconv.FormatFloat(pct, 'f', 1, 64), score, rawMaxima[FactorPriceStrength])
}
