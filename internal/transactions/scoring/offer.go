package scoring

// Input is the offer and property context the scorer reads.
type Input struct {
	Price              float64
	FinancingType      *string
	DownPaymentPercent float64
	ContingenciesCount int
	ClosingDays        int
	AppraisalGap       *float64
	EstimatedValue     *float64
}

// Breakdown is each factor's contribution after normalization to its weight.
type Breakdown struct {
	Financing     int `json:"financing"`
	DownPayment   int `json:"downPayment"`
	Contingencies int `json:"contingencies"`
	Timeline      int `json:"timeline"`
	AppraisalGap  int `json:"appraisalGap"`
	PriceStrength int `json:"priceStrength"`
}

// Total sums the six factor contributions.
func (b Breakdown) Total() int {
	return b.Financing + b.DownPayment + b.Contingencies + b.Timeline + b.AppraisalGap + b.PriceStrength
}

// Explanation holds one sentence per factor plus the disclaimer.
type Explanation struct {
	Financing     string `json:"financing"`
	DownPayment   string `json:"downPayment"`
	Contingencies string `json:"contingencies"`
	Timeline      string `json:"timeline"`
	AppraisalGap  string `json:"appraisalGap"`
	PriceStrength string `json:"priceStrength"`
	Disclaimer    string `json:"disclaimer"`
}

// Evaluation is the full result of scoring one offer.
type Evaluation struct {
	RiskScore   int
	NetProceeds float64
	Breakdown   Breakdown
	Explanation Explanation
}

// ComputeOfferRisk scores an offer. Identical inputs always produce an
// identical evaluation. Inputs are expected to be validated already; out of
// range values fall into the nearest band.
func ComputeOfferRisk(in Input) Evaluation {
	raw := rawScores{
		financing:     financingScore(in.FinancingType),
		downPayment:   downPaymentScore(in.DownPaymentPercent),
		contingencies: contingenciesScore(in.ContingenciesCount),
		timeline:      timelineScore(in.ClosingDays),
		appraisalGap:  appraisalGapScore(in.AppraisalGap, in.Price),
		priceStrength: priceStrengthScore(in.Price, in.EstimatedValue),
	}

	breakdown := Breakdown{
		Financing:     normalize(raw.financing, FactorFinancing),
		DownPayment:   normalize(raw.downPayment, FactorDownPayment),
		Contingencies: normalize(raw.contingencies, FactorContingencies),
		Timeline:      normalize(raw.timeline, FactorTimeline),
		AppraisalGap:  normalize(raw.appraisalGap, FactorAppraisalGap),
		PriceStrength: normalize(raw.priceStrength, FactorPriceStrength),
	}

	return Evaluation{
		RiskScore:   clamp(breakdown.Total(), 0, totalWeight),
		NetProceeds: in.Price,
		Breakdown:   breakdown,
		Explanation: explain(in, raw),
	}
}

type rawScores struct {
	financing     int
	downPayment   int
	contingencies int
	timeline      int
	appraisalGap  int
	priceStrength int
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
