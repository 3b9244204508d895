// Package valuation implements the three independent intrinsic-value models:
// discounted cash flow, Gordon-growth dividend discount, and comparable
// company multiples. Each model is a pure function of the provider snapshot
// and its scalar assumptions; results are computed fresh per call and never
// cached here.
package valuation

import "errors"

var (
	// ErrNoFinancialData means no usable statement exists for the symbol.
	ErrNoFinancialData = errors.New("no financial data")

	// ErrInvalidAssumptions means the inputs violate a model precondition,
	// e.g. a discount rate that does not exceed the relevant growth rate.
	ErrInvalidAssumptions = errors.New("invalid assumptions")

	// ErrInsufficientPeerData means the comparable model found no usable
	// peer value for any requested multiple.
	ErrInsufficientPeerData = errors.New("insufficient peer data")
)

// ModelType identifies which model produced a Result.
type ModelType string

const (
	ModelDCF        ModelType = "dcf"
	ModelDDM        ModelType = "ddm"
	ModelComparable ModelType = "comparable"
)

// Scenario holds the bearish/base/bullish intrinsic-value bounds.
type Scenario struct {
	Bearish float64 `json:"bearish"`
	Base    float64 `json:"base"`
	Bullish float64 `json:"bullish"`
}

// Result is the output of one valuation model run.
type Result struct {
	Symbol         string    `json:"symbol"`
	Model          ModelType `json:"model"`
	IntrinsicValue float64   `json:"intrinsic_value"`
	CurrentPrice   float64   `json:"current_price"`
	Upside         float64   `json:"upside"` // intrinsic/current - 1

	// Assumptions records the input parameters and the intermediate values
	// the model actually used, so a result is reproducible on its own.
	Assumptions map[string]float64 `json:"assumptions"`

	Scenarios Scenario `json:"scenarios"`
}

// upside is intrinsic/current - 1, guarded for an unavailable quote.
func upside(intrinsic, current float64) float64 {
	if current == 0 {
		return 0
	}
	return intrinsic/current - 1
}

// scenarioGrowthFloor keeps perturbed growth strictly positive when the base
// assumption is at or below zero.
const scenarioGrowthFloor = 0.005

// scenarioGrowth derives the bearish and bullish growth assumptions from the
// base rate using the fixed 0.5x / 1.5x rule.
func scenarioGrowth(base float64) (bearish, bullish float64) {
	bearish = base * 0.5
	if bearish <= 0 {
		bearish = scenarioGrowthFloor
	}
	bullish = base * 1.5
	if bullish <= 0 {
		bullish = scenarioGrowthFloor
	}
	return bearish, bullish
}
