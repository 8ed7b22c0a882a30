// Package pricing implements the upselling commission engine: splitting a
// total upselling rate into guide/company/OTA shares and deriving the final
// sale price from a base price. All functions are pure; callers persist or
// display the results. Monetary values keep full precision through
// intermediate math and are only rounded at the persistence/display boundary
// via RoundCurrency.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Default split of the total upselling rate between the three parties.
// Applied when upselling is toggled on or the total rate changes; operator
// manual overrides of individual rates are preserved as given.
var (
	defaultGuideShare   = decimal.NewFromFloat(0.30)
	defaultCompanyShare = decimal.NewFromFloat(0.30)
	defaultOtaShare     = decimal.NewFromFloat(0.40)
)

// MaxTotalRate caps the upselling rate at 50% of the base price.
var MaxTotalRate = decimal.NewFromFloat(0.5)

// ErrRateOutOfRange is returned when the total upselling rate falls outside
// [0, MaxTotalRate]. The write is refused, nothing is partially applied.
var ErrRateOutOfRange = errors.New("upselling rate must be between 0 and 0.5")

// rateTolerance absorbs floating/decimal representation noise when checking
// whether sub-rates sum to the total rate.
var rateTolerance = decimal.NewFromFloat(0.0001)

// Split is the result of dividing a total upselling rate across parties.
type Split struct {
	GuideRate    decimal.Decimal `json:"guide_rate"`
	CompanyRate  decimal.Decimal `json:"company_rate"`
	OtaRate      decimal.Decimal `json:"ota_rate"`
	UpsellAmount decimal.Decimal `json:"upsell_amount"`
	FinalPrice   decimal.Decimal `json:"final_price"`
}

// SplitUpselling computes the default 30/30/40 split of totalRate (a
// fraction, e.g. 0.10 for 10%) over basePrice. A negative base price is
// treated as 0, matching how absent form inputs behave upstream. A zero
// rate yields all-zero shares and FinalPrice == basePrice.
func SplitUpselling(basePrice, totalRate decimal.Decimal) (Split, error) {
	if totalRate.IsNegative() || totalRate.GreaterThan(MaxTotalRate) {
		return Split{}, ErrRateOutOfRange
	}
	if basePrice.IsNegative() {
		basePrice = decimal.Zero
	}

	return Split{
		GuideRate:    totalRate.Mul(defaultGuideShare),
		CompanyRate:  totalRate.Mul(defaultCompanyShare),
		OtaRate:      totalRate.Mul(defaultOtaShare),
		UpsellAmount: basePrice.Mul(totalRate),
		FinalPrice:   basePrice.Mul(decimal.NewFromInt(1).Add(totalRate)),
	}, nil
}

// EventFinalPrice derives an event's sale price from its own price and
// upselling percentage (10 = 10%). Disabled upselling means the price
// passes through untouched. The result is NOT rounded — persistence and
// display call RoundCurrency.
func EventFinalPrice(eventPrice, upsellPct decimal.Decimal, enabled bool) decimal.Decimal {
	if eventPrice.IsNegative() {
		eventPrice = decimal.Zero
	}
	if !enabled || upsellPct.IsZero() {
		return eventPrice
	}
	rate := upsellPct.Div(decimal.NewFromInt(100))
	return eventPrice.Mul(decimal.NewFromInt(1).Add(rate))
}

// RateToPct converts a fractional rate (0.10) to a percentage (10).
func RateToPct(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(100))
}

// RoundCurrency rounds a monetary amount to the nearest whole currency unit.
// Call only at the point of persistence or display.
func RoundCurrency(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(0)
}

// RatesConsistent reports whether the three party rates sum to the total
// rate within tolerance. A mismatch is a warning condition, never a hard
// rejection: operators may deliberately skew the split.
func RatesConsistent(guideRate, companyRate, otaRate, totalRate decimal.Decimal) bool {
	sum := guideRate.Add(companyRate).Add(otaRate)
	return sum.Sub(totalRate).Abs().LessThanOrEqual(rateTolerance)
}
