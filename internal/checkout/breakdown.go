package checkout

const (
	DefaultFeePercent = 10
	DefaultTaxPercent = 8
)

// Breakdown is the priced summary of a selection.
type Breakdown struct {
	Subtotal   int `json:"subtotal"`
	BookingFee int `json:"booking_fee"`
	Tax        int `json:"tax"`
	Total      int `json:"total"`
}

// Pricing holds the fee and tax rates as whole percentages.
type Pricing struct {
	FeePercent int `json:"fee_percent"`
	TaxPercent int `json:"tax_percent"`
}

func DefaultPricing() Pricing {
	return Pricing{FeePercent: DefaultFeePercent, TaxPercent: DefaultTaxPercent}
}

// Compute prices a subtotal. Fee and tax round half away from zero.
func (p Pricing) Compute(subtotal int) Breakdown {
	fee := percentOf(subtotal, p.FeePercent)
	tax := percentOf(subtotal, p.TaxPercent)
	return Breakdown{
		Subtotal:   subtotal,
		BookingFee: fee,
		Tax:        tax,
		Total:      subtotal + fee + tax,
	}
}

// ComputeBreakdown prices a subtotal at the default 10% fee and 8% tax.
func ComputeBreakdown(subtotal int) Breakdown {
	return DefaultPricing().Compute(subtotal)
}

func percentOf(amount, pct int) int {
	n := amount * pct
	if n < 0 {
		return -((-n + 50) / 100)
	}
	return (n + 50) / 100
}
