package payroll

import "github.com/shopspring/decimal"

// Breakdown is the full monetary result of settling one batch of hours.
// Every figure is rounded to the cent with banker's rounding at the step
// it is produced, matching the order in Compute.
type Breakdown struct {
	Hours        decimal.Decimal
	Rate         decimal.Decimal
	Gross        decimal.Decimal
	Commission   decimal.Decimal
	NetBeforeTax decimal.Decimal
	TaxWithheld  decimal.Decimal
	NetPayment   decimal.Decimal
	Super        decimal.Decimal
}

// Compute derives the payout split from a rate and an hour total:
//
//	gross          = rate × hours
//	commission     = gross × 1%
//	net_before_tax = gross − commission
//	tax_withheld   = net_before_tax × 15%
//	net_payment    = net_before_tax − tax_withheld
//	super          = gross × 11%   (informational)
//
// Rounding half-to-even after each multiplication keeps
// commission + tax + net identical to gross to the cent.
func Compute(rate, hours decimal.Decimal) (Breakdown, error) {
	if !hours.IsPositive() {
		return Breakdown{}, ErrNonPositiveHours
	}
	if !rate.IsPositive() {
		return Breakdown{}, ErrNonPositiveRate
	}

	gross := rate.Mul(hours).RoundBank(2)
	commission := gross.Mul(CommissionRate).RoundBank(2)
	netBeforeTax := gross.Sub(commission).RoundBank(2)
	tax := netBeforeTax.Mul(TaxRate).RoundBank(2)
	net := netBeforeTax.Sub(tax).RoundBank(2)
	super := gross.Mul(SuperRate).RoundBank(2)

	return Breakdown{
		Hours:        hours,
		Rate:         rate,
		Gross:        gross,
		Commission:   commission,
		NetBeforeTax: netBeforeTax,
		TaxWithheld:  tax,
		NetPayment:   net,
		Super:        super,
	}, nil
}
