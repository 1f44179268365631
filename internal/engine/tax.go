package engine

import "github.com/shopspring/decimal"

// TaxCalculator computes UK income tax, National Insurance, savings-interest
// tax and capital-gains tax under the 2024/25 rules. It is stateless: every
// method is a pure function of its arguments, and callers derive marginal tax
// as tax(ytd+new) − tax(ytd).
//
// Unit convention: every exported method takes and returns int64 pence. Band
// arithmetic happens internally in pounds as decimal.Decimal; results are
// multiplied by 100 and truncated at exactly one place per method.
type TaxCalculator struct {
	PersonalAllowance   decimal.Decimal
	BasicRateLimit      decimal.Decimal
	AdditionalRateLimit decimal.Decimal

	RateBasic      decimal.Decimal
	RateHigher     decimal.Decimal
	RateAdditional decimal.Decimal

	NIPrimaryThreshold   decimal.Decimal
	NIUpperEarningsLimit decimal.Decimal
	NIRateMain           decimal.Decimal
	NIRateAdditional     decimal.Decimal

	PSABasic      decimal.Decimal
	PSAHigher     decimal.Decimal
	PSAAdditional decimal.Decimal

	CGTAllowance  decimal.Decimal
	CGTRateBasic  decimal.Decimal
	CGTRateHigher decimal.Decimal
}

// NewTaxCalculator returns a calculator loaded with the 2024/25 tax year
// figures (post Oct-2024 Budget CGT rates).
func NewTaxCalculator() *TaxCalculator {
	return &TaxCalculator{
		PersonalAllowance:   decimal.NewFromInt(12570),
		BasicRateLimit:      decimal.NewFromInt(50270),
		AdditionalRateLimit: decimal.NewFromInt(125140),

		RateBasic:      decimal.NewFromFloat(0.20),
		RateHigher:     decimal.NewFromFloat(0.40),
		RateAdditional: decimal.NewFromFloat(0.45),

		NIPrimaryThreshold:   decimal.NewFromInt(12570),
		NIUpperEarningsLimit: decimal.NewFromInt(50270),
		NIRateMain:           decimal.NewFromFloat(0.08),
		NIRateAdditional:     decimal.NewFromFloat(0.02),

		PSABasic:      decimal.NewFromInt(1000),
		PSAHigher:     decimal.NewFromInt(500),
		PSAAdditional: decimal.Zero,

		CGTAllowance:  decimal.NewFromInt(3000),
		CGTRateBasic:  decimal.NewFromFloat(0.18),
		CGTRateHigher: decimal.NewFromFloat(0.24),
	}
}

func poundsFromPence(p int64) decimal.Decimal {
	return decimal.New(p, -2)
}

func penceFromPounds(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).IntPart()
}

// incomeTax returns cumulative income tax on a full annual income, in pounds.
// The personal allowance tapers to zero between £100k and £125,140 at 50p per
// £1 over £100k.
func (tc *TaxCalculator) incomeTax(annualIncome decimal.Decimal) decimal.Decimal {
	if annualIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	allowance := tc.PersonalAllowance
	taperStart := decimal.NewFromInt(100000)
	if annualIncome.GreaterThan(taperStart) {
		reduction := annualIncome.Sub(taperStart).Div(decimal.NewFromInt(2))
		allowance = decimal.Max(decimal.Zero, allowance.Sub(reduction))
	}
	taxable := decimal.Max(decimal.Zero, annualIncome.Sub(allowance))
	if taxable.IsZero() {
		return decimal.Zero
	}

	basicBand := tc.BasicRateLimit.Sub(tc.PersonalAllowance) // 37,700
	inBasic := decimal.Min(taxable, basicBand)
	tax := inBasic.Mul(tc.RateBasic)
	remaining := taxable.Sub(inBasic)
	if remaining.LessThanOrEqual(decimal.Zero) {
		return tax
	}

	// The higher band shrinks as the allowance tapers: the additional-rate
	// threshold is fixed in gross terms, not taxable terms.
	additionalThresholdTaxable := tc.AdditionalRateLimit.Sub(allowance)
	higherBand := decimal.Max(decimal.Zero, additionalThresholdTaxable.Sub(basicBand))
	inHigher := decimal.Min(remaining, higherBand)
	tax = tax.Add(inHigher.Mul(tc.RateHigher))
	remaining = remaining.Sub(inHigher)
	if remaining.LessThanOrEqual(decimal.Zero) {
		return tax
	}
	return tax.Add(remaining.Mul(tc.RateAdditional))
}

// nationalInsurance returns cumulative employee NI on a full annual income,
// in pounds: 8% between the primary threshold and upper earnings limit, 2%
// above, zero below.
func (tc *TaxCalculator) nationalInsurance(annualIncome decimal.Decimal) decimal.Decimal {
	if annualIncome.LessThanOrEqual(tc.NIPrimaryThreshold) {
		return decimal.Zero
	}
	band1 := decimal.Min(annualIncome, tc.NIUpperEarningsLimit).Sub(tc.NIPrimaryThreshold)
	ni := decimal.Max(decimal.Zero, band1.Mul(tc.NIRateMain))
	if annualIncome.GreaterThan(tc.NIUpperEarningsLimit) {
		ni = ni.Add(annualIncome.Sub(tc.NIUpperEarningsLimit).Mul(tc.NIRateAdditional))
	}
	return ni
}

// IncomeTaxAnnual returns cumulative income tax on a full annual income.
// Pence in, pence out.
func (tc *TaxCalculator) IncomeTaxAnnual(annualIncome int64) int64 {
	return penceFromPounds(tc.incomeTax(poundsFromPence(annualIncome)))
}

// NationalInsuranceAnnual returns cumulative NI on a full annual income.
// Pence in, pence out.
func (tc *TaxCalculator) NationalInsuranceAnnual(annualIncome int64) int64 {
	return penceFromPounds(tc.nationalInsurance(poundsFromPence(annualIncome)))
}

// PayrollDeductions returns the marginal income tax plus marginal NI due on
// an incremental slice of earnings, given year-to-date taxable and NI-able
// totals. Pence in, pence out.
func (tc *TaxCalculator) PayrollDeductions(amountForTax, amountForNI, ytdTaxable, ytdNIable int64) int64 {
	grossTax := poundsFromPence(amountForTax)
	ytdTax := poundsFromPence(ytdTaxable)
	taxDue := tc.incomeTax(ytdTax.Add(grossTax)).Sub(tc.incomeTax(ytdTax))

	grossNI := poundsFromPence(amountForNI)
	ytdNI := poundsFromPence(ytdNIable)
	niDue := tc.nationalInsurance(ytdNI.Add(grossNI)).Sub(tc.nationalInsurance(ytdNI))

	return penceFromPounds(taxDue.Add(niDue))
}

// SavingsTax returns the tax due on a slice of gross savings interest. The
// Personal Savings Allowance (£1,000 basic / £500 higher / £0 additional,
// chosen by YTD total income) is consumed by prior-year-to-date interest
// first; any remainder of the slice is taxed at the owner's marginal rate.
// Pence in, pence out.
func (tc *TaxCalculator) SavingsTax(grossInterest, ytdTotalIncome, ytdInterest int64) int64 {
	gross := poundsFromPence(grossInterest)
	totalIncome := poundsFromPence(ytdTotalIncome)
	priorInterest := poundsFromPence(ytdInterest)

	psa := tc.PSABasic
	rate := tc.RateBasic
	if totalIncome.GreaterThan(tc.AdditionalRateLimit) {
		psa = tc.PSAAdditional
		rate = tc.RateAdditional
	} else if totalIncome.GreaterThan(tc.BasicRateLimit) {
		psa = tc.PSAHigher
		rate = tc.RateHigher
	}

	psaRemaining := decimal.Max(decimal.Zero, psa.Sub(decimal.Min(priorInterest, psa)))
	taxable := decimal.Max(decimal.Zero, gross.Sub(psaRemaining))
	if taxable.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	return penceFromPounds(taxable.Mul(rate))
}

// CapitalGainsTax returns the CGT due on one realized gain, given gains
// already realized this tax year and the owner's total taxable income. The
// £3,000 annual allowance is consumed sequentially across the year. The
// marginal gain's rate is set by where it sits relative to
// max(income, personal allowance) + prior taxable gains against the basic
// rate ceiling: unused personal allowance never extends the 18% band.
// Pence in, pence out.
func (tc *TaxCalculator) CapitalGainsTax(marginalGain, ytdGains, totalIncome int64) int64 {
	gain := poundsFromPence(marginalGain)
	priorGains := poundsFromPence(ytdGains)
	income := poundsFromPence(totalIncome)

	taxableCum := decimal.Max(decimal.Zero, priorGains.Add(gain).Sub(tc.CGTAllowance))
	taxablePrior := decimal.Max(decimal.Zero, priorGains.Sub(tc.CGTAllowance))
	taxableMarginal := taxableCum.Sub(taxablePrior)
	if taxableMarginal.LessThanOrEqual(decimal.Zero) {
		return 0
	}

	// Gains sit on top of income, and the band is consumed by income floored
	// at the personal allowance plus prior taxable gains.
	incomeBase := decimal.Max(income, tc.PersonalAllowance).Add(taxablePrior)
	remainingBand := decimal.Max(decimal.Zero, tc.BasicRateLimit.Sub(incomeBase))

	inBasic := decimal.Min(taxableMarginal, remainingBand)
	inHigher := taxableMarginal.Sub(inBasic)

	tax := inBasic.Mul(tc.CGTRateBasic).Add(inHigher.Mul(tc.CGTRateHigher))
	return penceFromPounds(tax)
}
