// Package loans implements the mortgage amortization and payoff projection
// engine: validated loan terms, payment plans, schedule generation with
// mortgage-insurance drop-off, and baseline-versus-scenario comparison.
package loans

import (
	"github.com/iwvelando/mortgage-payoff/pkg/constants"
	"github.com/iwvelando/mortgage-payoff/pkg/datetime"
	"github.com/shopspring/decimal"
)

// LoanTerms is the validated static description of a loan. Values are treated
// as immutable once validated; the engine never mutates them.
type LoanTerms struct {
	Name              string
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	TermMonths        int
	StartMonth        string // YYYY-MM anchor for schedule dates

	// MonthlyPayment optionally overrides the term-derived level payment
	// ("I know my monthly payment" mode). Zero means compute from the term.
	MonthlyPayment decimal.Decimal

	// HomeValue is required to evaluate PMI drop-off by loan-to-value. Zero
	// means absent.
	HomeValue decimal.Decimal

	MonthlyTax       decimal.Decimal
	MonthlyInsurance decimal.Decimal
	MonthlyHOA       decimal.Decimal
	MonthlyPMI       decimal.Decimal
}

// Validate enforces the structural invariants on the loan terms. It must pass
// before any LoanTerms value reaches the engine; ComputeSchedule calls it
// again so an unvalidated value can never produce a schedule.
func (terms LoanTerms) Validate() error {
	if !terms.Principal.IsPositive() {
		return &InvalidLoanError{Field: "principal", Reason: "must be positive"}
	}
	if terms.AnnualRatePercent.IsNegative() {
		return &InvalidLoanError{Field: "annualRatePercent", Reason: "must not be negative"}
	}
	if terms.TermMonths <= 0 {
		return &InvalidLoanError{Field: "termMonths", Reason: "must be positive"}
	}
	if !datetime.ValidMonth(terms.StartMonth) {
		return &InvalidLoanError{Field: "startMonth", Reason: "must be formatted as YYYY-MM"}
	}
	if terms.HomeValue.IsNegative() {
		return &InvalidLoanError{Field: "homeValue", Reason: "must not be negative"}
	}
	for _, addOn := range []struct {
		field string
		value decimal.Decimal
	}{
		{"monthlyTax", terms.MonthlyTax},
		{"monthlyInsurance", terms.MonthlyInsurance},
		{"monthlyHOA", terms.MonthlyHOA},
		{"monthlyPMI", terms.MonthlyPMI},
	} {
		if addOn.value.IsNegative() {
			return &InvalidLoanError{Field: addOn.field, Reason: "must not be negative"}
		}
	}
	if terms.MonthlyPayment.IsNegative() {
		return &InvalidLoanError{Field: "monthlyPayment", Reason: "must not be negative"}
	}
	if terms.MonthlyPayment.IsPositive() {
		firstInterest := CalculateInterestPayment(terms.Principal, terms.AnnualRatePercent)
		if terms.AnnualRatePercent.IsPositive() && !terms.MonthlyPayment.GreaterThan(firstInterest) {
			return &InvalidLoanError{Field: "monthlyPayment", Reason: "does not cover monthly interest"}
		}
	}
	return nil
}

// Warnings reports non-fatal configuration issues. A loan that charges PMI
// without a usable home value still amortizes, but PMI is charged for the
// life of the loan.
func (terms LoanTerms) Warnings() []string {
	var warnings []string
	if terms.MonthlyPMI.IsPositive() && !terms.canEvaluatePMIDrop() {
		if terms.HomeValue.IsZero() {
			warnings = append(warnings,
				"monthlyPMI is set but homeValue is absent; PMI will be charged for the life of the loan")
		} else {
			warnings = append(warnings,
				"homeValue is below the loan principal; PMI drop-off cannot be evaluated and PMI will be charged for the life of the loan")
		}
	}
	return warnings
}

// canEvaluatePMIDrop reports whether loan-to-value drop-off can be computed.
func (terms LoanTerms) canEvaluatePMIDrop() bool {
	return terms.HomeValue.IsPositive() && terms.HomeValue.GreaterThanOrEqual(terms.Principal)
}

// manualPaymentMode reports whether the caller supplied a payment instead of
// deriving one from the term.
func (terms LoanTerms) manualPaymentMode() bool {
	return terms.MonthlyPayment.IsPositive()
}

// escrowBase returns the recurring non-P&I charges excluding PMI.
func (terms LoanTerms) escrowBase() decimal.Decimal {
	return terms.MonthlyTax.Add(terms.MonthlyInsurance).Add(terms.MonthlyHOA)
}

// OneTimeExtra is a single extra principal payment applied at a specific
// period of the schedule.
type OneTimeExtra struct {
	MonthIndex int
	Amount     decimal.Decimal
}

// PaymentPlan describes extra payments layered on top of the scheduled
// payment. The zero value is the no-extra-payment baseline plan.
type PaymentPlan struct {
	ExtraMonthly decimal.Decimal

	// EffectiveFromMonth is the first period ExtraMonthly applies to;
	// zero is treated as period 1.
	EffectiveFromMonth int

	OneTimeExtra *OneTimeExtra
}

// BaselinePlan returns the no-extra-payment plan used as the comparison
// baseline.
func BaselinePlan() PaymentPlan {
	return PaymentPlan{}
}

// Validate enforces the structural invariants on the plan relative to the
// loan term it will be applied against.
func (plan PaymentPlan) Validate(termMonths int) error {
	if plan.ExtraMonthly.IsNegative() {
		return &InvalidPlanError{Field: "extraMonthly", Reason: "must not be negative"}
	}
	if plan.EffectiveFromMonth < 0 {
		return &InvalidPlanError{Field: "effectiveFromMonth", Reason: "must not be negative"}
	}
	if plan.OneTimeExtra != nil {
		if plan.OneTimeExtra.Amount.IsNegative() {
			return &InvalidPlanError{Field: "oneTimeExtra.amount", Reason: "must not be negative"}
		}
		if plan.OneTimeExtra.MonthIndex < 1 || plan.OneTimeExtra.MonthIndex > termMonths {
			return &InvalidPlanError{Field: "oneTimeExtra.monthIndex", Reason: "must be within the loan term"}
		}
	}
	return nil
}

// extraForMonth returns the extra principal this plan contributes at the
// given 1-based period, before balance clipping.
func (plan PaymentPlan) extraForMonth(monthIndex int) decimal.Decimal {
	extra := decimal.Zero
	effectiveFrom := plan.EffectiveFromMonth
	if effectiveFrom < constants.DefaultEffectiveFromMonth {
		effectiveFrom = constants.DefaultEffectiveFromMonth
	}
	if monthIndex >= effectiveFrom {
		extra = extra.Add(plan.ExtraMonthly)
	}
	if plan.OneTimeExtra != nil && plan.OneTimeExtra.MonthIndex == monthIndex {
		extra = extra.Add(plan.OneTimeExtra.Amount)
	}
	return extra
}

// HasExtras reports whether the plan ever contributes extra principal.
func (plan PaymentPlan) HasExtras() bool {
	if plan.ExtraMonthly.IsPositive() {
		return true
	}
	return plan.OneTimeExtra != nil && plan.OneTimeExtra.Amount.IsPositive()
}
