package config

import (
	"github.com/iwvelando/mortgage-payoff/pkg/constants"
	"github.com/iwvelando/mortgage-payoff/pkg/loans"
	"github.com/iwvelando/mortgage-payoff/pkg/money"
)

// Loan indicates a loan and its parameters as they arrive from the config
// file. Amounts are plain floats here; conversion to decimal happens at the
// boundary in ToLoanTerms.
type Loan struct {
	Name         string
	StartMonth   string
	Principal    float64
	InterestRate float64 // annual percentage, e.g. 6.625
	TermMonths   int

	// MonthlyPayment optionally replaces the term-derived payment.
	MonthlyPayment float64 `yaml:"monthlyPayment,omitempty"`

	HomeValue        float64 `yaml:"homeValue,omitempty"`
	MonthlyTax       float64 `yaml:"monthlyTax,omitempty"`
	MonthlyInsurance float64 `yaml:"monthlyInsurance,omitempty"`
	MonthlyHOA       float64 `yaml:"monthlyHOA,omitempty"`
	MonthlyPMI       float64 `yaml:"monthlyPMI,omitempty"`
}

// ToLoanTerms converts the config representation into the engine's validated
// decimal form.
func (loan Loan) ToLoanTerms() loans.LoanTerms {
	return loans.LoanTerms{
		Name:              loan.Name,
		Principal:         money.FromFloat(loan.Principal),
		AnnualRatePercent: money.FromFloat(loan.InterestRate),
		TermMonths:        loan.TermMonths,
		StartMonth:        loan.StartMonth,
		MonthlyPayment:    money.FromFloat(loan.MonthlyPayment),
		HomeValue:         money.FromFloat(loan.HomeValue),
		MonthlyTax:        money.FromFloat(loan.MonthlyTax),
		MonthlyInsurance:  money.FromFloat(loan.MonthlyInsurance),
		MonthlyHOA:        money.FromFloat(loan.MonthlyHOA),
		MonthlyPMI:        money.FromFloat(loan.MonthlyPMI),
	}
}

// ToPaymentPlan converts a scenario into the engine's payment plan form.
func (scenario Scenario) ToPaymentPlan() loans.PaymentPlan {
	plan := loans.PaymentPlan{
		ExtraMonthly:       money.FromFloat(scenario.ExtraMonthly),
		EffectiveFromMonth: scenario.ExtraFromMonth,
	}
	if plan.EffectiveFromMonth == 0 {
		plan.EffectiveFromMonth = constants.DefaultEffectiveFromMonth
	}
	if scenario.OneTimeExtra != nil {
		plan.OneTimeExtra = &loans.OneTimeExtra{
			MonthIndex: scenario.OneTimeExtra.MonthIndex,
			Amount:     money.FromFloat(scenario.OneTimeExtra.Amount),
		}
	}
	return plan
}

// ToPMIPolicy converts the policy config into the engine's form, falling
// back to the defaults for unset knobs.
func (policy PMIPolicyConfig) ToPMIPolicy() loans.PMIPolicy {
	result := loans.DefaultPMIPolicy()
	if policy.CutoffRatio > 0 {
		result.CutoffRatio = money.FromFloat(policy.CutoffRatio)
	}
	if policy.LTVBasis != "" {
		result.LTVBasis = policy.LTVBasis
	}
	return result
}
