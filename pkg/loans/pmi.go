package loans

import (
	"github.com/iwvelando/mortgage-payoff/pkg/constants"
	"github.com/shopspring/decimal"
)

// PMIPolicy controls when private mortgage insurance stops being charged.
// The exact removal convention varies between servicers, so both the cutoff
// ratio and when removal takes effect are configurable rather than
// hard-coded.
type PMIPolicy struct {
	// CutoffRatio is the loan-to-value ratio at or below which PMI is
	// removed. Conventionally 0.80.
	CutoffRatio decimal.Decimal

	// LTVBasis selects when the cutoff takes effect relative to the period's
	// payment. constants.LTVBasisPostPayment (the default) bills PMI together
	// with the payment, so the period whose payment crosses the threshold is
	// still charged and removal starts the following period.
	// constants.LTVBasisPrePayment re-evaluates before billing, so the
	// crossing period itself is already free of PMI.
	LTVBasis string
}

// DefaultPMIPolicy returns the 80% post-payment policy.
func DefaultPMIPolicy() PMIPolicy {
	return PMIPolicy{
		CutoffRatio: decimal.NewFromFloat(constants.DefaultPMICutoffRatio),
		LTVBasis:    constants.LTVBasisPostPayment,
	}
}

// Validate checks the policy for usable values.
func (policy PMIPolicy) Validate() error {
	if !policy.CutoffRatio.IsPositive() || policy.CutoffRatio.GreaterThan(decimal.NewFromInt(1)) {
		return &InvalidLoanError{Field: "pmiPolicy.cutoffRatio", Reason: "must be within (0, 1]"}
	}
	switch policy.LTVBasis {
	case constants.LTVBasisPostPayment, constants.LTVBasisPrePayment:
		return nil
	default:
		return &InvalidLoanError{Field: "pmiPolicy.ltvBasis", Reason: "must be postPayment or prePayment"}
	}
}

// pmiTracker carries the insurance state across schedule periods.
type pmiTracker struct {
	policy           PMIPolicy
	charged          bool
	canDrop          bool
	thresholdBalance decimal.Decimal
}

func newPMITracker(terms LoanTerms, policy PMIPolicy) pmiTracker {
	tracker := pmiTracker{
		policy:  policy,
		charged: terms.MonthlyPMI.IsPositive(),
		canDrop: terms.MonthlyPMI.IsPositive() && terms.canEvaluatePMIDrop(),
	}
	if tracker.canDrop {
		tracker.thresholdBalance = terms.HomeValue.Mul(policy.CutoffRatio)
	}
	return tracker
}

// chargeFor reports whether PMI is charged for the period that closes with
// the given post-payment balance, and advances the tracker state. Under the
// post-payment basis the crossing period is still charged and removal starts
// the following period; under the pre-payment basis the crossing period is
// already free of PMI.
func (t *pmiTracker) chargeFor(endingBalance decimal.Decimal) bool {
	if !t.charged || !t.canDrop {
		return t.charged
	}

	charged := t.charged
	if endingBalance.LessThanOrEqual(t.thresholdBalance) {
		t.charged = false
		if t.policy.LTVBasis == constants.LTVBasisPrePayment {
			charged = false
		}
	}
	return charged
}
