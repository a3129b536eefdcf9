package loans

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SavingsSummary captures what a payment plan saves relative to a baseline
// schedule of the same loan. Both derived figures are non-negative by
// construction; a negative value indicates a defect in the engine.
type SavingsSummary struct {
	BaselineMonths   int
	ScenarioMonths   int
	BaselineInterest decimal.Decimal
	ScenarioInterest decimal.Decimal

	BaselinePayoffDate string
	ScenarioPayoffDate string

	MonthsShaved  int
	InterestSaved decimal.Decimal
}

// Compare runs the engine for both plans and derives the savings metrics.
// Extra payments are monotonically non-negative, so the scenario can never
// take longer or accrue more interest than the baseline; if it does, the
// comparison fails loudly instead of reporting negative savings.
func (e *AmortizationEngine) Compare(terms LoanTerms, baselinePlan, scenarioPlan PaymentPlan) (SavingsSummary, error) {
	var summary SavingsSummary

	baselineSchedule, err := e.ComputeSchedule(terms, baselinePlan)
	if err != nil {
		return summary, err
	}
	scenarioSchedule, err := e.ComputeSchedule(terms, scenarioPlan)
	if err != nil {
		return summary, err
	}

	baseline := Summarize(terms, baselineSchedule)
	scenario := Summarize(terms, scenarioSchedule)

	summary = SavingsSummary{
		BaselineMonths:     baseline.Months,
		ScenarioMonths:     scenario.Months,
		BaselineInterest:   baseline.TotalInterest,
		ScenarioInterest:   scenario.TotalInterest,
		BaselinePayoffDate: baseline.PayoffDate,
		ScenarioPayoffDate: scenario.PayoffDate,
		MonthsShaved:       baseline.Months - scenario.Months,
		InterestSaved:      baseline.TotalInterest.Sub(scenario.TotalInterest),
	}

	if summary.MonthsShaved < 0 {
		return SavingsSummary{}, &InvariantViolationError{
			Reason: fmt.Sprintf("scenario schedule is longer than baseline (%d > %d months)",
				scenario.Months, baseline.Months),
		}
	}
	if summary.InterestSaved.IsNegative() {
		return SavingsSummary{}, &InvariantViolationError{
			Reason: fmt.Sprintf("scenario accrues more interest than baseline (%s > %s)",
				scenario.TotalInterest.StringFixed(2), baseline.TotalInterest.StringFixed(2)),
		}
	}

	e.logger.Debug("compared schedules",
		zap.String("op", "loans.Compare"),
		zap.String("loan", terms.Name),
		zap.Int("monthsShaved", summary.MonthsShaved),
		zap.String("interestSaved", summary.InterestSaved.StringFixed(2)),
	)

	return summary, nil
}
