package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/mortgage-payoff/pkg/constants"
	"github.com/iwvelando/mortgage-payoff/pkg/datetime"
	"github.com/iwvelando/mortgage-payoff/pkg/money"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MonthlyEntry holds the values for one period of an amortization schedule.
// Entries are produced in strict month order and are immutable once emitted.
type MonthlyEntry struct {
	MonthIndex         int
	Date               string // YYYY-MM
	BeginningBalance   decimal.Decimal
	ScheduledPrincipal decimal.Decimal
	ScheduledInterest  decimal.Decimal
	ExtraPrincipal     decimal.Decimal
	EndingBalance      decimal.Decimal
	PMIActive          bool
	EscrowAddOns       decimal.Decimal
	TotalPayment       decimal.Decimal
	CumulativeInterest decimal.Decimal
}

// CalculateMonthlyPayment calculates the level monthly payment for a loan
// using the standard amortization formula, ceiled to the next cent so the
// loan always retires within the term. Rates at the edges of float64 never
// panic: a periodic rate that underflows amortizes as zero-interest, and a
// rate whose payment overflows is rejected as invalid.
func CalculateMonthlyPayment(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	straightLine := func() decimal.Decimal {
		return money.CeilCents(principal.Div(decimal.NewFromInt(int64(termMonths))))
	}
	if annualRatePercent.IsZero() {
		// For zero interest, simply divide the principal by term
		return straightLine(), nil
	}

	p := principal.InexactFloat64()
	periodicInterestRate := annualRatePercent.InexactFloat64() / (constants.PercentageMultiplier * constants.MonthsPerYear)
	power := math.Pow((1.00 + periodicInterestRate), float64(termMonths))
	discountFactor := (power - 1.00) / power
	if discountFactor == 0 {
		// The periodic rate underflowed float64 and accrues no interest.
		return straightLine(), nil
	}
	if math.IsInf(power, 1) {
		// The compounding term overflowed; the discount factor limit is 1.
		discountFactor = 1.00
	}

	payment := p * periodicInterestRate / discountFactor
	if math.IsInf(payment, 0) || math.IsNaN(payment) {
		return decimal.Zero, &InvalidLoanError{
			Field:  "annualRatePercent",
			Reason: "produces a payment outside the representable range",
		}
	}
	return money.CeilCents(decimal.NewFromFloat(payment)), nil
}

// CalculateInterestPayment calculates the interest portion of a payment,
// rounded to cents at the point of accrual.
func CalculateInterestPayment(remainingPrincipal, annualRatePercent decimal.Decimal) decimal.Decimal {
	rate := annualRatePercent.Div(decimal.NewFromInt(constants.PercentageMultiplier * constants.MonthsPerYear))
	return money.RoundCents(remainingPrincipal.Mul(rate))
}

// AmortizationEngine produces amortization schedules. The engine holds no
// state between invocations; ComputeSchedule is a pure function of its
// inputs and is safe to call concurrently.
type AmortizationEngine struct {
	logger *zap.Logger
	policy PMIPolicy
}

// NewAmortizationEngine creates an engine with the default PMI policy.
func NewAmortizationEngine(logger *zap.Logger) *AmortizationEngine {
	return NewAmortizationEngineWithPolicy(logger, DefaultPMIPolicy())
}

// NewAmortizationEngineWithPolicy creates an engine with an explicit PMI
// policy.
func NewAmortizationEngineWithPolicy(logger *zap.Logger, policy PMIPolicy) *AmortizationEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationEngine{logger: logger, policy: policy}
}

// ComputeSchedule generates the complete month-by-month amortization schedule
// for the given loan and payment plan. The schedule terminates the moment the
// balance reaches zero, which may be before the stated term. On any
// validation failure no partial schedule is returned.
func (e *AmortizationEngine) ComputeSchedule(terms LoanTerms, plan PaymentPlan) ([]MonthlyEntry, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if err := plan.Validate(terms.TermMonths); err != nil {
		return nil, err
	}
	if err := e.policy.Validate(); err != nil {
		return nil, err
	}
	if terms.TermMonths > constants.MaxScheduleMonths {
		return nil, &InvariantViolationError{
			Reason: fmt.Sprintf("termMonths %d exceeds the supported maximum of %d", terms.TermMonths, constants.MaxScheduleMonths),
		}
	}

	monthlyPayment := terms.MonthlyPayment
	if !terms.manualPaymentMode() {
		derived, err := CalculateMonthlyPayment(terms.Principal, terms.AnnualRatePercent, terms.TermMonths)
		if err != nil {
			return nil, err
		}
		monthlyPayment = derived
	}

	// A manual payment may retire the loan later than the stated term; a
	// term-derived payment cannot.
	horizon := terms.TermMonths
	if terms.manualPaymentMode() {
		horizon = constants.MaxScheduleMonths
	}

	tracker := newPMITracker(terms, e.policy)
	escrowBase := terms.escrowBase()

	schedule := make([]MonthlyEntry, 0, terms.TermMonths)
	balance := terms.Principal
	cumulativeInterest := decimal.Zero

	for monthIndex := 1; monthIndex <= horizon; monthIndex++ {
		interest := CalculateInterestPayment(balance, terms.AnnualRatePercent)
		scheduledPrincipal := money.Min(monthlyPayment.Sub(interest), balance)
		if scheduledPrincipal.IsNegative() {
			return nil, &InvariantViolationError{
				Reason: fmt.Sprintf("payment no longer covers interest at month %d", monthIndex),
			}
		}

		if !terms.manualPaymentMode() && monthIndex == terms.TermMonths {
			// The loan matures this period; settle the remaining balance so
			// accumulated cent rounding cannot leave a residual.
			scheduledPrincipal = balance
		}

		extra := plan.extraForMonth(monthIndex)
		if remaining := balance.Sub(scheduledPrincipal); extra.GreaterThan(remaining) {
			e.logger.Debug("capping extra principal payment to prevent overpayment",
				zap.String("op", "loans.ComputeSchedule"),
				zap.String("loan", terms.Name),
				zap.Int("month", monthIndex),
				zap.String("requested", extra.StringFixed(2)),
				zap.String("capped", remaining.StringFixed(2)),
			)
			extra = remaining
		}

		endingBalance := balance.Sub(scheduledPrincipal).Sub(extra)

		pmiCharged := tracker.chargeFor(endingBalance)
		escrow := escrowBase
		if pmiCharged {
			escrow = escrow.Add(terms.MonthlyPMI)
		}

		date, err := datetime.OffsetDate(terms.StartMonth, datetime.DateTimeLayout, monthIndex-1)
		if err != nil {
			return nil, err
		}

		cumulativeInterest = cumulativeInterest.Add(interest)

		schedule = append(schedule, MonthlyEntry{
			MonthIndex:         monthIndex,
			Date:               date,
			BeginningBalance:   balance,
			ScheduledPrincipal: scheduledPrincipal,
			ScheduledInterest:  interest,
			ExtraPrincipal:     extra,
			EndingBalance:      endingBalance,
			PMIActive:          pmiCharged,
			EscrowAddOns:       escrow,
			TotalPayment:       scheduledPrincipal.Add(interest).Add(extra).Add(escrow),
			CumulativeInterest: cumulativeInterest,
		})

		balance = endingBalance

		if money.IsZero(balance) {
			break
		}
	}

	if !money.IsZero(balance) {
		return nil, &InvariantViolationError{
			Reason: fmt.Sprintf("schedule did not terminate within %d periods; remaining balance %s", horizon, balance.StringFixed(2)),
		}
	}

	e.logger.Debug("computed amortization schedule",
		zap.String("op", "loans.ComputeSchedule"),
		zap.String("loan", terms.Name),
		zap.Int("months", len(schedule)),
	)

	return schedule, nil
}
