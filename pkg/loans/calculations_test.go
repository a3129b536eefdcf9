package loans

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestCalculateMonthlyPayment(t *testing.T) {
	tests := []struct {
		name              string
		principal         float64
		annualRatePercent float64
		termMonths        int
		expectedRange     []float64 // [min, max] expected range
	}{
		{
			name:              "Standard 30-year mortgage",
			principal:         240000,
			annualRatePercent: 6.0,
			termMonths:        360,
			expectedRange:     []float64{1400, 1500}, // Around $1439
		},
		{
			name:              "5-year car loan",
			principal:         20000,
			annualRatePercent: 4.0,
			termMonths:        60,
			expectedRange:     []float64{360, 380}, // Around $368
		},
		{
			name:              "Zero interest loan",
			principal:         12000,
			annualRatePercent: 0.0,
			termMonths:        12,
			expectedRange:     []float64{1000, 1000}, // Exactly $1000
		},
		{
			name:              "High interest loan",
			principal:         10000,
			annualRatePercent: 18.0,
			termMonths:        36,
			expectedRange:     []float64{360, 380}, // Around $362
		},
		{
			name:              "Single period term",
			principal:         1000,
			annualRatePercent: 0.0,
			termMonths:        1,
			expectedRange:     []float64{1000, 1000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment, err := CalculateMonthlyPayment(
				decimal.NewFromFloat(tt.principal),
				decimal.NewFromFloat(tt.annualRatePercent),
				tt.termMonths,
			)
			if err != nil {
				t.Fatalf("CalculateMonthlyPayment() error = %v", err)
			}

			result := payment.InexactFloat64()
			if result < tt.expectedRange[0] || result > tt.expectedRange[1] {
				t.Errorf("CalculateMonthlyPayment() = %.2f, expected range [%.2f, %.2f]",
					result, tt.expectedRange[0], tt.expectedRange[1])
			}
		})
	}
}

func TestCalculateMonthlyPaymentExtremeRates(t *testing.T) {
	// A periodic rate below float64 resolution accrues no interest and must
	// amortize straight-line instead of dividing by a zero discount factor.
	payment, err := CalculateMonthlyPayment(decimal.NewFromInt(12000), decimal.NewFromFloat(1e-18), 12)
	if err != nil {
		t.Fatalf("CalculateMonthlyPayment() error = %v", err)
	}
	if payment.StringFixed(2) != "1000.00" {
		t.Errorf("payment = %s, want 1000.00 for an underflowing rate", payment.StringFixed(2))
	}

	// A rate that overflows the compounding term still yields a finite,
	// interest-dominated payment.
	payment, err = CalculateMonthlyPayment(decimal.NewFromInt(1000), decimal.NewFromFloat(1e6), 360)
	if err != nil {
		t.Fatalf("CalculateMonthlyPayment() error = %v", err)
	}
	if payment.IsZero() || payment.IsNegative() {
		t.Errorf("payment = %s, want a positive finite payment for a huge rate", payment.StringFixed(2))
	}

	// A rate whose payment cannot be represented is invalid rather than a
	// panic.
	_, err = CalculateMonthlyPayment(decimal.NewFromFloat(1e300), decimal.NewFromFloat(1e300), 360)
	if err == nil {
		t.Fatal("CalculateMonthlyPayment() expected error for an unrepresentable payment, got nil")
	}
	var invalidLoan *InvalidLoanError
	if !errors.As(err, &invalidLoan) {
		t.Errorf("error type = %T, want *InvalidLoanError", err)
	}
}

func TestComputeScheduleTinyRate(t *testing.T) {
	engine := NewAmortizationEngine(nil)
	terms := LoanTerms{
		Name:              "tiny rate",
		Principal:         decimal.NewFromInt(12000),
		AnnualRatePercent: decimal.NewFromFloat(1e-18),
		TermMonths:        12,
		StartMonth:        "2026-01",
	}

	schedule, err := engine.ComputeSchedule(terms, BaselinePlan())
	if err != nil {
		t.Fatalf("ComputeSchedule() error = %v", err)
	}
	if len(schedule) != 12 {
		t.Fatalf("schedule length = %d, want 12", len(schedule))
	}
	if !schedule[len(schedule)-1].EndingBalance.IsZero() {
		t.Errorf("final endingBalance = %s, want 0",
			schedule[len(schedule)-1].EndingBalance.StringFixed(2))
	}
}

func TestCalculateInterestPayment(t *testing.T) {
	tests := []struct {
		name               string
		remainingPrincipal float64
		annualRatePercent  float64
		expected           string
	}{
		{
			name:               "Standard mortgage interest",
			remainingPrincipal: 200000,
			annualRatePercent:  6.0,
			expected:           "1000.00", // 200000 * 0.06 / 12
		},
		{
			name:               "Car loan interest",
			remainingPrincipal: 15000,
			annualRatePercent:  4.5,
			expected:           "56.25", // 15000 * 0.045 / 12
		},
		{
			name:               "Zero interest",
			remainingPrincipal: 10000,
			annualRatePercent:  0.0,
			expected:           "0.00",
		},
		{
			name:               "Rounded to cents",
			remainingPrincipal: 99999.99,
			annualRatePercent:  6.625,
			expected:           "552.08", // 99999.99 * 0.0055208333...
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInterestPayment(
				decimal.NewFromFloat(tt.remainingPrincipal),
				decimal.NewFromFloat(tt.annualRatePercent),
			)
			if result.StringFixed(2) != tt.expected {
				t.Errorf("CalculateInterestPayment() = %s, expected %s", result.StringFixed(2), tt.expected)
			}
		})
	}
}

func TestComputeScheduleZeroRateFullPayoff(t *testing.T) {
	engine := NewAmortizationEngine(zap.NewNop())
	terms := LoanTerms{
		Name:              "zero rate",
		Principal:         decimal.NewFromInt(12000),
		AnnualRatePercent: decimal.Zero,
		TermMonths:        12,
		StartMonth:        "2026-01",
	}

	schedule, err := engine.ComputeSchedule(terms, BaselinePlan())
	if err != nil {
		t.Fatalf("ComputeSchedule() error = %v", err)
	}

	if len(schedule) != 12 {
		t.Fatalf("schedule length = %d, want 12", len(schedule))
	}
	for _, entry := range schedule {
		if entry.ScheduledPrincipal.StringFixed(2) != "1000.00" {
			t.Errorf("month %d scheduledPrincipal = %s, want 1000.00",
				entry.MonthIndex, entry.ScheduledPrincipal.StringFixed(2))
		}
		if !entry.ScheduledInterest.IsZero() {
			t.Errorf("month %d scheduledInterest = %s, want 0",
				entry.MonthIndex, entry.ScheduledInterest.StringFixed(2))
		}
	}
	final := schedule[len(schedule)-1]
	if final.EndingBalance.StringFixed(2) != "0.00" {
		t.Errorf("final endingBalance = %s, want 0.00", final.EndingBalance.StringFixed(2))
	}
	if final.Date != "2026-12" {
		t.Errorf("final date = %s, want 2026-12", final.Date)
	}
}

func TestComputeSchedulePrincipalFullyAmortized(t *testing.T) {
	engine := NewAmortizationEngine(nil)
	terms := LoanTerms{
		Name:              "standard",
		Principal:         decimal.NewFromInt(300000),
		AnnualRatePercent: decimal.NewFromFloat(6.625),
		TermMonths:        360,
		StartMonth:        "2025-06",
	}

	schedule, err := engine.ComputeSchedule(terms, BaselinePlan())
	if err != nil {
		t.Fatalf("ComputeSchedule() error = %v", err)
	}

	if len(schedule) > 360 || len(schedule) < 359 {
		t.Errorf("schedule length = %d, want 359 or 360", len(schedule))
	}

	totalPrincipal := decimal.Zero
	prevBalance := terms.Principal
	for _, entry := range schedule {
		if !entry.BeginningBalance.Equal(prevBalance) {
			t.Fatalf("month %d beginningBalance = %s, want %s",
				entry.MonthIndex, entry.BeginningBalance.StringFixed(2), prevBalance.StringFixed(2))
		}
		totalPrincipal = totalPrincipal.Add(entry.ScheduledPrincipal)
		prevBalance = entry.EndingBalance
	}

	if !totalPrincipal.Equal(terms.Principal) {
		t.Errorf("sum of scheduledPrincipal = %s, want %s",
			totalPrincipal.StringFixed(2), terms.Principal.StringFixed(2))
	}
	if !schedule[len(schedule)-1].EndingBalance.IsZero() {
		t.Errorf("final endingBalance = %s, want 0",
			schedule[len(schedule)-1].EndingBalance.StringFixed(2))
	}
}

func TestComputeScheduleOneTimeExtraFullPayoff(t *testing.T) {
	engine := NewAmortizationEngine(nil)
	terms := LoanTerms{
		Name:              "early payoff",
		Principal:         decimal.NewFromInt(5000),
		AnnualRatePercent: decimal.NewFromFloat(6.0),
		TermMonths:        60,
		StartMonth:        "2026-01",
	}
	plan := PaymentPlan{
		OneTimeExtra: &OneTimeExtra{MonthIndex: 1, Amount: decimal.NewFromInt(5000)},
	}

	schedule, err := engine.ComputeSchedule(terms, plan)
	if err != nil {
		t.Fatalf("ComputeSchedule() error = %v", err)
	}

	if len(schedule) != 1 {
		t.Fatalf("schedule length = %d, want 1", len(schedule))
	}
	entry := schedule[0]
	if !entry.EndingBalance.IsZero() {
		t.Errorf("endingBalance = %s, want 0", entry.EndingBalance.StringFixed(2))
	}
	// Extra is clipped so scheduled + extra exactly retires the balance.
	paid := entry.ScheduledPrincipal.Add(entry.ExtraPrincipal)
	if !paid.Equal(terms.Principal) {
		t.Errorf("principal paid = %s, want %s", paid.StringFixed(2), terms.Principal.StringFixed(2))
	}
}

func TestComputeScheduleExtraMonthlyShortensTerm(t *testing.T) {
	engine := NewAmortizationEngine(nil)
	terms := LoanTerms{
		Name:              "extra monthly",
		Principal:         decimal.NewFromInt(200000),
		AnnualRatePercent: decimal.NewFromFloat(5.0),
		TermMonths:        360,
		StartMonth:        "2026-01",
	}

	baseline, err := engine.ComputeSchedule(terms, BaselinePlan())
	if err != nil {
		t.Fatalf("baseline ComputeSchedule() error = %v", err)
	}
	scenario, err := engine.ComputeSchedule(terms, PaymentPlan{ExtraMonthly: decimal.NewFromInt(500)})
	if err != nil {
		t.Fatalf("scenario ComputeSchedule() error = %v", err)
	}

	if len(scenario) >= len(baseline) {
		t.Errorf("scenario length %d should be shorter than baseline length %d",
			len(scenario), len(baseline))
	}

	baselineInterest := decimal.Zero
	for _, entry := range baseline {
		baselineInterest = baselineInterest.Add(entry.ScheduledInterest)
	}
	scenarioInterest := decimal.Zero
	for _, entry := range scenario {
		scenarioInterest = scenarioInterest.Add(entry.ScheduledInterest)
	}
	if scenarioInterest.GreaterThan(baselineInterest) {
		t.Errorf("scenario interest %s exceeds baseline interest %s",
			scenarioInterest.StringFixed(2), baselineInterest.StringFixed(2))
	}
}

func TestComputeScheduleEffectiveFromMonth(t *testing.T) {
	engine := NewAmortizationEngine(nil)
	terms := LoanTerms{
		Name:              "deferred extra",
		Principal:         decimal.NewFromInt(100000),
		AnnualRatePercent: decimal.NewFromFloat(6.0),
		TermMonths:        120,
		StartMonth:        "2026-01",
	}
	plan := PaymentPlan{
		ExtraMonthly:       decimal.NewFromInt(300),
		EffectiveFromMonth: 13,
	}

	schedule, err := engine.ComputeSchedule(terms, plan)
	if err != nil {
		t.Fatalf("ComputeSchedule() error = %v", err)
	}

	for _, entry := range schedule[:12] {
		if !entry.ExtraPrincipal.IsZero() {
			t.Errorf("month %d extraPrincipal = %s before effective month",
				entry.MonthIndex, entry.ExtraPrincipal.StringFixed(2))
		}
	}
	if schedule[12].ExtraPrincipal.StringFixed(2) != "300.00" {
		t.Errorf("month 13 extraPrincipal = %s, want 300.00",
			schedule[12].ExtraPrincipal.StringFixed(2))
	}
}

func TestComputeScheduleManualPaymentMode(t *testing.T) {
	engine := NewAmortizationEngine(nil)
	terms := LoanTerms{
		Name:              "manual payment",
		Principal:         decimal.NewFromInt(1200),
		AnnualRatePercent: decimal.Zero,
		TermMonths:        12,
		StartMonth:        "2026-01",
		MonthlyPayment:    decimal.NewFromInt(100),
	}

	schedule, err := engine.ComputeSchedule(terms, BaselinePlan())
	if err != nil {
		t.Fatalf("ComputeSchedule() error = %v", err)
	}
	if len(schedule) != 12 {
		t.Fatalf("schedule length = %d, want 12", len(schedule))
	}
	if !schedule[len(schedule)-1].EndingBalance.IsZero() {
		t.Errorf("final endingBalance = %s, want 0",
			schedule[len(schedule)-1].EndingBalance.StringFixed(2))
	}
}

func TestComputeScheduleManualPaymentBeyondTerm(t *testing.T) {
	// A manual payment smaller than the term-derived one pays off later than
	// the stated term; the schedule is allowed to run longer.
	engine := NewAmortizationEngine(nil)
	terms := LoanTerms{
		Name:              "slow manual payment",
		Principal:         decimal.NewFromInt(10000),
		AnnualRatePercent: decimal.NewFromFloat(4.0),
		TermMonths:        12,
		StartMonth:        "2026-01",
		MonthlyPayment:    decimal.NewFromInt(500),
	}

	schedule, err := engine.ComputeSchedule(terms, BaselinePlan())
	if err != nil {
		t.Fatalf("ComputeSchedule() error = %v", err)
	}
	if len(schedule) <= 12 {
		t.Errorf("schedule length = %d, want more than the stated 12-month term", len(schedule))
	}
	if !schedule[len(schedule)-1].EndingBalance.IsZero() {
		t.Errorf("final endingBalance = %s, want 0",
			schedule[len(schedule)-1].EndingBalance.StringFixed(2))
	}
}

func TestComputeScheduleErrors(t *testing.T) {
	engine := NewAmortizationEngine(nil)

	tests := []struct {
		name      string
		terms     LoanTerms
		plan      PaymentPlan
		errTarget interface{}
	}{
		{
			name: "Invalid loan",
			terms: LoanTerms{
				Principal:         decimal.Zero,
				AnnualRatePercent: decimal.NewFromFloat(6.0),
				TermMonths:        360,
				StartMonth:        "2026-01",
			},
			plan:      BaselinePlan(),
			errTarget: new(*InvalidLoanError),
		},
		{
			name: "Invalid plan",
			terms: LoanTerms{
				Principal:         decimal.NewFromInt(1000),
				AnnualRatePercent: decimal.NewFromFloat(6.0),
				TermMonths:        12,
				StartMonth:        "2026-01",
			},
			plan: PaymentPlan{
				OneTimeExtra: &OneTimeExtra{MonthIndex: 13, Amount: decimal.NewFromInt(10)},
			},
			errTarget: new(*InvalidPlanError),
		},
		{
			name: "Absurd term",
			terms: LoanTerms{
				Principal:         decimal.NewFromInt(1000),
				AnnualRatePercent: decimal.NewFromFloat(6.0),
				TermMonths:        2000,
				StartMonth:        "2026-01",
			},
			plan:      BaselinePlan(),
			errTarget: new(*InvariantViolationError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, err := engine.ComputeSchedule(tt.terms, tt.plan)
			if err == nil {
				t.Fatal("ComputeSchedule() expected error, got nil")
			}
			if schedule != nil {
				t.Errorf("ComputeSchedule() returned partial schedule alongside error")
			}
			switch target := tt.errTarget.(type) {
			case **InvalidLoanError:
				if !errors.As(err, target) {
					t.Errorf("error type = %T, want *InvalidLoanError", err)
				}
			case **InvalidPlanError:
				if !errors.As(err, target) {
					t.Errorf("error type = %T, want *InvalidPlanError", err)
				}
			case **InvariantViolationError:
				if !errors.As(err, target) {
					t.Errorf("error type = %T, want *InvariantViolationError", err)
				}
			}
		})
	}
}

func TestComputeScheduleIsReferentiallyTransparent(t *testing.T) {
	engine := NewAmortizationEngine(nil)
	terms := LoanTerms{
		Name:              "idempotent",
		Principal:         decimal.NewFromInt(250000),
		AnnualRatePercent: decimal.NewFromFloat(5.5),
		TermMonths:        240,
		StartMonth:        "2026-03",
	}
	plan := PaymentPlan{ExtraMonthly: decimal.NewFromInt(150)}

	first, err := engine.ComputeSchedule(terms, plan)
	if err != nil {
		t.Fatalf("first ComputeSchedule() error = %v", err)
	}
	second, err := engine.ComputeSchedule(terms, plan)
	if err != nil {
		t.Fatalf("second ComputeSchedule() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("schedule lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].EndingBalance.Equal(second[i].EndingBalance) ||
			!first[i].ScheduledInterest.Equal(second[i].ScheduledInterest) {
			t.Errorf("month %d differs between identical invocations", first[i].MonthIndex)
		}
	}
}

func TestComputeScheduleEscrowAddOns(t *testing.T) {
	engine := NewAmortizationEngine(nil)
	terms := LoanTerms{
		Name:              "escrow",
		Principal:         decimal.NewFromInt(100000),
		AnnualRatePercent: decimal.NewFromFloat(6.0),
		TermMonths:        120,
		StartMonth:        "2026-01",
		MonthlyTax:        decimal.NewFromInt(400),
		MonthlyInsurance:  decimal.NewFromInt(120),
		MonthlyHOA:        decimal.NewFromInt(80),
	}

	schedule, err := engine.ComputeSchedule(terms, BaselinePlan())
	if err != nil {
		t.Fatalf("ComputeSchedule() error = %v", err)
	}

	for _, entry := range schedule {
		if entry.EscrowAddOns.StringFixed(2) != "600.00" {
			t.Errorf("month %d escrowAddOns = %s, want 600.00",
				entry.MonthIndex, entry.EscrowAddOns.StringFixed(2))
		}
		expectedTotal := entry.ScheduledPrincipal.
			Add(entry.ScheduledInterest).
			Add(entry.ExtraPrincipal).
			Add(entry.EscrowAddOns)
		if !entry.TotalPayment.Equal(expectedTotal) {
			t.Errorf("month %d totalPayment = %s, want %s",
				entry.MonthIndex, entry.TotalPayment.StringFixed(2), expectedTotal.StringFixed(2))
		}
	}
}
