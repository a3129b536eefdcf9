package loans

import (
	"testing"

	"github.com/shopspring/decimal"
)

func pmiTestTerms() LoanTerms {
	return LoanTerms{
		Name:              "pmi loan",
		Principal:         decimal.NewFromInt(180000),
		AnnualRatePercent: decimal.NewFromFloat(5.0),
		TermMonths:        360,
		StartMonth:        "2026-01",
		HomeValue:         decimal.NewFromInt(200000),
		MonthlyPMI:        decimal.NewFromInt(95),
	}
}

func TestPMIDropPostPayment(t *testing.T) {
	engine := NewAmortizationEngine(nil)
	terms := pmiTestTerms()
	// A large recurring extra crosses the 80% threshold within a few years.
	plan := PaymentPlan{ExtraMonthly: decimal.NewFromInt(1000)}

	schedule, err := engine.ComputeSchedule(terms, plan)
	if err != nil {
		t.Fatalf("ComputeSchedule() error = %v", err)
	}

	threshold := decimal.NewFromInt(144000) // 200000 * 0.80
	crossing := -1
	for i, entry := range schedule {
		if entry.EndingBalance.LessThanOrEqual(threshold) {
			crossing = i
			break
		}
	}
	if crossing < 0 {
		t.Fatal("schedule never crossed the PMI threshold")
	}

	// PMI is charged through the crossing period and removed afterwards.
	for i, entry := range schedule {
		wantActive := i <= crossing
		if entry.PMIActive != wantActive {
			t.Errorf("month %d PMIActive = %v, want %v", entry.MonthIndex, entry.PMIActive, wantActive)
		}
	}

	// Escrow reflects the PMI charge only while it is active.
	if !schedule[crossing].EscrowAddOns.Equal(terms.MonthlyPMI) {
		t.Errorf("crossing month escrowAddOns = %s, want %s",
			schedule[crossing].EscrowAddOns.StringFixed(2), terms.MonthlyPMI.StringFixed(2))
	}
	if !schedule[crossing+1].EscrowAddOns.IsZero() {
		t.Errorf("post-crossing escrowAddOns = %s, want 0",
			schedule[crossing+1].EscrowAddOns.StringFixed(2))
	}
}

func TestPMIDropPrePayment(t *testing.T) {
	policy := PMIPolicy{
		CutoffRatio: decimal.NewFromFloat(0.80),
		LTVBasis:    "prePayment",
	}
	engine := NewAmortizationEngineWithPolicy(nil, policy)
	terms := pmiTestTerms()
	plan := PaymentPlan{ExtraMonthly: decimal.NewFromInt(1000)}

	schedule, err := engine.ComputeSchedule(terms, plan)
	if err != nil {
		t.Fatalf("ComputeSchedule() error = %v", err)
	}

	// The crossing period itself is already free of PMI under prePayment.
	threshold := decimal.NewFromInt(144000)
	for _, entry := range schedule {
		wantActive := entry.EndingBalance.GreaterThan(threshold)
		if entry.PMIActive != wantActive {
			t.Errorf("month %d PMIActive = %v, want %v (ending balance %s)",
				entry.MonthIndex, entry.PMIActive, wantActive, entry.EndingBalance.StringFixed(2))
		}
	}
}

func TestPMIDropOnePeriodLagBetweenBases(t *testing.T) {
	// The pre-payment basis must drop PMI exactly one period before the
	// post-payment basis does.
	terms := pmiTestTerms()
	plan := PaymentPlan{ExtraMonthly: decimal.NewFromInt(1000)}

	post, err := NewAmortizationEngine(nil).ComputeSchedule(terms, plan)
	if err != nil {
		t.Fatalf("post-payment ComputeSchedule() error = %v", err)
	}
	pre, err := NewAmortizationEngineWithPolicy(nil, PMIPolicy{
		CutoffRatio: decimal.NewFromFloat(0.80),
		LTVBasis:    "prePayment",
	}).ComputeSchedule(terms, plan)
	if err != nil {
		t.Fatalf("pre-payment ComputeSchedule() error = %v", err)
	}

	lastActive := func(schedule []MonthlyEntry) int {
		last := 0
		for _, entry := range schedule {
			if entry.PMIActive {
				last = entry.MonthIndex
			}
		}
		return last
	}

	if lastActive(post) != lastActive(pre)+1 {
		t.Errorf("post-payment last PMI month = %d, pre-payment = %d, want a one-period lag",
			lastActive(post), lastActive(pre))
	}
}

func TestPMINeverDropsWithoutHomeValue(t *testing.T) {
	engine := NewAmortizationEngine(nil)
	terms := pmiTestTerms()
	terms.HomeValue = decimal.Zero

	schedule, err := engine.ComputeSchedule(terms, PaymentPlan{ExtraMonthly: decimal.NewFromInt(2000)})
	if err != nil {
		t.Fatalf("ComputeSchedule() error = %v", err)
	}

	for _, entry := range schedule {
		if !entry.PMIActive {
			t.Fatalf("month %d PMIActive = false; PMI must persist when the home value is unknown",
				entry.MonthIndex)
		}
	}
}

func TestPMINeverDropsWhenHomeValueBelowPrincipal(t *testing.T) {
	engine := NewAmortizationEngine(nil)
	terms := pmiTestTerms()
	terms.HomeValue = decimal.NewFromInt(150000)

	schedule, err := engine.ComputeSchedule(terms, PaymentPlan{ExtraMonthly: decimal.NewFromInt(2000)})
	if err != nil {
		t.Fatalf("ComputeSchedule() error = %v", err)
	}

	for _, entry := range schedule {
		if !entry.PMIActive {
			t.Fatalf("month %d PMIActive = false; PMI must persist for an underwater valuation",
				entry.MonthIndex)
		}
	}
}

func TestPMIInactiveWhenNotCharged(t *testing.T) {
	engine := NewAmortizationEngine(nil)
	terms := pmiTestTerms()
	terms.MonthlyPMI = decimal.Zero

	schedule, err := engine.ComputeSchedule(terms, BaselinePlan())
	if err != nil {
		t.Fatalf("ComputeSchedule() error = %v", err)
	}

	for _, entry := range schedule {
		if entry.PMIActive {
			t.Fatalf("month %d PMIActive = true for a loan with no PMI", entry.MonthIndex)
		}
	}
}

func TestPMICustomCutoffRatio(t *testing.T) {
	policy := PMIPolicy{
		CutoffRatio: decimal.NewFromFloat(0.78),
		LTVBasis:    "postPayment",
	}
	engine := NewAmortizationEngineWithPolicy(nil, policy)
	terms := pmiTestTerms()

	schedule, err := engine.ComputeSchedule(terms, PaymentPlan{ExtraMonthly: decimal.NewFromInt(1000)})
	if err != nil {
		t.Fatalf("ComputeSchedule() error = %v", err)
	}

	threshold := decimal.NewFromInt(156000) // 200000 * 0.78
	for i := 1; i < len(schedule); i++ {
		prev := schedule[i-1]
		if prev.EndingBalance.LessThanOrEqual(threshold) && schedule[i].PMIActive {
			t.Errorf("month %d PMIActive = true after the 78%% threshold was crossed",
				schedule[i].MonthIndex)
		}
	}
}

func TestPMIPolicyValidate(t *testing.T) {
	tests := []struct {
		name      string
		policy    PMIPolicy
		expectErr bool
	}{
		{
			name:      "Default policy",
			policy:    DefaultPMIPolicy(),
			expectErr: false,
		},
		{
			name: "Pre-payment basis",
			policy: PMIPolicy{
				CutoffRatio: decimal.NewFromFloat(0.80),
				LTVBasis:    "prePayment",
			},
			expectErr: false,
		},
		{
			name: "Zero cutoff",
			policy: PMIPolicy{
				CutoffRatio: decimal.Zero,
				LTVBasis:    "postPayment",
			},
			expectErr: true,
		},
		{
			name: "Cutoff above one",
			policy: PMIPolicy{
				CutoffRatio: decimal.NewFromFloat(1.25),
				LTVBasis:    "postPayment",
			},
			expectErr: true,
		},
		{
			name: "Unknown basis",
			policy: PMIPolicy{
				CutoffRatio: decimal.NewFromFloat(0.80),
				LTVBasis:    "midPayment",
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.expectErr && err == nil {
				t.Error("Validate() expected error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}
