package loans

import (
	"github.com/shopspring/decimal"
)

// ScheduleSummary reduces a schedule to the headline figures shown to the
// caller: payoff timing, interest totals, and the PMI drop-off point with the
// monthly housing cost before and after it.
type ScheduleSummary struct {
	Months         int
	PayoffDate     string
	TotalInterest  decimal.Decimal
	TotalPrincipal decimal.Decimal
	TotalExtra     decimal.Decimal
	TotalPaid      decimal.Decimal

	// PMIDropMonthIndex is the first period PMI is no longer charged, or 0
	// when PMI never applies or is never removed.
	PMIDropMonthIndex int
	PMIDropDate       string

	MonthlyHousingWithPMI    decimal.Decimal
	MonthlyHousingWithoutPMI decimal.Decimal
}

// Summarize derives the schedule summary for a loan and its computed
// schedule.
func Summarize(terms LoanTerms, schedule []MonthlyEntry) ScheduleSummary {
	summary := ScheduleSummary{
		Months:         len(schedule),
		TotalInterest:  decimal.Zero,
		TotalPrincipal: decimal.Zero,
		TotalExtra:     decimal.Zero,
		TotalPaid:      decimal.Zero,
	}
	if len(schedule) == 0 {
		return summary
	}

	summary.PayoffDate = schedule[len(schedule)-1].Date
	for _, entry := range schedule {
		summary.TotalInterest = summary.TotalInterest.Add(entry.ScheduledInterest)
		summary.TotalPrincipal = summary.TotalPrincipal.Add(entry.ScheduledPrincipal)
		summary.TotalExtra = summary.TotalExtra.Add(entry.ExtraPrincipal)
		summary.TotalPaid = summary.TotalPaid.Add(entry.TotalPayment)
	}

	if terms.MonthlyPMI.IsPositive() {
		for _, entry := range schedule {
			if !entry.PMIActive {
				summary.PMIDropMonthIndex = entry.MonthIndex
				summary.PMIDropDate = entry.Date
				break
			}
		}
	}

	payment := terms.MonthlyPayment
	if !terms.manualPaymentMode() {
		derived, err := CalculateMonthlyPayment(terms.Principal, terms.AnnualRatePercent, terms.TermMonths)
		if err != nil {
			return summary
		}
		payment = derived
	}
	summary.MonthlyHousingWithoutPMI = payment.Add(terms.escrowBase())
	summary.MonthlyHousingWithPMI = summary.MonthlyHousingWithoutPMI.Add(terms.MonthlyPMI)

	return summary
}
