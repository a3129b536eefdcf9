// Package output provides utilities for formatting and displaying schedule results.
package output

import (
	"fmt"
	"strings"

	"github.com/iwvelando/mortgage-payoff/pkg/loans"
	"github.com/iwvelando/mortgage-payoff/pkg/money"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Result bundles everything the formatters need for one computed scenario.
type Result struct {
	Name     string
	Schedule []loans.MonthlyEntry
	Summary  loans.ScheduleSummary
	Savings  *loans.SavingsSummary
}

// csvHeader is the fixed export column order; consumers round-trip on it.
const csvHeader = `"month","date","beginning balance","scheduled principal","scheduled interest","extra principal","ending balance","pmi active","escrow add-ons","total payment"`

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(results []Result) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		fmt.Printf("--- Results for scenario %s ---\n", result.Name)
		fmt.Printf("Month | Date    | Beginning    | Principal   | Interest    | Extra       | Ending       | PMI | Escrow     | Total\n")
		fmt.Printf("_____ | ____    | _________    | _________   | ________    | _____       | ______       | ___ | ______     | _____\n")
		for _, entry := range result.Schedule {
			pmi := " "
			if entry.PMIActive {
				pmi = "*"
			}
			_, _ = p.Printf("%5d | %s | %12s | %11s | %11s | %11s | %12s | %3s | %10s | %s\n",
				entry.MonthIndex, entry.Date,
				money.Currency(entry.BeginningBalance),
				money.Currency(entry.ScheduledPrincipal),
				money.Currency(entry.ScheduledInterest),
				money.Currency(entry.ExtraPrincipal),
				money.Currency(entry.EndingBalance),
				pmi,
				money.Currency(entry.EscrowAddOns),
				money.Currency(entry.TotalPayment),
			)
		}
		printSummary(result)
		if i < len(results)-1 {
			fmt.Printf("\n")
		}
	}
}

func printSummary(result Result) {
	fmt.Printf("Payoff: %s after %d payments, %s total interest\n",
		result.Summary.PayoffDate, result.Summary.Months, money.Currency(result.Summary.TotalInterest))
	if result.Summary.PMIDropMonthIndex > 0 {
		fmt.Printf("PMI drops off at payment %d (%s); housing %s with PMI, %s after\n",
			result.Summary.PMIDropMonthIndex, result.Summary.PMIDropDate,
			money.Currency(result.Summary.MonthlyHousingWithPMI),
			money.Currency(result.Summary.MonthlyHousingWithoutPMI))
	}
	if result.Savings != nil {
		fmt.Printf("Versus baseline: %d months shaved, %s interest saved\n",
			result.Savings.MonthsShaved, money.Currency(result.Savings.InterestSaved))
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(results []Result) {
	fmt.Print(CsvString(results))
}

// CsvString renders the schedules as CSV. Each scenario produces one table
// with the fixed column order; multiple scenarios are separated by a blank
// line and a scenario title row.
func CsvString(results []Result) string {
	var builder strings.Builder
	for i, result := range results {
		if i > 0 {
			builder.WriteString("\n")
		}
		if len(results) > 1 {
			fmt.Fprintf(&builder, "\"scenario\",%q\n", result.Name)
		}
		builder.WriteString(csvHeader)
		builder.WriteString("\n")
		for _, entry := range result.Schedule {
			fmt.Fprintf(&builder, `"%d","%s","%s","%s","%s","%s","%s","%t","%s","%s"`,
				entry.MonthIndex,
				entry.Date,
				money.String(entry.BeginningBalance),
				money.String(entry.ScheduledPrincipal),
				money.String(entry.ScheduledInterest),
				money.String(entry.ExtraPrincipal),
				money.String(entry.EndingBalance),
				entry.PMIActive,
				money.String(entry.EscrowAddOns),
				money.String(entry.TotalPayment),
			)
			builder.WriteString("\n")
		}
	}
	return builder.String()
}
