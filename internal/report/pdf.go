// Package report renders an amortization schedule as a printable PDF.
package report

import (
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/iwvelando/mortgage-payoff/pkg/datetime"
	"github.com/iwvelando/mortgage-payoff/pkg/loans"
	"github.com/iwvelando/mortgage-payoff/pkg/money"
)

const (
	pageMargin   = 15.0
	contentWidth = 180.0
	rowHeight    = 5.0
	// rows past this y position trigger a page break
	pageBreakY = 270.0
)

// SchedulePDF renders one scenario's schedule and summary.
type SchedulePDF struct {
	pdf     *fpdf.Fpdf
	terms   loans.LoanTerms
	summary loans.ScheduleSummary
	savings *loans.SavingsSummary
}

// NewSchedulePDF prepares a report for the given loan. Savings may be nil
// when no baseline comparison was computed.
func NewSchedulePDF(terms loans.LoanTerms, summary loans.ScheduleSummary, savings *loans.SavingsSummary) *SchedulePDF {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	return &SchedulePDF{pdf: pdf, terms: terms, summary: summary, savings: savings}
}

// WriteFile renders the report and writes it to the given path.
func (r *SchedulePDF) WriteFile(schedule []loans.MonthlyEntry, path string) error {
	r.renderTitle()
	r.renderSummary()
	r.renderScheduleTable(schedule)
	if err := r.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF report: %w", err)
	}
	return nil
}

func (r *SchedulePDF) renderTitle() {
	r.pdf.AddPage()
	r.pdf.SetFont("Arial", "B", 20)
	title := "Mortgage Payoff Report"
	if r.terms.Name != "" {
		title = fmt.Sprintf("Mortgage Payoff Report: %s", r.terms.Name)
	}
	r.pdf.CellFormat(contentWidth, 12, title, "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "I", 10)
	r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", time.Now().Format("2 January 2006")), "", 1, "C", false, 0, "")
	r.pdf.Ln(4)
}

func (r *SchedulePDF) renderSummary() {
	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.CellFormat(contentWidth, 8, "Summary", "1", 1, "C", true, 0, "")

	r.pdf.SetFont("Arial", "", 10)
	lines := []string{
		fmt.Sprintf("Principal: %s at %s%% over %d months",
			money.Currency(r.terms.Principal), r.terms.AnnualRatePercent.String(), r.terms.TermMonths),
		fmt.Sprintf("Payoff: %s after %d payments", monthLabel(r.summary.PayoffDate), r.summary.Months),
		fmt.Sprintf("Total interest: %s; total paid: %s",
			money.Currency(r.summary.TotalInterest), money.Currency(r.summary.TotalPaid)),
	}
	if r.summary.PMIDropMonthIndex > 0 {
		lines = append(lines, fmt.Sprintf("PMI drops off at payment %d (%s): %s/month with PMI, %s/month after",
			r.summary.PMIDropMonthIndex, monthLabel(r.summary.PMIDropDate),
			money.Currency(r.summary.MonthlyHousingWithPMI),
			money.Currency(r.summary.MonthlyHousingWithoutPMI)))
	}
	if r.savings != nil {
		lines = append(lines, fmt.Sprintf("Versus baseline: %d months shaved, %s interest saved",
			r.savings.MonthsShaved, money.Currency(r.savings.InterestSaved)))
	}

	for i, line := range lines {
		border := "LR"
		if i == len(lines)-1 {
			border = "LRB"
		}
		r.pdf.CellFormat(contentWidth, 6, line, border, 1, "L", true, 0, "")
	}
	r.pdf.Ln(6)
}

// monthLabel falls back to the raw YYYY-MM form when the date cannot be
// parsed.
func monthLabel(date string) string {
	label, err := datetime.MonthLabel(date)
	if err != nil {
		return date
	}
	return label
}

var tableColumns = []struct {
	width  float64
	header string
}{
	{12, "#"},
	{18, "Date"},
	{26, "Beginning"},
	{22, "Principal"},
	{20, "Interest"},
	{18, "Extra"},
	{26, "Ending"},
	{10, "PMI"},
	{28, "Total"},
}

func (r *SchedulePDF) renderScheduleTable(schedule []loans.MonthlyEntry) {
	r.renderTableHeader()

	r.pdf.SetFont("Arial", "", 8)
	for _, entry := range schedule {
		if r.pdf.GetY() > pageBreakY {
			r.pdf.AddPage()
			r.renderTableHeader()
			r.pdf.SetFont("Arial", "", 8)
		}
		pmi := ""
		if entry.PMIActive {
			pmi = "Y"
		}
		cells := []string{
			fmt.Sprintf("%d", entry.MonthIndex),
			entry.Date,
			money.NumericCurrency(entry.BeginningBalance),
			money.NumericCurrency(entry.ScheduledPrincipal),
			money.NumericCurrency(entry.ScheduledInterest),
			money.NumericCurrency(entry.ExtraPrincipal),
			money.NumericCurrency(entry.EndingBalance),
			pmi,
			money.NumericCurrency(entry.TotalPayment),
		}
		for i, cell := range cells {
			align := "R"
			if i == 1 || i == 7 {
				align = "C"
			}
			r.pdf.CellFormat(tableColumns[i].width, rowHeight, cell, "1", 0, align, false, 0, "")
		}
		r.pdf.Ln(rowHeight)
	}
}

func (r *SchedulePDF) renderTableHeader() {
	r.pdf.SetFillColor(230, 234, 240)
	r.pdf.SetFont("Arial", "B", 8)
	for _, column := range tableColumns {
		r.pdf.CellFormat(column.width, rowHeight+1, column.header, "1", 0, "C", true, 0, "")
	}
	r.pdf.Ln(rowHeight + 1)
}
