// Package server exposes the amortization engine as a small JSON API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/iwvelando/mortgage-payoff/internal/metrics"
	"github.com/iwvelando/mortgage-payoff/pkg/loans"
	"github.com/iwvelando/mortgage-payoff/pkg/money"
	"github.com/iwvelando/mortgage-payoff/pkg/output"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type handler struct {
	logger         *zap.Logger
	maxRequestSize int64
	version        string
}

// NewHandler constructs the HTTP handler that serves the schedule API.
func NewHandler(logger *zap.Logger, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxRequestSize: cfg.RequestSizeBytes(), version: trimmedVersion}

	router := mux.NewRouter()
	router.HandleFunc("/api/schedule", h.handleSchedule).Methods(http.MethodPost)
	router.HandleFunc("/api/compare", h.handleCompare).Methods(http.MethodPost)
	router.HandleFunc("/api/version", h.handleVersion).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})

	return corsMiddleware.Handler(router)
}

// loanPayload is the wire form of LoanTerms; amounts are plain JSON numbers.
type loanPayload struct {
	Name              string  `json:"name,omitempty"`
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annualRatePercent"`
	TermMonths        int     `json:"termMonths"`
	StartMonth        string  `json:"startMonth"`
	MonthlyPayment    float64 `json:"monthlyPayment,omitempty"`
	HomeValue         float64 `json:"homeValue,omitempty"`
	MonthlyTax        float64 `json:"monthlyTax,omitempty"`
	MonthlyInsurance  float64 `json:"monthlyInsurance,omitempty"`
	MonthlyHOA        float64 `json:"monthlyHOA,omitempty"`
	MonthlyPMI        float64 `json:"monthlyPMI,omitempty"`
}

func (p loanPayload) toTerms() loans.LoanTerms {
	return loans.LoanTerms{
		Name:              p.Name,
		Principal:         money.FromFloat(p.Principal),
		AnnualRatePercent: money.FromFloat(p.AnnualRatePercent),
		TermMonths:        p.TermMonths,
		StartMonth:        p.StartMonth,
		MonthlyPayment:    money.FromFloat(p.MonthlyPayment),
		HomeValue:         money.FromFloat(p.HomeValue),
		MonthlyTax:        money.FromFloat(p.MonthlyTax),
		MonthlyInsurance:  money.FromFloat(p.MonthlyInsurance),
		MonthlyHOA:        money.FromFloat(p.MonthlyHOA),
		MonthlyPMI:        money.FromFloat(p.MonthlyPMI),
	}
}

type oneTimeExtraPayload struct {
	MonthIndex int     `json:"monthIndex"`
	Amount     float64 `json:"amount"`
}

type planPayload struct {
	ExtraMonthly       float64              `json:"extraMonthly,omitempty"`
	EffectiveFromMonth int                  `json:"effectiveFromMonth,omitempty"`
	OneTimeExtra       *oneTimeExtraPayload `json:"oneTimeExtra,omitempty"`
}

func (p *planPayload) toPlan() loans.PaymentPlan {
	if p == nil {
		return loans.BaselinePlan()
	}
	plan := loans.PaymentPlan{
		ExtraMonthly:       money.FromFloat(p.ExtraMonthly),
		EffectiveFromMonth: p.EffectiveFromMonth,
	}
	if p.OneTimeExtra != nil {
		plan.OneTimeExtra = &loans.OneTimeExtra{
			MonthIndex: p.OneTimeExtra.MonthIndex,
			Amount:     money.FromFloat(p.OneTimeExtra.Amount),
		}
	}
	return plan
}

type pmiPolicyPayload struct {
	CutoffRatio float64 `json:"cutoffRatio,omitempty"`
	LTVBasis    string  `json:"ltvBasis,omitempty"`
}

func (p *pmiPolicyPayload) toPolicy() loans.PMIPolicy {
	policy := loans.DefaultPMIPolicy()
	if p == nil {
		return policy
	}
	if p.CutoffRatio > 0 {
		policy.CutoffRatio = money.FromFloat(p.CutoffRatio)
	}
	if p.LTVBasis != "" {
		policy.LTVBasis = p.LTVBasis
	}
	return policy
}

type scheduleRequest struct {
	Loan      loanPayload       `json:"loan"`
	Plan      *planPayload      `json:"plan,omitempty"`
	PMIPolicy *pmiPolicyPayload `json:"pmiPolicy,omitempty"`
}

type compareRequest struct {
	Loan         loanPayload       `json:"loan"`
	BaselinePlan *planPayload      `json:"baselinePlan,omitempty"`
	ScenarioPlan planPayload       `json:"scenarioPlan"`
	PMIPolicy    *pmiPolicyPayload `json:"pmiPolicy,omitempty"`
}

type entryRow struct {
	Month              int     `json:"month"`
	Date               string  `json:"date"`
	BeginningBalance   float64 `json:"beginningBalance"`
	ScheduledPrincipal float64 `json:"scheduledPrincipal"`
	ScheduledInterest  float64 `json:"scheduledInterest"`
	ExtraPrincipal     float64 `json:"extraPrincipal"`
	EndingBalance      float64 `json:"endingBalance"`
	PMIActive          bool    `json:"pmiActive"`
	EscrowAddOns       float64 `json:"escrowAddOns"`
	TotalPayment       float64 `json:"totalPayment"`
	CumulativeInterest float64 `json:"cumulativeInterest"`
}

type summaryPayload struct {
	Months                   int     `json:"months"`
	PayoffDate               string  `json:"payoffDate"`
	TotalInterest            float64 `json:"totalInterest"`
	TotalPrincipal           float64 `json:"totalPrincipal"`
	TotalExtra               float64 `json:"totalExtra"`
	TotalPaid                float64 `json:"totalPaid"`
	PMIDropMonthIndex        int     `json:"pmiDropMonthIndex,omitempty"`
	PMIDropDate              string  `json:"pmiDropDate,omitempty"`
	MonthlyHousingWithPMI    float64 `json:"monthlyHousingWithPMI"`
	MonthlyHousingWithoutPMI float64 `json:"monthlyHousingWithoutPMI"`
}

type savingsPayload struct {
	BaselineMonths     int     `json:"baselineMonths"`
	ScenarioMonths     int     `json:"scenarioMonths"`
	BaselineInterest   float64 `json:"baselineInterest"`
	ScenarioInterest   float64 `json:"scenarioInterest"`
	BaselinePayoffDate string  `json:"baselinePayoffDate"`
	ScenarioPayoffDate string  `json:"scenarioPayoffDate"`
	MonthsShaved       int     `json:"monthsShaved"`
	InterestSaved      float64 `json:"interestSaved"`
}

type scheduleResponse struct {
	Warnings []string       `json:"warnings,omitempty"`
	Schedule []entryRow     `json:"schedule"`
	Summary  summaryPayload `json:"summary"`
	CSV      string         `json:"csv"`
	Duration string         `json:"duration"`
}

type compareResponse struct {
	Warnings []string       `json:"warnings,omitempty"`
	Savings  savingsPayload `json:"savings"`
	Baseline summaryPayload `json:"baseline"`
	Scenario summaryPayload `json:"scenario"`
	Duration string         `json:"duration"`
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	op := "server.handleSchedule"

	var req scheduleRequest
	if !h.decodeRequest(w, r, &req, op) {
		return
	}

	terms := req.Loan.toTerms()
	engine := loans.NewAmortizationEngineWithPolicy(h.logger, req.PMIPolicy.toPolicy())

	schedule, err := engine.ComputeSchedule(terms, req.Plan.toPlan())
	if err != nil {
		h.respondComputeError(w, err, op, "/api/schedule")
		return
	}
	metrics.ScheduleComputations.WithLabelValues("/api/schedule", "ok").Inc()
	metrics.ComputeDuration.Observe(time.Since(start).Seconds())

	summary := loans.Summarize(terms, schedule)
	result := output.Result{Name: terms.Name, Schedule: schedule, Summary: summary}

	response := scheduleResponse{
		Warnings: terms.Warnings(),
		Schedule: buildRows(schedule),
		Summary:  buildSummary(summary),
		CSV:      output.CsvString([]output.Result{result}),
		Duration: time.Since(start).String(),
	}

	h.logger.Info("schedule computed",
		zap.String("op", op),
		zap.Int("months", summary.Months),
		zap.Duration("duration", time.Since(start)),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	op := "server.handleCompare"

	var req compareRequest
	if !h.decodeRequest(w, r, &req, op) {
		return
	}

	terms := req.Loan.toTerms()
	engine := loans.NewAmortizationEngineWithPolicy(h.logger, req.PMIPolicy.toPolicy())

	baselinePlan := req.BaselinePlan.toPlan()
	scenarioPlan := req.ScenarioPlan
	savings, err := engine.Compare(terms, baselinePlan, scenarioPlan.toPlan())
	if err != nil {
		h.respondComputeError(w, err, op, "/api/compare")
		return
	}

	baselineSchedule, err := engine.ComputeSchedule(terms, baselinePlan)
	if err != nil {
		h.respondComputeError(w, err, op, "/api/compare")
		return
	}
	scenarioSchedule, err := engine.ComputeSchedule(terms, scenarioPlan.toPlan())
	if err != nil {
		h.respondComputeError(w, err, op, "/api/compare")
		return
	}
	metrics.ScheduleComputations.WithLabelValues("/api/compare", "ok").Inc()
	metrics.ComputeDuration.Observe(time.Since(start).Seconds())

	response := compareResponse{
		Warnings: terms.Warnings(),
		Savings:  buildSavings(savings),
		Baseline: buildSummary(loans.Summarize(terms, baselineSchedule)),
		Scenario: buildSummary(loans.Summarize(terms, scenarioSchedule)),
		Duration: time.Since(start).String(),
	}

	h.logger.Info("comparison computed",
		zap.String("op", op),
		zap.Int("monthsShaved", savings.MonthsShaved),
		zap.Duration("duration", time.Since(start)),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if h.maxRequestSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), op)
			return false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondComputeError(w http.ResponseWriter, err error, op, endpoint string) {
	var invalidLoan *loans.InvalidLoanError
	var invalidPlan *loans.InvalidPlanError
	var invariant *loans.InvariantViolationError

	switch {
	case errors.As(err, &invalidLoan):
		metrics.ComputationErrors.WithLabelValues(endpoint, "invalid_loan").Inc()
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
	case errors.As(err, &invalidPlan):
		metrics.ComputationErrors.WithLabelValues(endpoint, "invalid_plan").Inc()
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
	case errors.As(err, &invariant):
		metrics.ComputationErrors.WithLabelValues(endpoint, "invariant_violation").Inc()
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
	default:
		metrics.ComputationErrors.WithLabelValues(endpoint, "other").Inc()
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
	}
	metrics.ScheduleComputations.WithLabelValues(endpoint, "error").Inc()
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("schedule request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func buildRows(schedule []loans.MonthlyEntry) []entryRow {
	rows := make([]entryRow, 0, len(schedule))
	for _, entry := range schedule {
		rows = append(rows, entryRow{
			Month:              entry.MonthIndex,
			Date:               entry.Date,
			BeginningBalance:   entry.BeginningBalance.InexactFloat64(),
			ScheduledPrincipal: entry.ScheduledPrincipal.InexactFloat64(),
			ScheduledInterest:  entry.ScheduledInterest.InexactFloat64(),
			ExtraPrincipal:     entry.ExtraPrincipal.InexactFloat64(),
			EndingBalance:      entry.EndingBalance.InexactFloat64(),
			PMIActive:          entry.PMIActive,
			EscrowAddOns:       entry.EscrowAddOns.InexactFloat64(),
			TotalPayment:       entry.TotalPayment.InexactFloat64(),
			CumulativeInterest: entry.CumulativeInterest.InexactFloat64(),
		})
	}
	return rows
}

func buildSummary(summary loans.ScheduleSummary) summaryPayload {
	return summaryPayload{
		Months:                   summary.Months,
		PayoffDate:               summary.PayoffDate,
		TotalInterest:            summary.TotalInterest.InexactFloat64(),
		TotalPrincipal:           summary.TotalPrincipal.InexactFloat64(),
		TotalExtra:               summary.TotalExtra.InexactFloat64(),
		TotalPaid:                summary.TotalPaid.InexactFloat64(),
		PMIDropMonthIndex:        summary.PMIDropMonthIndex,
		PMIDropDate:              summary.PMIDropDate,
		MonthlyHousingWithPMI:    summary.MonthlyHousingWithPMI.InexactFloat64(),
		MonthlyHousingWithoutPMI: summary.MonthlyHousingWithoutPMI.InexactFloat64(),
	}
}

func buildSavings(savings loans.SavingsSummary) savingsPayload {
	return savingsPayload{
		BaselineMonths:     savings.BaselineMonths,
		ScenarioMonths:     savings.ScenarioMonths,
		BaselineInterest:   savings.BaselineInterest.InexactFloat64(),
		ScenarioInterest:   savings.ScenarioInterest.InexactFloat64(),
		BaselinePayoffDate: savings.BaselinePayoffDate,
		ScenarioPayoffDate: savings.ScenarioPayoffDate,
		MonthsShaved:       savings.MonthsShaved,
		InterestSaved:      savings.InterestSaved.InexactFloat64(),
	}
}
