package interfaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"amc-reconcile/internal/audit"
	"amc-reconcile/internal/auth"
	"amc-reconcile/internal/observability/metrics"
	"amc-reconcile/internal/reconciliation/application"
	reconciliation "amc-reconcile/internal/reconciliation/domain"
)

const (
	basePath     = "/api/v1/reconciliation"
	exportPrefix = basePath + "/export."
	historyPath  = basePath + "/exports"

	exportAction = "reconciliation.export"
)

// ReconciliationHandler serves reconciliation snapshots and exports.
type ReconciliationHandler struct {
	service          *application.ReconciliationService
	portfolioChecker auth.PortfolioTenantChecker
	auditLogger      audit.Logger
	history          audit.Reader
}

// NewReconciliationHandler constructs a handler.
func NewReconciliationHandler(service *application.ReconciliationService, portfolioChecker auth.PortfolioTenantChecker, auditLogger audit.Logger) (*ReconciliationHandler, error) {
	if service == nil {
		return nil, errors.New("reconciliation handler: nil service")
	}
	return &ReconciliationHandler{service: service, portfolioChecker: portfolioChecker, auditLogger: auditLogger}, nil
}

// WithHistory enables the export history route backed by reader.
func (h *ReconciliationHandler) WithHistory(reader audit.Reader) *ReconciliationHandler {
	h.history = reader
	return h
}

// ServeHTTP handles routes under /api/v1/reconciliation.
func (h *ReconciliationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	path := r.URL.Path
	if path == basePath {
		h.handleSnapshot(w, r)
		return
	}
	if path == historyPath && h.history != nil {
		h.handleHistory(w, r)
		return
	}
	if strings.HasPrefix(path, exportPrefix) {
		format, err := ParseFormat(strings.TrimPrefix(path, exportPrefix))
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.handleExport(w, r, format)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *ReconciliationHandler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	report, ok := h.run(w, r)
	if !ok {
		return
	}
	data, err := BuildReportJSON(report, ParseColumns(r.URL.Query().Get("columns")))
	if err != nil {
		http.Error(w, "snapshot error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Report-ID", report.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *ReconciliationHandler) handleExport(w http.ResponseWriter, r *http.Request, format Format) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport(string(format), result, time.Since(start))
	}()

	report, ok := h.run(w, r)
	if !ok {
		result = metrics.ResultError
		return
	}
	columns := ParseColumns(r.URL.Query().Get("columns"))
	data, err := Render(report, format, columns)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, fmt.Sprintf("export %s error", format), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(string(format))))
	w.Header().Set("X-Report-ID", report.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, report, exportAction, map[string]any{
		"format":  string(format),
		"columns": columns,
		"balance": report.Summary.Balance.String(),
	})
}

func (h *ReconciliationHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	portfolioID := strings.TrimSpace(r.URL.Query().Get("portfolio_id"))
	if portfolioID == "" {
		http.Error(w, "portfolio_id required", http.StatusBadRequest)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if tenantID == "" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if err := ensurePortfolioTenant(r, h.portfolioChecker, tenantID, portfolioID); err != nil {
		respondTenantError(w, err)
		return
	}
	if !auth.PortfolioAllowed(r.Context(), portfolioID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	entries, err := h.history.ListByPortfolio(r.Context(), tenantID, portfolioID, exportAction, limit)
	if err != nil {
		http.Error(w, "history error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(entries)
}

func (h *ReconciliationHandler) run(w http.ResponseWriter, r *http.Request) (*application.Report, bool) {
	portfolioID := strings.TrimSpace(r.URL.Query().Get("portfolio_id"))
	if portfolioID == "" {
		http.Error(w, "portfolio_id required", http.StatusBadRequest)
		return nil, false
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if tenantID != "" {
		if err := ensurePortfolioTenant(r, h.portfolioChecker, tenantID, portfolioID); err != nil {
			respondTenantError(w, err)
			return nil, false
		}
	}
	report, err := h.service.Run(r.Context(), portfolioID)
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}
	return report, true
}

func (h *ReconciliationHandler) logAudit(r *http.Request, report *application.Report, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	tenantID := auth.TenantIDFromContext(r.Context())
	if tenantID == "" {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		TenantID:     tenantID,
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "reconciliation_report",
		ResourceID:   report.ID,
		PortfolioID:  report.PortfolioID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func ensurePortfolioTenant(r *http.Request, checker auth.PortfolioTenantChecker, tenantID, portfolioID string) error {
	if checker == nil || tenantID == "" || portfolioID == "" {
		return nil
	}
	return checker.EnsurePortfolioTenant(r.Context(), tenantID, portfolioID)
}

func respondTenantError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, auth.ErrTenantMismatch) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if errors.Is(err, auth.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, "tenant check failed", http.StatusInternalServerError)
}

func respondServiceError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, auth.ErrForbidden), errors.Is(err, auth.ErrTenantMismatch):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, reconciliation.ErrEmptyPortfolioID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, reconciliation.ErrInvalidConfiguration):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "reconciliation failed", http.StatusInternalServerError)
	}
}
