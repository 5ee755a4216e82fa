package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
	"github.com/jessejferrell/Events-Hub-sub001/internal/services"
)

// ReportService is the slice of the reporting service the admin
// endpoints need
type ReportService interface {
	Transactions(ctx context.Context, user *models.User, req services.TransactionReportRequest) (*services.TransactionReport, error)
	WriteTransactionsCSV(ctx context.Context, user *models.User, req services.TransactionReportRequest, w io.Writer) error
	Summary(ctx context.Context, user *models.User, from, to *time.Time) (*services.SalesSummary, error)
}

// ReportHandler serves the admin transaction reports
type ReportHandler struct {
	reports ReportService
	logger  zerolog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logger,
	}
}

// Transactions returns a filtered, paginated transaction listing with
// status rollups for the same filter set
func (h *ReportHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	req, err := parseReportRequest(r)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	report, err := h.reports.Transactions(r.Context(), currentUser(r), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// ExportTransactions streams the filtered transactions as a CSV
// download
func (h *ReportHandler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	req, err := parseReportRequest(r)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "transactions-"+time.Now().Format("20060102")+".csv"))

	cw := &countingWriter{w: w}
	if err := h.reports.WriteTransactionsCSV(r.Context(), currentUser(r), req, cw); err != nil {
		if cw.n == 0 {
			// Nothing streamed yet, a clean error response is still
			// possible
			w.Header().Del("Content-Disposition")
			respondServiceError(w, err)
			return
		}
		h.logger.Error().Err(err).Msg("csv export aborted mid-stream")
	}
}

// Summary returns per-event sales rollups and overall totals for a
// date window
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	from, err := parseReportTime(r.URL.Query().Get("date_from"))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid date_from")
		return
	}
	to, err := parseReportTime(r.URL.Query().Get("date_to"))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid date_to")
		return
	}

	summary, err := h.reports.Summary(r.Context(), currentUser(r), from, to)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func parseReportRequest(r *http.Request) (services.TransactionReportRequest, error) {
	q := r.URL.Query()

	req := services.TransactionReportRequest{
		EventID:  queryInt(r, "event_id"),
		Status:   models.OrderStatus(q.Get("status")),
		Query:    q.Get("q"),
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "page_size"),
		SortBy:   q.Get("sort_by"),
		SortDesc: q.Get("sort_desc") == "true",
	}

	from, err := parseReportTime(q.Get("date_from"))
	if err != nil {
		return req, fmt.Errorf("invalid date_from")
	}
	to, err := parseReportTime(q.Get("date_to"))
	if err != nil {
		return req, fmt.Errorf("invalid date_to")
	}
	req.DateFrom = from
	req.DateTo = to

	return req, nil
}

// parseReportTime accepts RFC3339 timestamps or bare dates
func parseReportTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
