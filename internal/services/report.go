package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
	"github.com/jessejferrell/Events-Hub-sub001/internal/repositories"
)

// Batch size used when streaming a full export
const exportBatchSize = 500

// ReportOrderRepository is the slice of the order store the reporting
// service needs
type ReportOrderRepository interface {
	GetOrdersWithDetails(ctx context.Context, filters repositories.OrderSearchFilters) ([]*repositories.OrderWithDetails, int, error)
	GetOrderStatistics(ctx context.Context, filters repositories.OrderSearchFilters) (*repositories.OrderStatistics, error)
	GetEventSummaries(ctx context.Context, from, to *time.Time) ([]*repositories.EventSummary, error)
}

// ReportService produces the admin transaction reports: filtered
// listings with aggregate totals, CSV exports and per-event rollups
type ReportService struct {
	orderRepo ReportOrderRepository
	logger    zerolog.Logger
}

// NewReportService creates a new report service
func NewReportService(orderRepo ReportOrderRepository, logger zerolog.Logger) *ReportService {
	return &ReportService{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// TransactionReportRequest filters the admin transaction listing
type TransactionReportRequest struct {
	EventID  int                `json:"event_id"`
	Status   models.OrderStatus `json:"status"`
	Query    string             `json:"query"`
	DateFrom *time.Time         `json:"date_from"`
	DateTo   *time.Time         `json:"date_to"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	SortBy   string             `json:"sort_by"`
	SortDesc bool               `json:"sort_desc"`
}

func (req *TransactionReportRequest) filters() repositories.OrderSearchFilters {
	return repositories.OrderSearchFilters{
		EventID:  req.EventID,
		Status:   req.Status,
		Query:    req.Query,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		SortBy:   req.SortBy,
		SortDesc: req.SortDesc,
	}
}

// TransactionReport is one page of transactions plus totals over the
// whole filtered set
type TransactionReport struct {
	Transactions []*repositories.OrderWithDetails `json:"transactions"`
	Stats        *repositories.OrderStatistics    `json:"stats"`
	Total        int                              `json:"total"`
	Page         int                              `json:"page"`
	PageSize     int                              `json:"page_size"`
	TotalPages   int                              `json:"total_pages"`
}

// SalesSummary is the admin overview: one rollup row per event plus
// overall totals
type SalesSummary struct {
	Events  []*repositories.EventSummary  `json:"events"`
	Overall *repositories.OrderStatistics `json:"overall"`
}

// Transactions returns a page of orders with buyer and event details,
// along with aggregate totals over everything the filters match
func (s *ReportService) Transactions(ctx context.Context, user *models.User, req TransactionReportRequest) (*TransactionReport, error) {
	if err := s.authorize(user); err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(req.Page, req.PageSize)

	filters := req.filters()
	filters.Limit = pageSize
	filters.Offset = (page - 1) * pageSize

	transactions, total, err := s.orderRepo.GetOrdersWithDetails(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	stats, err := s.orderRepo.GetOrderStatistics(ctx, req.filters())
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction totals: %w", err)
	}

	return &TransactionReport{
		Transactions: transactions,
		Stats:        stats,
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   totalPages(total, pageSize),
	}, nil
}

// WriteTransactionsCSV streams every order the filters match to w as
// CSV, fetched in batches so large exports do not load all rows at once
func (s *ReportService) WriteTransactionsCSV(ctx context.Context, user *models.User, req TransactionReportRequest, w io.Writer) error {
	if err := s.authorize(user); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"order_number", "created_at", "status", "event", "buyer_name", "buyer_email", "items", "total_usd"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	filters := req.filters()
	filters.Limit = exportBatchSize

	written := 0
	for offset := 0; ; offset += exportBatchSize {
		filters.Offset = offset

		batch, _, err := s.orderRepo.GetOrdersWithDetails(ctx, filters)
		if err != nil {
			return fmt.Errorf("failed to export transactions: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		for _, tx := range batch {
			record := []string{
				tx.OrderNumber,
				tx.CreatedAt.Format(time.RFC3339),
				string(tx.Status),
				tx.EventTitle,
				tx.BuyerName,
				tx.BuyerEmail,
				strconv.Itoa(tx.ItemCount),
				centsToUSD(tx.TotalAmount),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write csv record: %w", err)
			}
		}
		written += len(batch)

		if len(batch) < exportBatchSize {
			break
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	s.logger.Info().Int("rows", written).Int("admin_id", user.ID).Msg("transactions exported")
	return nil
}

// Summary returns the per-event sales rollups plus overall totals,
// optionally limited to a date range
func (s *ReportService) Summary(ctx context.Context, user *models.User, from, to *time.Time) (*SalesSummary, error) {
	if err := s.authorize(user); err != nil {
		return nil, err
	}

	events, err := s.orderRepo.GetEventSummaries(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get event summaries: %w", err)
	}

	overall, err := s.orderRepo.GetOrderStatistics(ctx, repositories.OrderSearchFilters{DateFrom: from, DateTo: to})
	if err != nil {
		return nil, fmt.Errorf("failed to get overall totals: %w", err)
	}

	return &SalesSummary{Events: events, Overall: overall}, nil
}

func (s *ReportService) authorize(user *models.User) error {
	if !user.IsAdmin() {
		return fmt.Errorf("%w: admin access required", models.ErrUnauthorized)
	}
	return nil
}

func centsToUSD(cents int) string {
	return strconv.FormatFloat(float64(cents)/100, 'f', 2, 64)
}
