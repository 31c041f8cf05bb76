package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cupcakery/storefront/app/models"
	"github.com/cupcakery/storefront/app/repositories"
	"github.com/cupcakery/storefront/pkg/storage"
)

const (
	dateLayout  = "2006-01-02"
	topProducts = 10
)

// SalesReport is the staff revenue summary for a date range.
type SalesReport struct {
	DateFrom    string                    `json:"date_from,omitempty"`
	DateTo      string                    `json:"date_to,omitempty"`
	Revenue     decimal.Decimal           `json:"total_vendido"`
	OrdersCount int64                     `json:"orders_count"`
	TopProducts []repositories.TopProduct `json:"produtos_mais_vendidos"`
	Orders      []models.Order            `json:"orders"`
}

// ReportService builds sales reports and their CSV exports.
type ReportService struct {
	reports *repositories.ReportRepository
	disk    func() storage.Disk
	now     func() time.Time
}

func NewReportService(reports *repositories.ReportRepository) *ReportService {
	return &ReportService{reports: reports, disk: storage.Default, now: time.Now}
}

// ParseRange reads YYYY-MM-DD bounds. Either may be empty. The end date is
// inclusive: orders before the start of the following day are counted.
func ParseRange(dateFrom, dateTo string) (repositories.ReportRange, error) {
	var rng repositories.ReportRange
	if dateFrom = strings.TrimSpace(dateFrom); dateFrom != "" {
		t, err := time.Parse(dateLayout, dateFrom)
		if err != nil {
			return rng, fmt.Errorf("date_from %q: %w", dateFrom, ErrInvalidDate)
		}
		rng.From = t
	}
	if dateTo = strings.TrimSpace(dateTo); dateTo != "" {
		t, err := time.Parse(dateLayout, dateTo)
		if err != nil {
			return rng, fmt.Errorf("date_to %q: %w", dateTo, ErrInvalidDate)
		}
		rng.To = t.AddDate(0, 0, 1)
	}
	return rng, nil
}

// Sales computes revenue and the top ten products over paid orders in range.
func (s *ReportService) Sales(ctx context.Context, dateFrom, dateTo string) (SalesReport, error) {
	rng, err := ParseRange(dateFrom, dateTo)
	if err != nil {
		return SalesReport{}, err
	}

	report := SalesReport{DateFrom: dateFrom, DateTo: dateTo}
	if report.Revenue, report.OrdersCount, err = s.reports.Revenue(ctx, rng); err != nil {
		return SalesReport{}, fmt.Errorf("sales revenue: %w", err)
	}
	if report.TopProducts, err = s.reports.TopProducts(ctx, rng, topProducts); err != nil {
		return SalesReport{}, fmt.Errorf("top products: %w", err)
	}
	if report.Orders, err = s.reports.Orders(ctx, rng); err != nil {
		return SalesReport{}, fmt.Errorf("report orders: %w", err)
	}
	return report, nil
}

// Export is a report written to storage.
type Export struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Export writes the report as CSV to the default disk and returns where it
// landed.
func (s *ReportService) Export(ctx context.Context, dateFrom, dateTo string) (Export, error) {
	report, err := s.Sales(ctx, dateFrom, dateTo)
	if err != nil {
		return Export{}, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{
		{"periodo_inicio", report.DateFrom},
		{"periodo_fim", report.DateTo},
		{"pedidos", strconv.FormatInt(report.OrdersCount, 10)},
		{"total_vendido", report.Revenue.StringFixed(2)},
		{},
		{"posicao", "produto_id", "produto", "sabor", "unidades"},
	}
	for i, p := range report.TopProducts {
		id := ""
		if p.ProductID != nil {
			id = strconv.FormatUint(uint64(*p.ProductID), 10)
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), id, p.Name, p.Flavor, strconv.FormatInt(p.Units, 10)})
	}
	if err := w.WriteAll(rows); err != nil {
		return Export{}, fmt.Errorf("encode report: %w", err)
	}

	path := fmt.Sprintf("reports/vendas-%s.csv", s.now().UTC().Format("20060102-150405"))
	disk := s.disk()
	if err := disk.Put(ctx, path, buf.Bytes(), "text/csv"); err != nil {
		return Export{}, fmt.Errorf("store report: %w", err)
	}
	return Export{Path: path, URL: disk.URL(path)}, nil
}
