package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/linen-admin/internal/analytics"
	"github.com/nurpe/linen-admin/internal/model"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

type ReportService struct {
	batches  BatchStore
	clients  ClientStore
	settings SettingsStore
	calc     *analytics.Calculator
	excel    ExcelGenerator
	pdf      PDFGenerator
	log      zerolog.Logger
	now      func() time.Time
}

type FileResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ReportStats is the figure set behind the printable monthly report.
type ReportStats struct {
	Period     analytics.Period          `json:"period"`
	VATRate    int                       `json:"vat_rate"`
	Summary    analytics.InvoiceTotals   `json:"summary"`
	TopClient  *analytics.ClientInvoice  `json:"top_client"`
	Clients    []analytics.ClientInvoice `json:"clients"`
	Categories []analytics.CategoryTotal `json:"categories"`
	Business   model.BusinessSettings    `json:"business"`
}

func NewReportService(
	batches BatchStore,
	clients ClientStore,
	settings SettingsStore,
	calc *analytics.Calculator,
	excel ExcelGenerator,
	pdf PDFGenerator,
	log zerolog.Logger,
) *ReportService {
	return &ReportService{
		batches:  batches,
		clients:  clients,
		settings: settings,
		calc:     calc,
		excel:    excel,
		pdf:      pdf,
		log:      log,
		now:      time.Now,
	}
}

// InvoiceSummary aggregates the batches picked up in month ("YYYY-MM" or
// "YYYY-all") per client.
func (s *ReportService) InvoiceSummary(ctx context.Context, month string) (*analytics.InvoiceReport, error) {
	period, err := analytics.ParsePeriod(month)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.summary(ctx, period)
}

func (s *ReportService) Stats(ctx context.Context, month string) (*ReportStats, error) {
	report, err := s.InvoiceSummary(ctx, month)
	if err != nil {
		return nil, err
	}
	business, err := s.business(ctx)
	if err != nil {
		return nil, err
	}
	return &ReportStats{
		Period:     report.Period,
		VATRate:    report.VATRate,
		Summary:    report.Summary,
		TopClient:  report.TopClient,
		Clients:    report.Clients,
		Categories: report.Categories,
		Business:   *business,
	}, nil
}

func (s *ReportService) BatchInvoice(ctx context.Context, batchID uuid.UUID) (*analytics.BatchInvoice, error) {
	if batchID == uuid.Nil {
		return nil, invalid("batchId is required")
	}
	b, err := s.batches.GetWithItems(ctx, batchID)
	if err != nil {
		return nil, translate(err, "batch")
	}
	client, err := s.clients.Get(ctx, b.ClientID)
	if err != nil {
		return nil, translate(err, "client")
	}
	business, err := s.business(ctx)
	if err != nil {
		return nil, err
	}

	invoice := s.calc.BatchInvoice(*b, *client, *business, s.now().UTC())
	if invoice.Summary.FallbackPricedItems > 0 {
		s.log.Warn().
			Str("batch_id", batchID.String()).
			Int("items", invoice.Summary.FallbackPricedItems).
			Msg("invoice contains fallback priced items")
	}
	return &invoice, nil
}

func (s *ReportService) BatchInvoicePDF(ctx context.Context, batchID uuid.UUID) (*FileResult, error) {
	invoice, err := s.BatchInvoice(ctx, batchID)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.BatchInvoice(*invoice)
	if err != nil {
		return nil, err
	}
	return &FileResult{
		FileName:    invoiceFileName(*invoice),
		ContentType: ContentTypePDF,
		Content:     content,
	}, nil
}

// Export renders the invoice summary for month as an xlsx workbook or a pdf.
func (s *ReportService) Export(ctx context.Context, month, format string) (*FileResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "pdf" {
		return nil, invalid("format must be xlsx or pdf")
	}

	report, err := s.InvoiceSummary(ctx, month)
	if err != nil {
		return nil, err
	}
	business, err := s.business(ctx)
	if err != nil {
		return nil, err
	}

	result := &FileResult{FileName: buildFileName(*report, business.CompanyName, format)}
	switch format {
	case "pdf":
		result.ContentType = ContentTypePDF
		result.Content, err = s.pdf.MonthlyReport(*report, *business)
	default:
		result.ContentType = ContentTypeXLSX
		result.Content, err = s.excel.Generate(*report, *business)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ReportService) summary(ctx context.Context, period analytics.Period) (*analytics.InvoiceReport, error) {
	clients, err := s.clients.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	batches, err := s.batches.ListWithItems(ctx, period.Start, period.End, nil)
	if err != nil {
		return nil, err
	}
	report := s.calc.InvoiceSummary(period, clients, batches)
	return &report, nil
}

// business returns the stored settings, or empty settings before the first save.
func (s *ReportService) business(ctx context.Context) (*model.BusinessSettings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.BusinessSettings{}, nil
		}
		return nil, err
	}
	return settings, nil
}

func buildFileName(report analytics.InvoiceReport, company, ext string) string {
	prefix := sanitizeFileName(company)
	if prefix == "" {
		prefix = "linen"
	}
	return fmt.Sprintf("%s-report-%s.%s", strings.ToLower(prefix), report.Period.Label, ext)
}

func invoiceFileName(invoice analytics.BatchInvoice) string {
	client := sanitizeFileName(invoice.Client.Name)
	if client == "" {
		return fmt.Sprintf("%s.pdf", invoice.InvoiceNumber)
	}
	return fmt.Sprintf("%s-%s.pdf", invoice.InvoiceNumber, client)
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
