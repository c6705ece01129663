package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/linen-admin/internal/analytics"
	"github.com/nurpe/linen-admin/internal/model"
	"github.com/nurpe/linen-admin/internal/workflow"
)

type StatsType string

const (
	StatsOverview      StatsType = "overview"
	StatsMonthly       StatsType = "monthly"
	StatsRevenue       StatsType = "revenue"
	StatsClients       StatsType = "clients"
	StatsDiscrepancies StatsType = "discrepancies"
)

const (
	defaultStatsMonths = 12
	maxStatsMonths     = 24
)

type StatsQuery struct {
	Type StatsType
	// Month is "YYYY-MM" or "YYYY-all"; empty means the current month.
	Month  string
	Months int
	Year   int
}

type Overview struct {
	ActiveClients           int64                       `json:"active_clients"`
	TotalBatches            int64                       `json:"total_batches"`
	BatchesByStatus         map[model.BatchStatus]int64 `json:"batches_by_status"`
	OpenBatches             int64                       `json:"open_batches"`
	Period                  string                      `json:"period"`
	MonthBatches            int                         `json:"month_batches"`
	MonthItems              int                         `json:"month_items"`
	MonthRevenue            float64                     `json:"month_revenue"`
	MonthDiscrepancyBatches int                         `json:"month_discrepancy_batches"`
}

type MonthlyPoint struct {
	Month   string  `json:"month"`
	Batches int     `json:"batches"`
	Items   int     `json:"items"`
	Revenue float64 `json:"revenue"`
}

type RevenueMonth struct {
	Month        string  `json:"month"`
	Batches      int     `json:"batches"`
	Revenue      float64 `json:"revenue"`
	VATAmount    float64 `json:"vat_amount"`
	TotalInclVAT float64 `json:"total_incl_vat"`
}

type RevenueReport struct {
	Year   int            `json:"year"`
	Months []RevenueMonth `json:"months"`
	Totals RevenueMonth   `json:"totals"`
}

type ClientStats struct {
	Period  string                    `json:"period"`
	Clients []analytics.ClientInvoice `json:"clients"`
}

type DiscrepancyBatch struct {
	BatchID              uuid.UUID         `json:"batch_id"`
	PaperBatchID         string            `json:"paper_batch_id"`
	ClientID             uuid.UUID         `json:"client_id"`
	ClientName           string            `json:"client_name"`
	PickupDate           time.Time         `json:"pickup_date"`
	Status               model.BatchStatus `json:"status"`
	ItemsWithDiscrepancy int               `json:"items_with_discrepancy"`
	MissingItems         int               `json:"missing_items"`
	ExtraItems           int               `json:"extra_items"`
	DiscrepancyValue     float64           `json:"discrepancy_value"`
}

type DiscrepancyReport struct {
	Period  string             `json:"period"`
	Batches []DiscrepancyBatch `json:"batches"`
	Totals  struct {
		Batches          int     `json:"batches"`
		MissingItems     int     `json:"missing_items"`
		ExtraItems       int     `json:"extra_items"`
		DiscrepancyValue float64 `json:"discrepancy_value"`
	} `json:"totals"`
}

type DashboardService struct {
	batches BatchStore
	clients ClientStore
	calc    *analytics.Calculator
	now     func() time.Time
}

func NewDashboardService(batches BatchStore, clients ClientStore, calc *analytics.Calculator) *DashboardService {
	return &DashboardService{batches: batches, clients: clients, calc: calc, now: time.Now}
}

// Stats dispatches on the requested statistics type.
func (s *DashboardService) Stats(ctx context.Context, q StatsQuery) (interface{}, error) {
	switch StatsType(strings.ToLower(strings.TrimSpace(string(q.Type)))) {
	case StatsOverview, "":
		return s.Overview(ctx)
	case StatsMonthly:
		return s.Monthly(ctx, q.Months)
	case StatsRevenue:
		return s.Revenue(ctx, q.Year)
	case StatsClients:
		return s.Clients(ctx, q.Month)
	case StatsDiscrepancies:
		return s.Discrepancies(ctx, q.Month)
	default:
		return nil, invalid("unknown stats type %q", q.Type)
	}
}

func (s *DashboardService) Overview(ctx context.Context) (*Overview, error) {
	active, err := s.clients.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.batches.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	out := &Overview{
		ActiveClients:   active,
		BatchesByStatus: make(map[model.BatchStatus]int64, 4),
	}
	for _, st := range []model.BatchStatus{
		model.BatchStatusPickup,
		model.BatchStatusWashing,
		model.BatchStatusCompleted,
		model.BatchStatusDelivered,
	} {
		n := counts[st]
		out.BatchesByStatus[st] = n
		out.TotalBatches += n
		if !workflow.Terminal(st) {
			out.OpenBatches += n
		}
	}

	now := s.now().UTC()
	period := analytics.MonthPeriod(now.Year(), now.Month())
	batches, err := s.batches.ListWithItems(ctx, period.Start, period.End, nil)
	if err != nil {
		return nil, err
	}
	revenue := decimal.Zero
	for _, b := range batches {
		fig := s.calc.Figures(b)
		out.MonthBatches++
		out.MonthItems += fig.Items
		revenue = revenue.Add(decimal.NewFromFloat(fig.Amount))
		if fig.HasDiscrepancy {
			out.MonthDiscrepancyBatches++
		}
	}
	out.Period = period.Label
	out.MonthRevenue = revenue.Round(2).InexactFloat64()
	return out, nil
}

// Monthly returns one point per month for the last n months, oldest first,
// including the current month.
func (s *DashboardService) Monthly(ctx context.Context, months int) ([]MonthlyPoint, error) {
	if months == 0 {
		months = defaultStatsMonths
	}
	if months < 1 || months > maxStatsMonths {
		return nil, invalid("months must be between 1 and %d", maxStatsMonths)
	}

	now := s.now().UTC()
	current := analytics.MonthPeriod(now.Year(), now.Month())
	first := current.Start.AddDate(0, -(months - 1), 0)

	batches, err := s.batches.ListWithItems(ctx, first, current.End, nil)
	if err != nil {
		return nil, err
	}

	points := make([]MonthlyPoint, months)
	revenue := make([]decimal.Decimal, months)
	for i := range points {
		points[i].Month = first.AddDate(0, i, 0).Format("2006-01")
		revenue[i] = decimal.Zero
	}
	for _, b := range batches {
		idx := monthIndex(first, b.PickupDate)
		if idx < 0 || idx >= months {
			continue
		}
		fig := s.calc.Figures(b)
		points[idx].Batches++
		points[idx].Items += fig.Items
		revenue[idx] = revenue[idx].Add(decimal.NewFromFloat(fig.Amount))
	}
	for i := range points {
		points[i].Revenue = revenue[i].Round(2).InexactFloat64()
	}
	return points, nil
}

// Revenue breaks a calendar year down per month with VAT applied to each
// month's pre-VAT revenue.
func (s *DashboardService) Revenue(ctx context.Context, year int) (*RevenueReport, error) {
	if year == 0 {
		year = s.now().UTC().Year()
	}
	if year < 2000 || year > 2100 {
		return nil, invalid("year must be between 2000 and 2100")
	}
	period := analytics.YearPeriod(year)
	batches, err := s.batches.ListWithItems(ctx, period.Start, period.End, nil)
	if err != nil {
		return nil, err
	}

	amounts := make([]decimal.Decimal, 12)
	out := &RevenueReport{Year: year, Months: make([]RevenueMonth, 12)}
	for i := range amounts {
		amounts[i] = decimal.Zero
		out.Months[i].Month = period.Start.AddDate(0, i, 0).Format("2006-01")
	}
	for _, b := range batches {
		idx := monthIndex(period.Start, b.PickupDate)
		if idx < 0 || idx >= 12 {
			continue
		}
		out.Months[idx].Batches++
		amounts[idx] = amounts[idx].Add(decimal.NewFromFloat(s.calc.Figures(b).Amount))
	}

	total, vat := decimal.Zero, decimal.Zero
	out.Totals.Month = period.Label
	for i := range out.Months {
		m := &out.Months[i]
		m.Revenue = amounts[i].Round(2).InexactFloat64()
		m.VATAmount, m.TotalInclVAT = analytics.VAT(m.Revenue)
		out.Totals.Batches += m.Batches
		total = total.Add(decimal.NewFromFloat(m.Revenue))
		vat = vat.Add(decimal.NewFromFloat(m.VATAmount))
	}
	out.Totals.Revenue = total.Round(2).InexactFloat64()
	out.Totals.VATAmount = vat.Round(2).InexactFloat64()
	out.Totals.TotalInclVAT = total.Add(vat).Round(2).InexactFloat64()
	return out, nil
}

// Clients ranks clients by pre-VAT revenue for the period, highest first.
func (s *DashboardService) Clients(ctx context.Context, month string) (*ClientStats, error) {
	period, err := s.period(month)
	if err != nil {
		return nil, err
	}
	clients, err := s.clients.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	batches, err := s.batches.ListWithItems(ctx, period.Start, period.End, nil)
	if err != nil {
		return nil, err
	}
	report := s.calc.InvoiceSummary(period, clients, batches)
	ranked := make([]analytics.ClientInvoice, len(report.Clients))
	copy(ranked, report.Clients)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalAmount > ranked[j].TotalAmount
	})
	return &ClientStats{Period: period.Label, Clients: ranked}, nil
}

// Discrepancies lists the period's batches with at least one item whose
// received count differs from the sent count.
func (s *DashboardService) Discrepancies(ctx context.Context, month string) (*DiscrepancyReport, error) {
	period, err := s.period(month)
	if err != nil {
		return nil, err
	}
	batches, err := s.batches.ListWithItems(ctx, period.Start, period.End, nil)
	if err != nil {
		return nil, err
	}

	out := &DiscrepancyReport{Period: period.Label, Batches: []DiscrepancyBatch{}}
	value := decimal.Zero
	for _, b := range batches {
		fig := s.calc.Figures(b)
		if !fig.HasDiscrepancy {
			continue
		}
		out.Batches = append(out.Batches, DiscrepancyBatch{
			BatchID:              b.ID,
			PaperBatchID:         b.PaperBatchID,
			ClientID:             b.ClientID,
			ClientName:           b.ClientName,
			PickupDate:           b.PickupDate,
			Status:               b.Status,
			ItemsWithDiscrepancy: fig.Summary.ItemsWithDiscrepancy,
			MissingItems:         fig.Summary.MissingItems,
			ExtraItems:           fig.Summary.ExtraItems,
			DiscrepancyValue:     fig.Summary.TotalDiscrepancyValue,
		})
		out.Totals.MissingItems += fig.Summary.MissingItems
		out.Totals.ExtraItems += fig.Summary.ExtraItems
		value = value.Add(decimal.NewFromFloat(fig.Summary.TotalDiscrepancyValue))
	}
	out.Totals.Batches = len(out.Batches)
	out.Totals.DiscrepancyValue = value.Round(2).InexactFloat64()
	return out, nil
}

func (s *DashboardService) period(month string) (analytics.Period, error) {
	if strings.TrimSpace(month) == "" {
		now := s.now().UTC()
		return analytics.MonthPeriod(now.Year(), now.Month()), nil
	}
	p, err := analytics.ParsePeriod(month)
	if err != nil {
		return analytics.Period{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return p, nil
}

func monthIndex(first, t time.Time) int {
	return (t.Year()-first.Year())*12 + int(t.Month()) - int(first.Month())
}
