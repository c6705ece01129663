package analytics

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/linen-admin/internal/model"
)

// VATRate is the fixed VAT percentage applied on invoices.
const VATRate = 15

var (
	vatFactor = decimal.New(VATRate, -2)

	ErrInvalidPeriod = errors.New("invalid period")
)

// Period is a calendar month, or a whole year when Month is 0.
type Period struct {
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (p Period) AllMonths() bool {
	return p.Month == 0
}

// ParsePeriod accepts "YYYY-MM" or "YYYY-all". End is exclusive.
func ParsePeriod(raw string) (Period, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, "-")
	if len(parts) != 2 || len(parts[0]) != 4 {
		return Period{}, fmt.Errorf("%w: expected YYYY-MM or YYYY-all, got %q", ErrInvalidPeriod, raw)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 2000 || year > 2100 {
		return Period{}, fmt.Errorf("%w: bad year %q", ErrInvalidPeriod, parts[0])
	}
	if strings.EqualFold(parts[1], "all") {
		return YearPeriod(year), nil
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: bad month %q", ErrInvalidPeriod, parts[1])
	}
	return MonthPeriod(year, time.Month(month)), nil
}

func MonthPeriod(year int, month time.Month) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Year:  year,
		Month: int(month),
		Label: start.Format("2006-01"),
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}
}

func YearPeriod(year int) Period {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Year:  year,
		Label: fmt.Sprintf("%d-all", year),
		Start: start,
		End:   start.AddDate(1, 0, 0),
	}
}

// VAT returns the VAT on a pre-VAT amount and the VAT inclusive total, both
// rounded to cents.
func VAT(amount float64) (vat, inclusive float64) {
	a := decimal.NewFromFloat(amount)
	v := a.Mul(vatFactor).Round(2)
	return v.InexactFloat64(), a.Add(v).Round(2).InexactFloat64()
}

type ClientInvoice struct {
	ClientID           uuid.UUID `json:"client_id"`
	ClientName         string    `json:"client_name"`
	BatchCount         int       `json:"batch_count"`
	TotalItems         int       `json:"total_items"`
	TotalAmount        float64   `json:"total_amount"`
	VATAmount          float64   `json:"vat_amount"`
	TotalInclVAT       float64   `json:"total_incl_vat"`
	DiscrepancyBatches int       `json:"discrepancy_batches"`
}

type InvoiceTotals struct {
	TotalClients       int     `json:"total_clients"`
	TotalBatches       int     `json:"total_batches"`
	TotalItems         int     `json:"total_items"`
	TotalRevenue       float64 `json:"total_revenue"`
	TotalVAT           float64 `json:"total_vat"`
	TotalInclVAT       float64 `json:"total_incl_vat"`
	DiscrepancyBatches int     `json:"discrepancy_batches"`
	DiscrepancyRate    float64 `json:"discrepancy_rate"`
	AverageBatchValue  float64 `json:"average_batch_value"`
}

type CategoryTotal struct {
	CategoryName  string  `json:"category_name"`
	QuantitySent  int     `json:"quantity_sent"`
	QuantityRecv  int     `json:"quantity_received"`
	Discrepancy   int     `json:"discrepancy"`
	TotalValue    float64 `json:"total_value"`
	ShareOfIncome float64 `json:"share_of_income"`
}

type InvoiceReport struct {
	Period     Period          `json:"period"`
	VATRate    int             `json:"vat_rate"`
	Clients    []ClientInvoice `json:"clients"`
	Summary    InvoiceTotals   `json:"summary"`
	TopClient  *ClientInvoice  `json:"top_client"`
	Categories []CategoryTotal `json:"categories"`
}

// BatchFigures are the recomputed numbers for one stored batch.
type BatchFigures struct {
	Amount         float64
	Items          int
	Received       int
	HasDiscrepancy bool
	Summary        BatchSummary
	Lines          []ItemResult
}

func (c *Calculator) Figures(b model.BatchWithItems) BatchFigures {
	lines, summary := c.Batch(ItemInputs(b.Items))
	return BatchFigures{
		Amount:         summary.TotalSentValue,
		Items:          summary.TotalSent,
		Received:       summary.TotalReceived,
		HasDiscrepancy: summary.HasDiscrepancy(),
		Summary:        summary,
		Lines:          lines,
	}
}

// ItemInputs converts stored batch items into aggregation inputs.
func ItemInputs(items []model.BatchItem) []ItemInput {
	inputs := make([]ItemInput, 0, len(items))
	for _, it := range items {
		inputs = append(inputs, ItemInput{
			QuantitySent:     it.QuantitySent,
			QuantityReceived: it.QuantityReceived,
			PricePerItem:     it.PricePerItem,
			CategoryPrice:    it.CategoryPrice,
			CategoryName:     it.CategoryName,
		})
	}
	return inputs
}

// InvoiceSummary aggregates batches per client for the period. Clients are
// reported in the order given; batches whose client is not listed are
// appended in order of first appearance. Clients without batches are left out.
func (c *Calculator) InvoiceSummary(period Period, clients []model.Client, batches []model.BatchWithItems) InvoiceReport {
	type acc struct {
		invoice ClientInvoice
		amount  decimal.Decimal
	}

	order := make([]uuid.UUID, 0, len(clients))
	byClient := make(map[uuid.UUID]*acc, len(clients))
	for _, cl := range clients {
		if _, ok := byClient[cl.ID]; ok {
			continue
		}
		byClient[cl.ID] = &acc{invoice: ClientInvoice{ClientID: cl.ID, ClientName: cl.Name}, amount: decimal.Zero}
		order = append(order, cl.ID)
	}

	categoryOrder := []string{}
	categories := map[string]*CategoryTotal{}
	categoryValue := map[string]decimal.Decimal{}

	for _, b := range batches {
		if !inPeriod(b.PickupDate, period) {
			continue
		}
		a, ok := byClient[b.ClientID]
		if !ok {
			a = &acc{invoice: ClientInvoice{ClientID: b.ClientID, ClientName: b.ClientName}, amount: decimal.Zero}
			byClient[b.ClientID] = a
			order = append(order, b.ClientID)
		}

		fig := c.Figures(b)
		a.invoice.BatchCount++
		a.invoice.TotalItems += fig.Items
		a.amount = a.amount.Add(decimal.NewFromFloat(fig.Amount))
		if fig.HasDiscrepancy {
			a.invoice.DiscrepancyBatches++
		}

		for i, it := range b.Items {
			name := strings.TrimSpace(it.CategoryName)
			if name == "" {
				name = "Uncategorised"
			}
			ct, ok := categories[name]
			if !ok {
				ct = &CategoryTotal{CategoryName: name}
				categories[name] = ct
				categoryValue[name] = decimal.Zero
				categoryOrder = append(categoryOrder, name)
			}
			ct.QuantitySent += it.QuantitySent
			ct.QuantityRecv += it.QuantityReceived
			ct.Discrepancy += fig.Lines[i].Discrepancy.Quantity
			categoryValue[name] = categoryValue[name].Add(decimal.NewFromFloat(fig.Lines[i].Pricing.TotalSentValue))
		}
	}

	report := InvoiceReport{
		Period:     period,
		VATRate:    VATRate,
		Clients:    []ClientInvoice{},
		Categories: []CategoryTotal{},
	}

	revenue := decimal.Zero
	vat := decimal.Zero
	for _, id := range order {
		a := byClient[id]
		if a.invoice.BatchCount == 0 {
			continue
		}
		a.invoice.TotalAmount = money(a.amount)
		a.invoice.VATAmount, a.invoice.TotalInclVAT = VAT(a.invoice.TotalAmount)
		report.Clients = append(report.Clients, a.invoice)

		report.Summary.TotalBatches += a.invoice.BatchCount
		report.Summary.TotalItems += a.invoice.TotalItems
		report.Summary.DiscrepancyBatches += a.invoice.DiscrepancyBatches
		revenue = revenue.Add(decimal.NewFromFloat(a.invoice.TotalAmount))
		vat = vat.Add(decimal.NewFromFloat(a.invoice.VATAmount))
	}

	report.Summary.TotalClients = len(report.Clients)
	report.Summary.TotalRevenue = money(revenue)
	report.Summary.TotalVAT = money(vat)
	report.Summary.TotalInclVAT = money(revenue.Add(vat))
	report.Summary.DiscrepancyRate = Percentage(int64(report.Summary.DiscrepancyBatches), int64(report.Summary.TotalBatches))
	if report.Summary.TotalBatches > 0 {
		report.Summary.AverageBatchValue = money(revenue.Div(decimal.NewFromInt(int64(report.Summary.TotalBatches))))
	}

	for i := range report.Clients {
		if report.TopClient == nil || report.Clients[i].TotalAmount > report.TopClient.TotalAmount {
			top := report.Clients[i]
			report.TopClient = &top
		}
	}

	for _, name := range categoryOrder {
		ct := categories[name]
		ct.TotalValue = money(categoryValue[name])
		if !revenue.IsZero() {
			ct.ShareOfIncome = categoryValue[name].Mul(hundred).Div(revenue).Round(2).InexactFloat64()
		}
		report.Categories = append(report.Categories, *ct)
	}

	return report
}

func inPeriod(t time.Time, p Period) bool {
	if p.Start.IsZero() && p.End.IsZero() {
		return true
	}
	return !t.Before(p.Start) && t.Before(p.End)
}
