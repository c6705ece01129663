package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/nurpe/linen-admin/internal/model"
)

type InvoiceLine struct {
	CategoryName     string  `json:"category_name"`
	QuantitySent     int     `json:"quantity_sent"`
	QuantityReceived int     `json:"quantity_received"`
	Discrepancy      int     `json:"discrepancy"`
	UnitPrice        float64 `json:"unit_price"`
	PriceFallback    bool    `json:"price_fallback"`
	Amount           float64 `json:"amount"`
}

// BatchInvoice is the billable view of a single batch. Amounts are charged on
// quantities sent.
type BatchInvoice struct {
	InvoiceNumber string                 `json:"invoice_number"`
	IssuedAt      time.Time              `json:"issued_at"`
	Batch         model.Batch            `json:"batch"`
	Client        model.Client           `json:"client"`
	Business      model.BusinessSettings `json:"business"`
	Lines         []InvoiceLine          `json:"lines"`
	Summary       BatchSummary           `json:"summary"`
	Subtotal      float64                `json:"subtotal"`
	VATRate       int                    `json:"vat_rate"`
	VATAmount     float64                `json:"vat_amount"`
	Total         float64                `json:"total"`
}

func (c *Calculator) BatchInvoice(b model.BatchWithItems, client model.Client, business model.BusinessSettings, issuedAt time.Time) BatchInvoice {
	fig := c.Figures(b)

	lines := make([]InvoiceLine, 0, len(b.Items))
	for i, it := range b.Items {
		r := fig.Lines[i]
		lines = append(lines, InvoiceLine{
			CategoryName:     it.CategoryName,
			QuantitySent:     it.QuantitySent,
			QuantityReceived: it.QuantityReceived,
			Discrepancy:      r.Discrepancy.Quantity,
			UnitPrice:        r.Pricing.UnitPrice,
			PriceFallback:    r.Pricing.PriceFallback,
			Amount:           r.Pricing.TotalSentValue,
		})
	}

	vat, total := VAT(fig.Amount)
	return BatchInvoice{
		InvoiceNumber: InvoiceNumber(b.Batch),
		IssuedAt:      issuedAt,
		Batch:         b.Batch,
		Client:        client,
		Business:      business,
		Lines:         lines,
		Summary:       fig.Summary,
		Subtotal:      fig.Amount,
		VATRate:       VATRate,
		VATAmount:     vat,
		Total:         total,
	}
}

// InvoiceNumber derives a stable invoice number from the pickup date and the
// batch id.
func InvoiceNumber(b model.Batch) string {
	short := strings.ToUpper(strings.ReplaceAll(b.ID.String(), "-", ""))[:8]
	return fmt.Sprintf("INV-%s-%s", b.PickupDate.Format("20060102"), short)
}
