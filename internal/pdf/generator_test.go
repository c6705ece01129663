package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/linen-admin/internal/analytics"
	"github.com/nurpe/linen-admin/internal/model"
)

func TestBatchInvoice(t *testing.T) {
	delivered := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	doc := analytics.BatchInvoice{
		InvoiceNumber: "INV-20240302-1A2B3C4D",
		IssuedAt:      time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		Batch: model.Batch{
			ID:           uuid.New(),
			PaperBatchID: "P-001",
			PickupDate:   time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			DeliveryDate: &delivered,
			Status:       model.BatchStatusDelivered,
		},
		Client:   model.Client{Name: "Café Südwind", Address: "1 Main Rd"},
		Business: model.BusinessSettings{CompanyName: "Linen Co", BankDetails: "Acc 123", InvoiceFooter: "Thank you"},
		Lines: []analytics.InvoiceLine{
			{CategoryName: "Bed Sheet", QuantitySent: 25, QuantityReceived: 24, Discrepancy: 1, UnitPrice: 15.5, Amount: 387.5},
			{CategoryName: "Mop Head", QuantitySent: 1, QuantityReceived: 1, UnitPrice: 10, Amount: 10, PriceFallback: true},
		},
		Summary:   analytics.BatchSummary{ItemsWithDiscrepancy: 1, MissingItems: 1, FallbackPricedItems: 1},
		Subtotal:  397.5,
		VATRate:   analytics.VATRate,
		VATAmount: 59.63,
		Total:     457.13,
	}

	content, err := NewGenerator("R").BatchInvoice(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
}

func TestMonthlyReport(t *testing.T) {
	top := analytics.ClientInvoice{ClientName: "Beta Hotel", TotalAmount: 437.5}
	report := analytics.InvoiceReport{
		Period:     analytics.YearPeriod(2024),
		VATRate:    analytics.VATRate,
		Clients:    []analytics.ClientInvoice{top},
		TopClient:  &top,
		Categories: []analytics.CategoryTotal{{CategoryName: "Towel", QuantitySent: 10, TotalValue: 120}},
	}

	content, err := NewGenerator("").MonthlyReport(report, model.BusinessSettings{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "15.50", formatAmount(15.5, 2))
	assert.Equal(t, "-", formatDate(time.Time{}))
	assert.Equal(t, "02.03.2024", formatDate(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", labelled("Phone", " "))
	assert.Equal(t, "March 2024", periodLabel(analytics.MonthPeriod(2024, time.March)))
}
