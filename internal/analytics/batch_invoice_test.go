package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/linen-admin/internal/model"
)

func TestBatchInvoice(t *testing.T) {
	id := uuid.MustParse("1a2b3c4d-0000-4000-8000-000000000001")
	b := model.BatchWithItems{
		Batch: model.Batch{ID: id, PickupDate: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		Items: []model.BatchItem{
			item("Bed Sheet", 20, 20, 15.50),
			item("Pillow Case", 15, 15, 8.75),
			item("Duvet Cover", 8, 8, 25.00),
		},
	}
	client := model.Client{ID: uuid.New(), Name: "Alpha Lodge"}
	issued := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	inv := NewCalculator(nil).BatchInvoice(b, client, model.BusinessSettings{CompanyName: "Linen Co"}, issued)

	assert.Equal(t, "INV-20240302-1A2B3C4D", inv.InvoiceNumber)
	require.Len(t, inv.Lines, 3)
	assert.Equal(t, 310.0, inv.Lines[0].Amount)
	assert.Equal(t, 641.25, inv.Subtotal)
	assert.Equal(t, 96.19, inv.VATAmount)
	assert.Equal(t, 737.44, inv.Total)
	assert.Equal(t, VATRate, inv.VATRate)
	assert.Equal(t, "Alpha Lodge", inv.Client.Name)
	assert.Equal(t, issued, inv.IssuedAt)
}

func TestBatchInvoiceFlagsFallbackLines(t *testing.T) {
	b := model.BatchWithItems{
		Batch: model.Batch{ID: uuid.New(), PickupDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		Items: []model.BatchItem{{CategoryName: "Mop Head", QuantitySent: 2, QuantityReceived: 1}},
	}

	inv := NewCalculator(nil).BatchInvoice(b, model.Client{}, model.BusinessSettings{}, time.Now())

	require.Len(t, inv.Lines, 1)
	assert.True(t, inv.Lines[0].PriceFallback)
	assert.Equal(t, 1, inv.Lines[0].Discrepancy)
	assert.Equal(t, 1, inv.Summary.FallbackPricedItems)
}
