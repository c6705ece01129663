// Package analytics computes discrepancy, pricing and invoice aggregates from
// batch line items. Nothing here touches storage: report paths load raw items
// and recompute totals instead of trusting stored amounts.
package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/nurpe/linen-admin/internal/pricing"
)

var hundred = decimal.NewFromInt(100)

// ItemInput is one batch line as far as aggregation is concerned.
type ItemInput struct {
	QuantitySent     int
	QuantityReceived int
	// ExplicitPrice overrides every other price source when set and positive.
	ExplicitPrice *float64
	PricePerItem  float64
	CategoryPrice float64
	CategoryName  string
}

type Discrepancy struct {
	Quantity   int     `json:"quantity"`
	Percentage float64 `json:"percentage"`
}

type ItemPricing struct {
	UnitPrice          float64        `json:"unit_price"`
	PriceSource        pricing.Source `json:"price_source"`
	PriceFallback      bool           `json:"price_fallback"`
	TotalSentValue     float64        `json:"total_sent_value"`
	TotalReceivedValue float64        `json:"total_received_value"`
	DiscrepancyValue   float64        `json:"discrepancy_value"`
}

type ItemResult struct {
	Discrepancy Discrepancy `json:"discrepancy"`
	Pricing     ItemPricing `json:"pricing"`
}

type BatchSummary struct {
	TotalItems            int     `json:"total_items"`
	TotalSent             int     `json:"total_sent"`
	TotalReceived         int     `json:"total_received"`
	TotalDiscrepancy      int     `json:"total_discrepancy"`
	MissingItems          int     `json:"missing_items"`
	ExtraItems            int     `json:"extra_items"`
	TotalSentValue        float64 `json:"total_sent_value"`
	TotalReceivedValue    float64 `json:"total_received_value"`
	TotalDiscrepancyValue float64 `json:"total_discrepancy_value"`
	ItemsWithDiscrepancy  int     `json:"items_with_discrepancy"`
	DiscrepancyPercentage float64 `json:"discrepancy_percentage"`
	FallbackPricedItems   int     `json:"fallback_priced_items"`
}

// HasDiscrepancy reports whether any item came back short or over.
func (s BatchSummary) HasDiscrepancy() bool {
	return s.ItemsWithDiscrepancy > 0
}

type Calculator struct {
	prices *pricing.Table
}

func NewCalculator(prices *pricing.Table) *Calculator {
	if prices == nil {
		prices = pricing.DefaultTable(0)
	}
	return &Calculator{prices: prices}
}

// Item computes discrepancy and values for a single line.
func (c *Calculator) Item(in ItemInput) ItemResult {
	res := c.prices.Resolve(in.ExplicitPrice, in.PricePerItem, in.CategoryPrice, in.CategoryName)
	unit := decimal.NewFromFloat(res.Price)

	diff := in.QuantitySent - in.QuantityReceived

	return ItemResult{
		Discrepancy: Discrepancy{
			Quantity:   diff,
			Percentage: Percentage(int64(diff), int64(in.QuantitySent)),
		},
		Pricing: ItemPricing{
			UnitPrice:          res.Price,
			PriceSource:        res.Source,
			PriceFallback:      res.Fallback(),
			TotalSentValue:     money(unit.Mul(decimal.NewFromInt(int64(in.QuantitySent)))),
			TotalReceivedValue: money(unit.Mul(decimal.NewFromInt(int64(in.QuantityReceived)))),
			DiscrepancyValue:   money(unit.Mul(decimal.NewFromInt(int64(diff)))),
		},
	}
}

// Batch computes every item in order plus the batch level summary.
func (c *Calculator) Batch(items []ItemInput) ([]ItemResult, BatchSummary) {
	results := make([]ItemResult, 0, len(items))
	summary := BatchSummary{TotalItems: len(items)}

	sentValue := decimal.Zero
	receivedValue := decimal.Zero
	discrepancyValue := decimal.Zero

	for _, in := range items {
		r := c.Item(in)
		results = append(results, r)

		summary.TotalSent += in.QuantitySent
		summary.TotalReceived += in.QuantityReceived
		summary.TotalDiscrepancy += r.Discrepancy.Quantity
		switch {
		case r.Discrepancy.Quantity > 0:
			summary.MissingItems += r.Discrepancy.Quantity
		case r.Discrepancy.Quantity < 0:
			summary.ExtraItems += -r.Discrepancy.Quantity
		}
		if r.Discrepancy.Quantity != 0 {
			summary.ItemsWithDiscrepancy++
		}
		if r.Pricing.PriceFallback {
			summary.FallbackPricedItems++
		}

		sentValue = sentValue.Add(decimal.NewFromFloat(r.Pricing.TotalSentValue))
		receivedValue = receivedValue.Add(decimal.NewFromFloat(r.Pricing.TotalReceivedValue))
		discrepancyValue = discrepancyValue.Add(decimal.NewFromFloat(r.Pricing.DiscrepancyValue))
	}

	summary.TotalSentValue = money(sentValue)
	summary.TotalReceivedValue = money(receivedValue)
	summary.TotalDiscrepancyValue = money(discrepancyValue)
	summary.DiscrepancyPercentage = Percentage(int64(summary.ItemsWithDiscrepancy), int64(summary.TotalItems))

	return results, summary
}

// BatchTotal is Σ quantity_sent × price_per_item, the value stored as a
// batch's total_amount.
func BatchTotal(items []ItemInput) float64 {
	total := decimal.Zero
	for _, in := range items {
		total = total.Add(decimal.NewFromFloat(in.PricePerItem).Mul(decimal.NewFromInt(int64(in.QuantitySent))))
	}
	return money(total)
}

// Percentage returns part/whole×100 rounded to two places, or 0 for an empty whole.
func Percentage(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole)).Round(2).InexactFloat64()
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
