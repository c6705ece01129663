package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/linen-admin/internal/analytics"
	"github.com/nurpe/linen-admin/internal/model"
)

const (
	summarySheet  = "Summary"
	categorySheet = "Categories"
)

type Generator struct {
	currency string
}

func NewGenerator(currency string) *Generator {
	return &Generator{currency: currency}
}

// Generate renders the invoice summary as a workbook with a client summary
// sheet and a category breakdown sheet.
func (g *Generator) Generate(report analytics.InvoiceReport, settings model.BusinessSettings) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := g.writeSummary(file, report, settings); err != nil {
		return nil, err
	}

	if _, err := file.NewSheet(categorySheet); err != nil {
		return nil, err
	}
	if err := g.writeCategories(file, report); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, report analytics.InvoiceReport, settings model.BusinessSettings) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}
	s := report.Summary

	set("A1", "Company")
	set("B1", companyName(settings))
	set("A2", "Period")
	set("B2", periodLabel(report.Period))
	set("A3", "VAT rate, %")
	set("B3", report.VATRate)
	set("A4", "Batches")
	set("B4", s.TotalBatches)
	set("A5", "Items washed")
	set("B5", s.TotalItems)
	set("A6", g.label("Revenue excl. VAT"))
	set("B6", s.TotalRevenue)
	set("A7", g.label("VAT"))
	set("B7", s.TotalVAT)
	set("A8", g.label("Total incl. VAT"))
	set("B8", s.TotalInclVAT)
	set("A9", "Discrepancy rate, %")
	set("B9", s.DiscrepancyRate)
	set("A10", g.label("Average batch value"))
	set("B10", s.AverageBatchValue)

	tableRow := 12
	headers := []string{
		"Client",
		"Batches",
		"Items",
		g.label("Amount excl. VAT"),
		g.label("VAT"),
		g.label("Total incl. VAT"),
		"Discrepancy batches",
	}
	if err := writeRow(file, summarySheet, tableRow, headers); err != nil {
		return err
	}

	for i, cl := range report.Clients {
		row := tableRow + 1 + i
		if err := writeRow(file, summarySheet, row, []interface{}{
			cl.ClientName,
			cl.BatchCount,
			cl.TotalItems,
			cl.TotalAmount,
			cl.VATAmount,
			cl.TotalInclVAT,
			cl.DiscrepancyBatches,
		}); err != nil {
			return err
		}
	}

	totalRow := tableRow + 1 + len(report.Clients)
	if err := writeRow(file, summarySheet, totalRow, []interface{}{
		"Total",
		s.TotalBatches,
		s.TotalItems,
		s.TotalRevenue,
		s.TotalVAT,
		s.TotalInclVAT,
		s.DiscrepancyBatches,
	}); err != nil {
		return err
	}

	if style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = file.SetCellStyle(summarySheet, cell(1, tableRow), cell(len(headers), tableRow), style)
		_ = file.SetCellStyle(summarySheet, cell(1, totalRow), cell(len(headers), totalRow), style)
	}
	if style, err := file.NewStyle(&excelize.Style{NumFmt: 4}); err == nil {
		_ = file.SetCellStyle(summarySheet, cell(4, tableRow+1), cell(6, totalRow), style)
	}

	_ = file.SetColWidth(summarySheet, "A", "A", 36)
	_ = file.SetColWidth(summarySheet, "B", "C", 12)
	_ = file.SetColWidth(summarySheet, "D", "F", 20)
	_ = file.SetColWidth(summarySheet, "G", "G", 20)
	return nil
}

func (g *Generator) writeCategories(file *excelize.File, report analytics.InvoiceReport) error {
	headers := []string{"Category", "Sent", "Received", "Discrepancy", g.label("Value"), "Share of income, %"}
	if err := writeRow(file, categorySheet, 1, headers); err != nil {
		return err
	}
	for i, ct := range report.Categories {
		if err := writeRow(file, categorySheet, i+2, []interface{}{
			ct.CategoryName,
			ct.QuantitySent,
			ct.QuantityRecv,
			ct.Discrepancy,
			ct.TotalValue,
			ct.ShareOfIncome,
		}); err != nil {
			return err
		}
	}
	_ = file.SetColWidth(categorySheet, "A", "A", 30)
	_ = file.SetColWidth(categorySheet, "B", "F", 16)
	return nil
}

func (g *Generator) label(base string) string {
	if g.currency == "" {
		return base
	}
	return fmt.Sprintf("%s, %s", base, g.currency)
}

func writeRow[T any](file *excelize.File, sheet string, row int, values []T) error {
	start := cell(1, row)
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return file.SetSheetRow(sheet, start, &vals)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func companyName(settings model.BusinessSettings) string {
	if name := strings.TrimSpace(settings.CompanyName); name != "" {
		return name
	}
	return "-"
}

func periodLabel(p analytics.Period) string {
	if p.AllMonths() {
		return fmt.Sprintf("%d (all months)", p.Year)
	}
	return p.Start.Format("January 2006")
}
