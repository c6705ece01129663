package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/linen-admin/internal/analytics"
	"github.com/nurpe/linen-admin/internal/model"
)

const fontName = "Helvetica"

type Generator struct {
	currency string
}

func NewGenerator(currency string) *Generator {
	return &Generator{currency: currency}
}

// BatchInvoice renders a single batch invoice on A4 portrait.
func (g *Generator) BatchInvoice(doc analytics.BatchInvoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(fontName, "B", 16)
	pdf.CellFormat(0, 10, "TAX INVOICE", "", 1, "R", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Invoice No: %s", doc.InvoiceNumber)), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Date: %s", formatDate(doc.IssuedAt)), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	addPartyBlock(pdf, tr, "From", businessLines(doc.Business))
	pdf.Ln(2)
	addPartyBlock(pdf, tr, "Bill to", []string{
		doc.Client.Name,
		labelled("Contact", doc.Client.ContactPerson),
		labelled("Address", doc.Client.Address),
		labelled("Phone", doc.Client.Phone),
		labelled("Email", doc.Client.Email),
	})
	pdf.Ln(4)

	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 7, "Batch", "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	delivery := "-"
	if doc.Batch.DeliveryDate != nil {
		delivery = formatDate(*doc.Batch.DeliveryDate)
	}
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Paper batch ID: %s", safeValue(doc.Batch.PaperBatchID))), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Picked up: %s   Delivered: %s   Status: %s",
		formatDate(doc.Batch.PickupDate), delivery, doc.Batch.Status), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	headers := []string{"Category", "Sent", "Received", "Unit price", "Amount"}
	widths := []float64{75, 20, 25, 30, 30}
	drawTableRow(pdf, tr, headers, widths, true)
	for _, line := range doc.Lines {
		name := line.CategoryName
		if line.PriceFallback {
			name += " *"
		}
		drawTableRow(pdf, tr, []string{
			name,
			fmt.Sprintf("%d", line.QuantitySent),
			fmt.Sprintf("%d", line.QuantityReceived),
			formatAmount(line.UnitPrice, 2),
			formatAmount(line.Amount, 2),
		}, widths, false)
	}
	pdf.Ln(2)

	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Subtotal: %s", g.money(doc.Subtotal))), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("VAT (%d%%): %s", doc.VATRate, g.money(doc.VATAmount))), "", 1, "R", false, 0, "")
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Total: %s", g.money(doc.Total))), "", 1, "R", false, 0, "")

	if doc.Summary.ItemsWithDiscrepancy > 0 {
		pdf.Ln(2)
		pdf.SetFont(fontName, "", 9)
		pdf.SetTextColor(200, 0, 0)
		pdf.MultiCell(0, 5, fmt.Sprintf("Discrepancies: %d missing, %d extra items.",
			doc.Summary.MissingItems, doc.Summary.ExtraItems), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	if doc.Summary.FallbackPricedItems > 0 {
		pdf.SetFont(fontName, "", 9)
		pdf.MultiCell(0, 5, "* priced with the default unit price", "", "L", false)
	}

	addFooter(pdf, tr, doc.Business)
	return output(pdf)
}

// MonthlyReport renders the invoice summary for a period on A4 landscape.
func (g *Generator) MonthlyReport(report analytics.InvoiceReport, settings model.BusinessSettings) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(fontName, "B", 14)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("%s: invoice summary", safeValue(settings.CompanyName))), "", 1, "C", false, 0, "")
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s", periodLabel(report.Period)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	s := report.Summary
	pdf.SetFont(fontName, "", 10)
	for _, line := range []string{
		fmt.Sprintf("Clients: %d   Batches: %d   Items: %d", s.TotalClients, s.TotalBatches, s.TotalItems),
		fmt.Sprintf("Revenue excl. VAT: %s   VAT (%d%%): %s   Total incl. VAT: %s",
			g.money(s.TotalRevenue), report.VATRate, g.money(s.TotalVAT), g.money(s.TotalInclVAT)),
		fmt.Sprintf("Discrepancy batches: %d (%.2f%%)   Average batch value: %s",
			s.DiscrepancyBatches, s.DiscrepancyRate, g.money(s.AverageBatchValue)),
	} {
		pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
	}
	if report.TopClient != nil {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Top client: %s (%s)", report.TopClient.ClientName, g.money(report.TopClient.TotalAmount))), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	headers := []string{"Client", "Batches", "Items", "Excl. VAT", "VAT", "Incl. VAT", "Discrepancies"}
	widths := []float64{85, 22, 22, 35, 30, 35, 30}
	drawTableRow(pdf, tr, headers, widths, true)
	for _, cl := range report.Clients {
		drawTableRow(pdf, tr, []string{
			cl.ClientName,
			fmt.Sprintf("%d", cl.BatchCount),
			fmt.Sprintf("%d", cl.TotalItems),
			formatAmount(cl.TotalAmount, 2),
			formatAmount(cl.VATAmount, 2),
			formatAmount(cl.TotalInclVAT, 2),
			fmt.Sprintf("%d", cl.DiscrepancyBatches),
		}, widths, false)
	}

	if len(report.Categories) > 0 {
		pdf.Ln(4)
		pdf.SetFont(fontName, "B", 12)
		pdf.CellFormat(0, 8, "Categories", "", 1, "L", false, 0, "")
		catWidths := []float64{85, 25, 25, 30, 35, 30}
		drawTableRow(pdf, tr, []string{"Category", "Sent", "Received", "Discrepancy", "Value", "Share, %"}, catWidths, true)
		for _, ct := range report.Categories {
			drawTableRow(pdf, tr, []string{
				ct.CategoryName,
				fmt.Sprintf("%d", ct.QuantitySent),
				fmt.Sprintf("%d", ct.QuantityRecv),
				fmt.Sprintf("%d", ct.Discrepancy),
				formatAmount(ct.TotalValue, 2),
				formatAmount(ct.ShareOfIncome, 2),
			}, catWidths, false)
		}
	}

	addFooter(pdf, tr, settings)
	return output(pdf)
}

func (g *Generator) money(value float64) string {
	if g.currency == "" {
		return formatAmount(value, 2)
	}
	return g.currency + " " + formatAmount(value, 2)
}

func addPartyBlock(pdf *gofpdf.Fpdf, tr func(string) string, title string, lines []string) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
}

func businessLines(b model.BusinessSettings) []string {
	return []string{
		safeValue(b.CompanyName),
		b.Address,
		labelled("Phone", b.Phone),
		labelled("Email", b.Email),
		labelled("VAT No", b.VATNumber),
		labelled("Reg No", b.RegistrationNumber),
	}
}

func addFooter(pdf *gofpdf.Fpdf, tr func(string) string, b model.BusinessSettings) {
	if strings.TrimSpace(b.BankDetails) == "" && strings.TrimSpace(b.InvoiceFooter) == "" {
		return
	}
	pdf.Ln(6)
	pdf.SetFont(fontName, "", 9)
	if strings.TrimSpace(b.BankDetails) != "" {
		pdf.MultiCell(0, 5, tr("Banking details: "+b.BankDetails), "", "L", false)
	}
	if strings.TrimSpace(b.InvoiceFooter) != "" {
		pdf.MultiCell(0, 5, tr(b.InvoiceFooter), "", "L", false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func labelled(label, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return label + ": " + value
}

func periodLabel(p analytics.Period) string {
	if p.AllMonths() {
		return fmt.Sprintf("%d (all months)", p.Year)
	}
	return p.Start.Format("January 2006")
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value float64, precision int) string {
	format := fmt.Sprintf("%%.%df", precision)
	return fmt.Sprintf(format, value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
