package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/roadsafe/billing-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the invoice document. Amounts come straight from the
// stored record; the renderer never applies a tax rate of its own.
func (g *Generator) Generate(doc model.InvoiceDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Invoice %s", doc.Invoice.ReceiptNumber)), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Issued %s, due %s", formatDate(doc.Invoice.IssueDate), formatDate(doc.Invoice.DueDate))), "", 1, "C", false, 0, "")
	if doc.Invoice.PaymentTerms != "" {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Payment terms: %s", doc.Invoice.PaymentTerms)), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	addClientBlock(pdf, tr, doc.Client)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr("Billed jobs"), "", 1, "L", false, 0, "")

	headers := []string{"Description", "Date", "Location", "Qty", "Unit price", "Line total"}
	colWidths := []float64{60, 22, 40, 12, 23, 23}
	drawTableRow(pdf, tr, headers, colWidths, true)

	for _, line := range doc.Invoice.Lines {
		row := []string{
			line.Description,
			formatDate(line.JobDate),
			line.Location,
			formatAmount(line.Quantity, 0),
			formatAmount(line.UnitPrice, 2),
			formatAmount(line.LineTotal, 2),
		}
		drawTableRow(pdf, tr, row, colWidths, false)
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 11)
	currency := doc.Invoice.Currency
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Subtotal: %s %s", formatAmount(doc.Invoice.Subtotal, 2), currency)), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("VAT (%.0f%%): %s %s", doc.Invoice.TaxRate*100, formatAmount(doc.Invoice.TaxAmount, 2), currency)), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Total: %s %s", formatAmount(doc.Invoice.Total, 2), currency)), "", 1, "R", false, 0, "")

	if doc.Invoice.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, tr("Notes"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(doc.Invoice.Notes), "", "L", false)
	}

	if doc.BankDetails != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 6, tr("Bank details"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(doc.BankDetails), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addClientBlock(pdf *gofpdf.Fpdf, tr func(string) string, client model.Client) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, tr("Billed to"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	lines := []string{
		client.Name,
		fmt.Sprintf("Company no.: %s", safeValue(client.CompanyNumber)),
		fmt.Sprintf("Address: %s", safeValue(strings.TrimSpace(client.Address+" "+client.City))),
		fmt.Sprintf("Phone: %s", safeValue(client.Phone)),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 9)
	for i, col := range cols {
		align := "L"
		if i >= 3 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

func formatAmount(value float64, precision int) string {
	format := fmt.Sprintf("%%.%df", precision)
	return fmt.Sprintf(format, value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02.01.2006")
}
