package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"amc-reconcile/internal/reconciliation/application"
)

// BuildReportPDF renders the payment summary and quarter-wise details.
func BuildReportPDF(report *application.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	symbol := pdfCurrencySymbol(report.Settings.CurrencySymbol, tr)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	title := report.Settings.ReportTitle
	if title == "" {
		title = "AMC Payment Report"
	}
	pdf.SetFont("Arial", "B", 18)
	pdf.SetTextColor(59, 130, 246)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated on: %s", report.GeneratedAt.Format("2006-01-02")), "", 1, "C", false, 0, "")
	if report.Settings.CompanyName != "" {
		pdf.CellFormat(0, 6, tr(report.Settings.CompanyName), "", 1, "C", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Payment Summary")
	pdf.Ln(10)
	summary := report.SummaryTableFor(symbol)
	summaryRows := make([][]string, 0, len(summary.Rows))
	for _, row := range summary.Rows {
		summaryRows = append(summaryRows, []string{formatCell(row[0]), formatCell(row[1])})
	}
	pdfTable(pdf, []float64{85, 85}, summary.Columns, summaryRows)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Quarter-wise Details")
	pdf.Ln(10)
	rows := make([][]string, 0, len(report.Quarters))
	for _, q := range report.Quarters {
		paidDate := q.PaymentDate
		if paidDate == "" {
			paidDate = "-"
		}
		rows = append(rows, []string{
			q.Tag.String(),
			application.FormatMoney(symbol, q.AmountWithTax),
			string(q.Status),
			tr(paidDate),
		})
	}
	pdfTable(pdf, []float64{35, 50, 40, 45}, []string{"Quarter", "Amount", "Status", "Paid Date"}, rows)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pdfTable(pdf *gofpdf.Fpdf, widths []float64, head []string, rows [][]string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(59, 130, 246)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range head {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range rows {
		for i, value := range row {
			align := "L"
			if i > 0 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, value, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// Core PDF fonts are cp1252 and cannot draw the rupee sign.
func pdfCurrencySymbol(symbol string, tr func(string) string) string {
	if symbol == "₹" {
		return "Rs. "
	}
	for _, r := range symbol {
		if r > 0xFF && r != '€' && r != '£' {
			return ""
		}
	}
	return tr(symbol)
}
