package interfaces

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"amc-reconcile/internal/reconciliation/application"
)

const (
	paidFillColor = "52E618"
	dateFillColor = "FFFF00"
)

// BuildReportXLSX renders the payment status, quarter summary and schedule sheets.
// Paid rows have their status cell filled green and their payment date yellow.
func BuildReportXLSX(report *application.Report, columns []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	paidStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{paidFillColor}},
	})
	if err != nil {
		return nil, err
	}
	dateStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{dateFillColor}},
	})
	if err != nil {
		return nil, err
	}

	payment := report.PaymentStatusTable()
	if err := f.SetSheetName("Sheet1", payment.Name); err != nil {
		return nil, err
	}
	if err := writeSheet(f, payment, application.ColumnStatus, paidStyle, dateStyle); err != nil {
		return nil, err
	}

	summary := report.QuarterSummaryTable()
	if _, err := f.NewSheet(summary.Name); err != nil {
		return nil, err
	}
	if err := writeSheet(f, summary, application.ColumnPaymentStatus, paidStyle, dateStyle); err != nil {
		return nil, err
	}

	schedule := report.ScheduleTable().Select(columns...)
	if _, err := f.NewSheet(schedule.Name); err != nil {
		return nil, err
	}
	if err := writeSheet(f, schedule, "", 0, 0); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeSheet writes a header row and the table rows. When statusColumn is set,
// rows whose status is PAID get the status and payment date styles.
func writeSheet(f *excelize.File, t application.Table, statusColumn string, statusStyle, dateStyle int) error {
	header := make([]any, len(t.Columns))
	for i, column := range t.Columns {
		header[i] = column
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return err
	}

	statusIdx, dateIdx := -1, -1
	if statusColumn != "" {
		statusIdx = t.ColumnIndex(statusColumn)
		dateIdx = t.ColumnIndex(application.ColumnPaymentDate)
	}
	for i, row := range t.Rows {
		rowNum := i + 2
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
			return err
		}
		if statusIdx < 0 || statusIdx >= len(row) || row[statusIdx] != "PAID" {
			continue
		}
		if err := styleCell(f, t.Name, statusIdx+1, rowNum, statusStyle); err != nil {
			return err
		}
		if dateIdx >= 0 {
			if err := styleCell(f, t.Name, dateIdx+1, rowNum, dateStyle); err != nil {
				return err
			}
		}
	}
	return nil
}

func styleCell(f *excelize.File, sheet string, col, row, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}
