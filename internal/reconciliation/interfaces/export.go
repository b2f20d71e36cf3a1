package interfaces

import (
	"errors"
	"fmt"
	"strings"

	"amc-reconcile/internal/reconciliation/application"
)

// ErrUnknownFormat is returned for an export format without a renderer.
var ErrUnknownFormat = errors.New("export: unknown format")

// Format names an export renderer.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatXLSX, FormatPDF, FormatCSV, FormatJSON}

// ParseFormat normalizes a format name such as "XLSX" or ".pdf".
func ParseFormat(value string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), "."))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, value)
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// Render produces the report in the given format. Columns restrict the schedule
// view; an empty list keeps every column.
func Render(report *application.Report, format Format, columns []string) ([]byte, error) {
	if report == nil {
		return nil, errors.New("export: nil report")
	}
	switch format {
	case FormatXLSX:
		return BuildReportXLSX(report, columns)
	case FormatPDF:
		return BuildReportPDF(report)
	case FormatCSV:
		return BuildReportCSV(report, columns)
	case FormatJSON:
		return BuildReportJSON(report, columns)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ParseColumns splits a comma separated column list, dropping blanks.
func ParseColumns(value string) []string {
	var columns []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			columns = append(columns, part)
		}
	}
	return columns
}
