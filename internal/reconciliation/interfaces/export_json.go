package interfaces

import (
	"encoding/json"
	"time"

	"amc-reconcile/internal/reconciliation/application"
	"amc-reconcile/internal/settings"
)

type jsonMetadata struct {
	ExportDate    string            `json:"exportDate"`
	PortfolioID   string            `json:"portfolioId,omitempty"`
	Settings      settings.Settings `json:"settings"`
	TotalProducts int               `json:"totalProducts"`
}

type jsonSnapshot struct {
	Metadata       jsonMetadata                `json:"metadata"`
	ScheduleData   []application.OrderedObject `json:"scheduleData"`
	QuarterSummary []application.OrderedObject `json:"quarterSummary"`
	PaymentStatus  []application.OrderedObject `json:"paymentStatus"`
	Settings       []application.OrderedObject `json:"settings"`
}

// BuildReportJSON renders the full snapshot indented by two spaces.
// The output depends only on the report contents, so repeated runs are byte-identical.
func BuildReportJSON(report *application.Report, columns []string) ([]byte, error) {
	snapshot := jsonSnapshot{
		Metadata: jsonMetadata{
			ExportDate:    report.GeneratedAt.UTC().Format(time.RFC3339),
			PortfolioID:   report.PortfolioID,
			Settings:      report.Settings,
			TotalProducts: report.RecordCount,
		},
		ScheduleData:   report.ScheduleTable().Select(columns...).Objects(),
		QuarterSummary: report.QuarterSummaryTable().Objects(),
		PaymentStatus:  report.PaymentStatusTable().Objects(),
		Settings:       report.SettingsTable().Objects(),
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
