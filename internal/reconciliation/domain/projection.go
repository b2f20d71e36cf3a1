package reconciliation

import "github.com/shopspring/decimal"

// ScheduleRow is the flat per-record view used for detailed schedules.
type ScheduleRow struct {
	RecordID     string
	ProductName  string
	Location     string
	InvoiceValue decimal.Decimal
	Quantity     int
	AMCStartDate string
	UATDate      string
	Quarters     []QuarterAmount
}

// Amount returns the row's amount for tag.
func (r ScheduleRow) Amount(tag QuarterTag) (decimal.Decimal, bool) {
	for _, q := range r.Quarters {
		if q.Tag == tag {
			return q.Amount, true
		}
	}
	return decimal.Zero, false
}

// ProjectRecords builds one row per record, keeping the record's own quarter order.
// Repeated tags merge into the first occurrence.
func ProjectRecords(records []Record) []ScheduleRow {
	rows := make([]ScheduleRow, 0, len(records))
	for _, record := range records {
		row := ScheduleRow{
			RecordID:     record.ID,
			ProductName:  record.ProductName,
			Location:     record.Location,
			InvoiceValue: record.InvoiceValue,
			Quantity:     record.Quantity,
			AMCStartDate: record.AMCStartDate,
			UATDate:      record.UATDate,
		}
		index := make(map[QuarterTag]int)
		for _, field := range record.Quarters {
			tag, err := ParseQuarterTag(field.Tag)
			if err != nil {
				continue
			}
			if i, ok := index[tag]; ok {
				row.Quarters[i].Amount = row.Quarters[i].Amount.Add(fieldAmount(field))
				continue
			}
			index[tag] = len(row.Quarters)
			row.Quarters = append(row.Quarters, QuarterAmount{Tag: tag, Amount: fieldAmount(field)})
		}
		rows = append(rows, row)
	}
	return rows
}

// QuarterColumns returns the union of tags across rows in chronological order.
func QuarterColumns(rows []ScheduleRow) []QuarterTag {
	seen := make(map[QuarterTag]decimal.Decimal)
	for _, row := range rows {
		for _, q := range row.Quarters {
			seen[q.Tag] = decimal.Zero
		}
	}
	ordered := OrderQuarters(seen)
	tags := make([]QuarterTag, 0, len(ordered))
	for _, q := range ordered {
		tags = append(tags, q.Tag)
	}
	return tags
}
