package reconciliation

import (
	"sort"

	"github.com/shopspring/decimal"
)

// QuarterTotal is the summed tax-inclusive amount of one quarter.
type QuarterTotal struct {
	Tag    QuarterTag
	Amount decimal.Decimal
}

// ExtractQuarters returns the record's quarter contributions.
// Fields with a malformed tag are skipped and a missing amount counts as zero.
func ExtractQuarters(record Record) map[QuarterTag]decimal.Decimal {
	out := make(map[QuarterTag]decimal.Decimal, len(record.Quarters))
	for _, field := range record.Quarters {
		tag, err := ParseQuarterTag(field.Tag)
		if err != nil {
			continue
		}
		out[tag] = out[tag].Add(fieldAmount(field))
	}
	return out
}

// AggregateQuarters sums quarter contributions across records.
func AggregateQuarters(records []Record) map[QuarterTag]decimal.Decimal {
	totals := make(map[QuarterTag]decimal.Decimal)
	for _, record := range records {
		for tag, amount := range ExtractQuarters(record) {
			totals[tag] = totals[tag].Add(amount)
		}
	}
	return totals
}

// OrderQuarters returns the totals in chronological order.
func OrderQuarters(totals map[QuarterTag]decimal.Decimal) []QuarterTotal {
	ordered := make([]QuarterTotal, 0, len(totals))
	for tag, amount := range totals {
		ordered = append(ordered, QuarterTotal{Tag: tag, Amount: amount})
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Tag.Before(ordered[j].Tag)
	})
	return ordered
}

func fieldAmount(field QuarterField) decimal.Decimal {
	if !field.Amount.Valid {
		return decimal.Zero
	}
	return field.Amount.Decimal
}
