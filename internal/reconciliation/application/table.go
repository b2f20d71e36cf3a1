package application

import (
	"bytes"
	"encoding/json"
)

// Column names shared by every renderer.
const (
	ColumnProductName  = "Product Name"
	ColumnLocation     = "Location"
	ColumnInvoiceValue = "Invoice Value"
	ColumnQuantity     = "Quantity"
	ColumnAMCStartDate = "AMC Start Date"
	ColumnUATDate      = "UAT Date"

	ColumnQuarter          = "Quarter"
	ColumnAmountWithGST    = "Amount (With GST)"
	ColumnAmountWithoutGST = "Amount (Without GST)"
	ColumnPaymentStatus    = "Payment Status"
	ColumnPaymentDate      = "Payment Date"

	ColumnAmount      = "Amount"
	ColumnStatus      = "Status"
	ColumnDaysOverdue = "Days Overdue"

	ColumnSetting = "Setting"
	ColumnMetric  = "Metric"
	ColumnValue   = "Value"
)

// Table is a named grid of cells. Cells hold string, int, float64 or nil for an empty cell.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// ColumnIndex returns the position of name or -1.
func (t Table) ColumnIndex(name string) int {
	for i, column := range t.Columns {
		if column == name {
			return i
		}
	}
	return -1
}

// Select returns a table restricted to the named columns in the requested order.
// Unknown names are skipped. With no names the table is returned unchanged.
func (t Table) Select(columns ...string) Table {
	if len(columns) == 0 {
		return t
	}
	var idx []int
	out := Table{Name: t.Name}
	for _, name := range columns {
		i := t.ColumnIndex(name)
		if i < 0 {
			continue
		}
		idx = append(idx, i)
		out.Columns = append(out.Columns, name)
	}
	out.Rows = make([][]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		selected := make([]any, len(idx))
		for j, i := range idx {
			if i < len(row) {
				selected[j] = row[i]
			}
		}
		out.Rows = append(out.Rows, selected)
	}
	return out
}

// Objects returns rows as JSON objects with keys in column order.
func (t Table) Objects() []OrderedObject {
	out := make([]OrderedObject, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, OrderedObject{keys: t.Columns, values: row})
	}
	return out
}

// OrderedObject marshals as a JSON object preserving key order.
type OrderedObject struct {
	keys   []string
	values []any
}

// MarshalJSON implements json.Marshaler.
func (o OrderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		var value any
		if i < len(o.values) {
			value = o.values[i]
		}
		v, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
