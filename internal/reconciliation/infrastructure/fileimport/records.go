package fileimport

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	reconciliation "amc-reconcile/internal/reconciliation/domain"
)

// ErrUnsupportedFormat is returned for file extensions without a reader.
var ErrUnsupportedFormat = errors.New("fileimport: unsupported format")

type recordField int

const (
	fieldUnknown recordField = iota
	fieldID
	fieldProductName
	fieldLocation
	fieldInvoiceValue
	fieldQuantity
	fieldAMCStartDate
	fieldUATDate
)

// Keys are matched case-insensitively with spaces, dashes and underscores removed,
// so "productName", "Product Name" and "product_name" are the same column.
var fieldAliases = map[string]recordField{
	"id":           fieldID,
	"recordid":     fieldID,
	"productname":  fieldProductName,
	"product":      fieldProductName,
	"location":     fieldLocation,
	"invoicevalue": fieldInvoiceValue,
	"quantity":     fieldQuantity,
	"qty":          fieldQuantity,
	"amcstartdate": fieldAMCStartDate,
	"uatdate":      fieldUATDate,
}

func lookupField(key string) recordField {
	normalized := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(key)))
	return fieldAliases[normalized]
}

// LoadRecords reads records from a .json, .csv or .xlsx file.
func LoadRecords(path string) ([]reconciliation.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadRecordsJSON(file)
	case ".csv":
		return ReadRecordsCSV(file)
	case ".xlsx":
		return ReadRecordsXLSX(file, "")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadRecordsJSON parses an array of flat record objects. Key order is kept so that
// quarter fields appear in the order they were written.
func ReadRecordsJSON(r io.Reader) ([]reconciliation.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	var records []reconciliation.Record
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		rec := reconciliation.Record{}
		quarterAt := map[string]int{}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := tok.(string)
			if !ok {
				return nil, fmt.Errorf("fileimport: expected object key, got %v", tok)
			}
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("fileimport: field %q: %w", key, err)
			}
			n := len(rec.Quarters)
			applyField(&rec, key, jsonScalar(raw))
			if len(rec.Quarters) > n {
				keepLastQuarter(&rec, quarterAt, key)
			}
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		records = append(records, finishRecord(rec, len(records)))
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return records, nil
}

// keepLastQuarter folds a repeated quarter key onto its first position. The latest
// value wins, as with a map assignment.
func keepLastQuarter(rec *reconciliation.Record, quarterAt map[string]int, key string) {
	last := len(rec.Quarters) - 1
	if i, ok := quarterAt[key]; ok {
		rec.Quarters[i] = rec.Quarters[last]
		rec.Quarters = rec.Quarters[:last]
		return
	}
	quarterAt[key] = last
}

// ReadRecordsCSV parses a header row followed by one record per line.
func ReadRecordsCSV(r io.Reader) ([]reconciliation.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return recordsFromRows(rows), nil
}

// ReadRecordsXLSX parses the named sheet, or the first sheet when sheet is empty.
func ReadRecordsXLSX(r io.Reader, sheet string) ([]reconciliation.Record, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	}
	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	return recordsFromRows(rows), nil
}

func recordsFromRows(rows [][]string) []reconciliation.Record {
	if len(rows) == 0 {
		return nil
	}
	header := rows[0]
	records := make([]reconciliation.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec := reconciliation.Record{}
		for i, key := range header {
			var cell string
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			var value any
			if cell != "" {
				value = cell
			}
			applyField(&rec, key, value)
		}
		records = append(records, finishRecord(rec, len(records)))
	}
	return records
}

func applyField(rec *reconciliation.Record, key string, value any) {
	key = strings.TrimSpace(key)
	if reconciliation.IsQuarterTag(key) {
		amount, ok := decimalValue(value)
		rec.Quarters = append(rec.Quarters, reconciliation.QuarterField{
			Tag:    key,
			Amount: decimal.NullDecimal{Decimal: amount, Valid: ok},
		})
		return
	}

	switch lookupField(key) {
	case fieldID:
		rec.ID = stringValue(value)
	case fieldProductName:
		rec.ProductName = stringValue(value)
	case fieldLocation:
		rec.Location = stringValue(value)
	case fieldInvoiceValue:
		if amount, ok := decimalValue(value); ok {
			rec.InvoiceValue = amount
		}
	case fieldQuantity:
		if amount, ok := decimalValue(value); ok {
			rec.Quantity = int(amount.IntPart())
		}
	case fieldAMCStartDate:
		rec.AMCStartDate = stringValue(value)
	case fieldUATDate:
		rec.UATDate = stringValue(value)
	}
}

func finishRecord(rec reconciliation.Record, index int) reconciliation.Record {
	if rec.ID == "" {
		rec.ID = "row-" + strconv.Itoa(index+1)
	}
	return rec
}

// jsonScalar turns a raw JSON value into a string, json.Number or nil.
// Objects, arrays and booleans carry no amount and become nil.
func jsonScalar(raw json.RawMessage) any {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return json.Number(trimmed)
	default:
		return nil
	}
}

func decimalValue(value any) (decimal.Decimal, bool) {
	var text string
	switch v := value.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	default:
		return decimal.Zero, false
	}
	if text == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("fileimport: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("fileimport: expected %q, got %v", want, tok)
	}
	return nil
}
