package fileimport

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	reconciliation "amc-reconcile/internal/reconciliation/domain"
)

// LoadLedger reads a ledger from a .json, .yaml or .yml file.
func LoadLedger(path string) (reconciliation.Ledger, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadLedgerJSON(file)
	case ".yaml", ".yml":
		return ReadLedgerYAML(file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadLedgerJSON parses {"JFM-2024": {"paid": true, "date": "..."}}.
func ReadLedgerJSON(r io.Reader) (reconciliation.Ledger, error) {
	ledger := make(reconciliation.Ledger)
	if err := json.NewDecoder(r).Decode(&ledger); err != nil {
		if err == io.EOF {
			return ledger, nil
		}
		return nil, fmt.Errorf("fileimport: ledger: %w", err)
	}
	return ledger, nil
}

// ReadLedgerYAML parses the same shape as ReadLedgerJSON written as YAML.
func ReadLedgerYAML(r io.Reader) (reconciliation.Ledger, error) {
	ledger := make(reconciliation.Ledger)
	if err := yaml.NewDecoder(r).Decode(&ledger); err != nil {
		if err == io.EOF {
			return ledger, nil
		}
		return nil, fmt.Errorf("fileimport: ledger: %w", err)
	}
	return ledger, nil
}
