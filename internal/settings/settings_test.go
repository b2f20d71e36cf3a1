package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	reconciliation "amc-reconcile/internal/reconciliation/domain"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GSTRate != 0.18 || cfg.FilePrefix != "" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadWithPortfolioOverride(t *testing.T) {
	path := writeFile(t, `
gst_rate: 0.12
currency_symbol: "Rs."
company_name: Acme Facilities
portfolios:
  hospital-east:
    gst_rate: 0
    company_name: East Wing
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GSTRate != 0.12 || cfg.CurrencySymbol != "Rs." || cfg.ReportTitle != "AMC Payment Report" {
		t.Fatalf("unexpected settings %+v", cfg)
	}
	east := cfg.ForPortfolio("hospital-east")
	if east.GSTRate != 0 || east.CompanyName != "East Wing" {
		t.Fatalf("override not applied: %+v", east)
	}
	other := cfg.ForPortfolio("other")
	if other.GSTRate != 0.12 || other.CompanyName != "Acme Facilities" {
		t.Fatalf("unexpected fallback %+v", other)
	}
}

func TestLoadRejectsInvalidRate(t *testing.T) {
	path := writeFile(t, "gst_rate: -1\n")
	_, err := Load(path)
	if !errors.Is(err, reconciliation.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("AMC_SETTINGS", "")
	t.Setenv("AMC_GST_RATE", "0.05")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.GSTRate != 0.05 {
		t.Fatalf("expected env rate 0.05, got %v", cfg.GSTRate)
	}
}
