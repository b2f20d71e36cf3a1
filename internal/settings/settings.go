package settings

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	reconciliation "amc-reconcile/internal/reconciliation/domain"
)

const (
	defaultGSTRate        = 0.18
	defaultCurrencySymbol = "₹"
	defaultReportTitle    = "AMC Payment Report"
)

// Override holds per-portfolio settings.
type Override struct {
	GSTRate     *float64 `yaml:"gst_rate"`
	CompanyName string   `yaml:"company_name"`
}

// Settings configures reconciliation and report rendering.
type Settings struct {
	GSTRate        float64             `yaml:"gst_rate" json:"gstRate"`
	CurrencySymbol string              `yaml:"currency_symbol" json:"currencySymbol"`
	CompanyName    string              `yaml:"company_name" json:"companyName,omitempty"`
	ReportTitle    string              `yaml:"report_title" json:"reportTitle"`
	FilePrefix     string              `yaml:"file_prefix" json:"filePrefix,omitempty"`
	Portfolios     map[string]Override `yaml:"portfolios" json:"-"`
}

// Defaults returns settings used when no file is configured.
func Defaults() Settings {
	return Settings{
		GSTRate:        defaultGSTRate,
		CurrencySymbol: defaultCurrencySymbol,
		ReportTitle:    defaultReportTitle,
	}
}

// LoadConfig loads settings from the yaml file named by AMC_SETTINGS, then applies
// env overrides.
func LoadConfig() (Settings, error) {
	cfg, err := Load(os.Getenv("AMC_SETTINGS"))
	if err != nil {
		return cfg, err
	}
	if value := os.Getenv("AMC_GST_RATE"); value != "" {
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return cfg, fmt.Errorf("settings: AMC_GST_RATE: %w", err)
		}
		cfg.GSTRate = rate
	}
	if value := os.Getenv("AMC_CURRENCY_SYMBOL"); value != "" {
		cfg.CurrencySymbol = value
	}
	return cfg, cfg.Validate()
}

// Load reads settings from path over the defaults. An empty path returns the defaults.
func Load(path string) (Settings, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	if cfg.ReportTitle == "" {
		cfg.ReportTitle = defaultReportTitle
	}
	return cfg, cfg.Validate()
}

// Validate rejects rates that would divide by zero or flip signs.
func (s Settings) Validate() error {
	if _, err := reconciliation.TaxRateFromFloat(s.GSTRate); err != nil {
		return err
	}
	for id, override := range s.Portfolios {
		if id == "" {
			return errors.New("settings: empty portfolio id")
		}
		if override.GSTRate == nil {
			continue
		}
		if _, err := reconciliation.TaxRateFromFloat(*override.GSTRate); err != nil {
			return fmt.Errorf("settings: portfolio %s: %w", id, err)
		}
	}
	return nil
}

// ForPortfolio returns settings with the portfolio override applied.
func (s Settings) ForPortfolio(portfolioID string) Settings {
	out := s
	out.Portfolios = nil
	if override, ok := s.Portfolios[portfolioID]; ok {
		if override.GSTRate != nil {
			out.GSTRate = *override.GSTRate
		}
		if override.CompanyName != "" {
			out.CompanyName = override.CompanyName
		}
	}
	return out
}

// TaxRate returns the GST rate as a decimal.
func (s Settings) TaxRate() (decimal.Decimal, error) {
	return reconciliation.TaxRateFromFloat(s.GSTRate)
}
