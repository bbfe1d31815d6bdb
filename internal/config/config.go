package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stwalsh4118/underwriter/internal/underwriting"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	CORS        CORSConfig
	Analysis    AnalysisConfig
	Assumptions underwriting.Assumptions
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port    string
	Env     string
	Storage string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// AnalysisConfig controls deal intake.
type AnalysisConfig struct {
	Delay       time.Duration
	MaxUploadMB int64
}

// MaxUploadBytes is the request body limit for deal submissions.
func (a AnalysisConfig) MaxUploadBytes() int64 {
	return a.MaxUploadMB << 20
}

// assumptionKeys maps expense keys to their environment variable.
var assumptionKeys = map[string]string{
	underwriting.ExpenseManagement:  "ASSUMPTION_EXPENSE_MANAGEMENT",
	underwriting.ExpenseMaintenance: "ASSUMPTION_EXPENSE_MAINTENANCE",
	underwriting.ExpenseTaxes:       "ASSUMPTION_EXPENSE_TAXES",
	underwriting.ExpenseInsurance:   "ASSUMPTION_EXPENSE_INSURANCE",
	underwriting.ExpenseUtilities:   "ASSUMPTION_EXPENSE_UTILITIES",
	underwriting.ExpenseOther:       "ASSUMPTION_EXPENSE_OTHER",
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORAGE", StorageMemory)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "underwriter")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("ANALYSIS_DELAY", "3s")
	v.SetDefault("MAX_UPLOAD_MB", 25)

	defaults := underwriting.DefaultAssumptions()
	v.SetDefault("ASSUMPTION_DOWN_PAYMENT", defaults.DownPayment.String())
	v.SetDefault("ASSUMPTION_INTEREST_RATE", defaults.InterestRate.String())
	v.SetDefault("ASSUMPTION_LOAN_TERM_YEARS", defaults.LoanTermYears)
	v.SetDefault("ASSUMPTION_VACANCY", defaults.Vacancy.String())
	for _, e := range defaults.Expenses {
		v.SetDefault(assumptionKeys[e.Key], e.Rate.String())
	}

	v.AutomaticEnv()

	assumptions, err := loadAssumptions(v, defaults)
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:    v.GetString("PORT"),
			Env:     v.GetString("ENV"),
			Storage: strings.ToLower(v.GetString("STORAGE")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Analysis: AnalysisConfig{
			Delay:       v.GetDuration("ANALYSIS_DELAY"),
			MaxUploadMB: v.GetInt64("MAX_UPLOAD_MB"),
		},
		Assumptions: assumptions,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadAssumptions parses the financial model rates. Rates are fractions
// ("0.065"), not percentages.
func loadAssumptions(v *viper.Viper, defaults underwriting.Assumptions) (underwriting.Assumptions, error) {
	a := defaults

	rate := func(key string) (decimal.Decimal, error) {
		d, err := decimal.NewFromString(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%s must be a decimal fraction: %w", key, err)
		}
		return d, nil
	}

	var err error
	if a.DownPayment, err = rate("ASSUMPTION_DOWN_PAYMENT"); err != nil {
		return a, err
	}
	if a.InterestRate, err = rate("ASSUMPTION_INTEREST_RATE"); err != nil {
		return a, err
	}
	if a.Vacancy, err = rate("ASSUMPTION_VACANCY"); err != nil {
		return a, err
	}
	a.LoanTermYears = v.GetInt("ASSUMPTION_LOAN_TERM_YEARS")

	for _, e := range defaults.Expenses {
		r, err := rate(assumptionKeys[e.Key])
		if err != nil {
			return a, err
		}
		a = a.WithExpenseRate(e.Key, r)
	}

	return a, nil
}

// Validate checks that required configuration is present and valid.
// Database settings are only checked when Postgres storage is selected.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Server.Storage {
	case StorageMemory:
	case StoragePostgres:
		if err := c.Database.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("STORAGE must be %q or %q", StorageMemory, StoragePostgres)
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	if c.Analysis.Delay < 0 {
		return fmt.Errorf("ANALYSIS_DELAY must be non-negative")
	}
	if c.Analysis.MaxUploadMB < 1 {
		return fmt.Errorf("MAX_UPLOAD_MB must be at least 1")
	}

	if err := c.Assumptions.Validate(); err != nil {
		return fmt.Errorf("invalid assumptions: %w", err)
	}

	return nil
}

// Validate checks the PostgreSQL connection settings.
func (d DatabaseConfig) Validate() error {
	if d.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if d.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if d.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if d.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if d.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if d.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if d.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if d.PoolMin > d.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
