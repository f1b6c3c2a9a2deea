package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/pharmacy?sslmode=disable",
		"REDIS_URL":    "redis://localhost:6379/0",
		"TAX_RATE":     "",
		"PORT":         "",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.TaxRate.Equal(decimal.RequireFromString("0.08")) {
		t.Fatalf("expected default tax rate 0.08, got %s", cfg.TaxRate)
	}
	if cfg.CurrencyCode != "KES" {
		t.Fatalf("expected default currency KES, got %q", cfg.CurrencyCode)
	}
	if cfg.HTTPAddr() != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.HTTPAddr())
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	if _, err := LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379/0",
	}); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadRejectsNegativeTaxRate(t *testing.T) {
	if _, err := LoadForTests(map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/pharmacy?sslmode=disable",
		"REDIS_URL":    "redis://localhost:6379/0",
		"TAX_RATE":     "-0.05",
	}); err == nil {
		t.Fatal("expected error for negative tax rate")
	}
}
