package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}

	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}

	if cfg.Storefront.Timeout != 10*time.Second {
		t.Fatalf("expected storefront timeout 10s, got %v", cfg.Storefront.Timeout)
	}

	if cfg.Checkout.ServiceFeeMinimum != 2000 {
		t.Fatalf("expected default minimum fee 2000, got %d", cfg.Checkout.ServiceFeeMinimum)
	}

	rate, err := cfg.Checkout.ServiceFeeRate()
	if err != nil {
		t.Fatalf("ServiceFeeRate() returned error: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("0.025")) {
		t.Fatalf("expected default rate 0.025, got %s", rate)
	}

	if cfg.Midtrans.Environment() != "sandbox" {
		t.Fatalf("expected sandbox midtrans env, got %q", cfg.Midtrans.Environment())
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_FeeRateOutOfRange(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("KOPITERA_SERVICE_FEE_RATE_BP", "20000")

	if _, err := Load(); err == nil {
		t.Fatal("expected out-of-range fee rate to return an error")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvStorefrontBaseURL, "http://localhost:9000")
	t.Setenv(EnvMidtransServerKey, "SB-Mid-server-test")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}
