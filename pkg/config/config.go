package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Env var names used by tests and deploy manifests.
const (
	EnvAppEnv            = "KOPITERA_APP_ENV"
	EnvPort              = "KOPITERA_APP_PORT"
	EnvRedisURL          = "KOPITERA_REDIS_URL"
	EnvStorefrontBaseURL = "KOPITERA_STOREFRONT_BASE_URL"
	EnvMidtransServerKey = "KOPITERA_MIDTRANS_SERVER_KEY"
)

type Config struct {
	App        AppConfig
	Storefront StorefrontConfig
	Redis      RedisConfig
	Checkout   CheckoutConfig
	Midtrans   MidtransConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if _, err := cfg.Checkout.ServiceFeeRate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KOPITERA_APP_ENV" required:"true"`
	Port         string `envconfig:"KOPITERA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KOPITERA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KOPITERA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "dev")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "prod")
}

// StorefrontConfig points at the storefront REST backend that owns the
// product catalog, promotion catalog, and order persistence.
type StorefrontConfig struct {
	BaseURL string        `envconfig:"KOPITERA_STOREFRONT_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"KOPITERA_STOREFRONT_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KOPITERA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KOPITERA_REDIS_ADDR"`
	Password     string        `envconfig:"KOPITERA_REDIS_PASSWORD"`
	DB           int           `envconfig:"KOPITERA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KOPITERA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KOPITERA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KOPITERA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KOPITERA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KOPITERA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CheckoutConfig struct {
	// ServiceFeeRateBP is the percentage service fee in basis points
	// (250 = 2.5%).
	ServiceFeeRateBP  int           `envconfig:"KOPITERA_SERVICE_FEE_RATE_BP" default:"250"`
	ServiceFeeMinimum int64         `envconfig:"KOPITERA_SERVICE_FEE_MINIMUM" default:"2000"`
	SessionTTL        time.Duration `envconfig:"KOPITERA_CHECKOUT_SESSION_TTL" default:"24h"`
	ContinuityTTL     time.Duration `envconfig:"KOPITERA_CHECKOUT_CONTINUITY_TTL" default:"72h"`
}

// ServiceFeeRate converts the configured basis points into a decimal fraction.
func (c CheckoutConfig) ServiceFeeRate() (decimal.Decimal, error) {
	if c.ServiceFeeRateBP < 0 || c.ServiceFeeRateBP > 10000 {
		return decimal.Zero, fmt.Errorf("service fee rate %d out of range [0,10000] basis points", c.ServiceFeeRateBP)
	}
	return decimal.NewFromInt(int64(c.ServiceFeeRateBP)).Div(decimal.NewFromInt(10000)), nil
}

type MidtransConfig struct {
	ServerKey string `envconfig:"KOPITERA_MIDTRANS_SERVER_KEY" required:"true"`
	Env       string `envconfig:"KOPITERA_MIDTRANS_ENV" default:"sandbox"`
}

// Environment returns the normalized Midtrans environment (sandbox/production).
func (m MidtransConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(m.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}
