package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (CHECKOUT_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (CHECKOUT_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Stripe      StripeConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// StripeConfig holds credentials and redirect URLs for the payment gateway.
// Secret and publishable keys are provisioned per currency.
type StripeConfig struct {
	BaseURL           string        `default:"https://api.stripe.com" usage:"Stripe API base URL" flag:"stripe-base-url"`
	SecretKeyUSD      string        `usage:"Stripe secret key for USD charges" flag:"stripe-secret-usd"`
	SecretKeyRUB      string        `usage:"Stripe secret key for RUB charges" flag:"stripe-secret-rub"`
	PublishableKeyUSD string        `usage:"Stripe publishable key for USD" flag:"stripe-publishable-usd"`
	PublishableKeyRUB string        `usage:"Stripe publishable key for RUB" flag:"stripe-publishable-rub"`
	SuccessURL        string        `usage:"Redirect URL after successful payment" flag:"success-url"`
	CancelURL         string        `usage:"Redirect URL after cancelled payment" flag:"cancel-url"`
	Timeout           time.Duration `default:"10s" usage:"Session creation request timeout" flag:"stripe-timeout"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins []string `default:"*" usage:"Allowed CORS origins"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CHECKOUT",
		Files:     []string{"config.yaml", "/etc/checkout/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set CHECKOUT_DATABASE_URL or DATABASE_URL")
	}
	if cfg.Stripe.SecretKeyUSD == "" && cfg.Stripe.SecretKeyRUB == "" {
		return nil, errors.New("at least one Stripe secret key is required")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like DATABASE_URL and PORT to the CHECKOUT_-prefixed
// configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
