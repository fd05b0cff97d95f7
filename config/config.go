package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

// Config holds the project config values
type Config struct {
	Port        string   `env:"PORT" envDefault:"8000"`
	Environment string   `env:"ENVIRONMENT" envDefault:"development"`
	APIPrefix   string   `env:"API_PREFIX" envDefault:"/api/v1"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	AdminPassword string `env:"ADMIN_PASSWORD,required,notEmpty"`

	SupabaseURL            string `env:"SUPABASE_URL,required,notEmpty"`
	SupabaseServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY,required,notEmpty"`
	SupabaseJWTSecret      string `env:"SUPABASE_JWT_SECRET,required,notEmpty"`

	URL          string `env:"DB_URI,required,notEmpty"`
	DatabaseName string `env:"DB_NAME,required,notEmpty"`

	UsageLogsDatabaseURL string `env:"USAGE_LOGS_DATABASE_URL"`

	SMTPHost    string `env:"SMTP_HOST"`
	SMTPPort    int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser    string `env:"SMTP_USER"`
	SMTPPass    string `env:"SMTP_PASS"`
	SenderEmail string `env:"SENDER_EMAIL"`
	SMTPFrom    string `env:"SMTP_FROM" envDefault:"Helium"`

	EmailProvider      string  `env:"EMAIL_PROVIDER" envDefault:"smtp"`
	SendGridAPIKey     string  `env:"SENDGRID_API_KEY"`
	EmailImagesDir     string  `env:"EMAIL_IMAGES_DIR" envDefault:"static/images"`
	EmailRatePerSecond float64 `env:"EMAIL_RATE_PER_SECOND" envDefault:"5"`

	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`

	HTTPClientTimeout time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"15s"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`

	ArchiveUsedCodesCron        string `env:"ARCHIVE_USED_CODES_CRON"`
	ArchiveNotifiedWaitlistCron string `env:"ARCHIVE_NOTIFIED_WAITLIST_CRON"`
}

var environments = map[string]bool{
	"development": true,
	"staging":     true,
	"production":  true,
}

// New sets up all config related services
func New() (*Config, error) {
	conf := &Config{}
	if err := env.Parse(conf); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	logger, err := setLogger(conf.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	_ = zap.ReplaceGlobals(logger)

	return conf, nil
}

// Validate checks the values that env tags cannot express
func (c *Config) Validate() error {
	if !environments[c.Environment] {
		return fmt.Errorf("invalid ENVIRONMENT %q", c.Environment)
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		return fmt.Errorf("invalid SMTP_PORT %d", c.SMTPPort)
	}
	switch c.EmailProvider {
	case "smtp":
	case "sendgrid":
		if c.SendGridAPIKey == "" {
			return fmt.Errorf("SENDGRID_API_KEY is required when EMAIL_PROVIDER is sendgrid")
		}
	default:
		return fmt.Errorf("invalid EMAIL_PROVIDER %q", c.EmailProvider)
	}
	if c.EmailRatePerSecond <= 0 {
		return fmt.Errorf("EMAIL_RATE_PER_SECOND must be positive")
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("API_PREFIX must start with /")
	}
	return nil
}

// IsProduction reports whether the service runs in the production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
