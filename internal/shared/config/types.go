package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	Timezone       string   `mapstructure:"timezone"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// BillingConfig holds subscription billing parameters.
type BillingConfig struct {
	// GracePeriodDays is how long premium access is preserved after a failed
	// renewal payment while the gateway retries.
	GracePeriodDays int `mapstructure:"grace_period_days"`
	// WebhookSecrets maps gateway name to the shared secret used to verify
	// webhook signatures.
	WebhookSecrets map[string]string `mapstructure:"webhook_secrets"`
	Currency       string            `mapstructure:"currency"`
}

// PayoutConfig holds revenue attribution and settlement parameters.
type PayoutConfig struct {
	// CreatorSharePercent is the default creator split applied to daily
	// revenue entries (0-100).
	CreatorSharePercent int `mapstructure:"creator_share_percent"`
	// PremiumRateCents is the revenue credited per gated premium view.
	PremiumRateCents int64 `mapstructure:"premium_rate_cents"`
	// PlatformFeePercent is deducted from gross creator revenue at settlement.
	PlatformFeePercent int `mapstructure:"platform_fee_percent"`
	// GatewayFeeFlatCents is the flat per-payout gateway charge.
	GatewayFeeFlatCents int64 `mapstructure:"gateway_fee_flat_cents"`
	// TaxWithholdingPercent is withheld from gross creator revenue.
	TaxWithholdingPercent int `mapstructure:"tax_withholding_percent"`
	// MinimumPayoutCents below which settlement is deferred to the next period.
	MinimumPayoutCents int64  `mapstructure:"minimum_payout_cents"`
	Currency           string `mapstructure:"currency"`
}
