// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "otp-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "otp-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// AccessTokenTTL is the access token lifetime (e.g. "15m").
	AccessTokenTTL string `mapstructure:"ACCESS_TOKEN_TTL"`
	// RefreshTokenTTL is the refresh token lifetime (e.g. "168h" for 7 days).
	RefreshTokenTTL string `mapstructure:"REFRESH_TOKEN_TTL"`

	// OTPLength is the number of digits in issued codes (default 6).
	OTPLength int `mapstructure:"OTP_LENGTH"`
	// OTPExpiryMinutes is the challenge lifetime in minutes (default 10).
	OTPExpiryMinutes int `mapstructure:"OTP_EXPIRY_MINUTES"`
	// MaxOTPAttempts is the number of failed redemptions before a challenge is dead (default 3).
	MaxOTPAttempts int `mapstructure:"MAX_OTP_ATTEMPTS"`
	// MasterOTPCode is an optional out-of-band code that skips the digit-format check.
	// It still has to match a stored, valid challenge; empty disables it.
	MasterOTPCode string `mapstructure:"MASTER_OTP_CODE"`

	// MailAPIKey is the API key for the transactional mail provider. Empty disables real delivery.
	MailAPIKey string `mapstructure:"MAIL_API_KEY"`
	// MailBaseURL is the mail provider endpoint (default https://api.mailsend.dev/v1/send).
	MailBaseURL string `mapstructure:"MAIL_BASE_URL"`
	// MailSender is the From address for OTP mail.
	MailSender string `mapstructure:"MAIL_SENDER"`

	// OTPReturnToClient when true enables dev OTP mode: codes are kept in memory for
	// GET /dev/otp instead of relying on mail delivery. Must not be true when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. http://localhost:4317). Empty disables telemetry export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// AuditKafkaBrokers is a comma-separated list of Kafka broker addresses
	// (e.g. "localhost:9092"). When set, audit events are also streamed to Kafka.
	AuditKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// AuditKafkaTopic is the Kafka topic for audit events (default otp-auth-audit).
	AuditKafkaTopic string `mapstructure:"AUDIT_KAFKA_TOPIC"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "otp-auth")
	v.SetDefault("JWT_AUDIENCE", "otp-api")
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h") // 7d
	v.SetDefault("OTP_LENGTH", 6)
	v.SetDefault("OTP_EXPIRY_MINUTES", 10)
	v.SetDefault("MAX_OTP_ATTEMPTS", 3)
	v.SetDefault("MASTER_OTP_CODE", "")
	v.SetDefault("MAIL_API_KEY", "")
	v.SetDefault("MAIL_BASE_URL", "https://api.mailsend.dev/v1/send")
	v.SetDefault("MAIL_SENDER", "no-reply@localhost")
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("AUDIT_KAFKA_TOPIC", "otp-auth-audit")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.OTPReturnToClient && cfg.Env == "production" {
		return nil, errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}

	if cfg.OTPLength < 4 || cfg.OTPLength > 10 {
		return nil, errors.New("config: OTP_LENGTH must be between 4 and 10")
	}
	if cfg.OTPExpiryMinutes <= 0 {
		return nil, errors.New("config: OTP_EXPIRY_MINUTES must be positive")
	}
	if cfg.MaxOTPAttempts <= 0 {
		return nil, errors.New("config: MAX_OTP_ATTEMPTS must be positive")
	}

	return &cfg, nil
}

// AccessTTL parses AccessTokenTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.AccessTokenTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// RefreshTTL parses RefreshTokenTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.RefreshTokenTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// OTPExpiry returns the challenge TTL as a duration.
func (c *Config) OTPExpiry() time.Duration {
	if c.OTPExpiryMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.OTPExpiryMinutes) * time.Minute
}

// AuditKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if the audit stream is enabled (non-empty list) and to create the producer.
func (c *Config) AuditKafkaBrokersList() []string {
	if c == nil || c.AuditKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.AuditKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
