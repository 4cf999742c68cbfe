package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.JWTIssuer != "otp-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "otp-auth")
	}
	if cfg.JWTAudience != "otp-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "otp-api")
	}
	if cfg.AccessTokenTTL != "15m" {
		t.Errorf("AccessTokenTTL = %q, want %q", cfg.AccessTokenTTL, "15m")
	}
	if cfg.RefreshTokenTTL != "168h" {
		t.Errorf("RefreshTokenTTL = %q, want %q", cfg.RefreshTokenTTL, "168h")
	}
	if cfg.OTPLength != 6 {
		t.Errorf("OTPLength = %d, want 6", cfg.OTPLength)
	}
	if cfg.OTPExpiryMinutes != 10 {
		t.Errorf("OTPExpiryMinutes = %d, want 10", cfg.OTPExpiryMinutes)
	}
	if cfg.MaxOTPAttempts != 3 {
		t.Errorf("MaxOTPAttempts = %d, want 3", cfg.MaxOTPAttempts)
	}
	if cfg.MasterOTPCode != "" {
		t.Errorf("MasterOTPCode = %q, want empty", cfg.MasterOTPCode)
	}
	if cfg.OTPReturnToClient {
		t.Error("OTPReturnToClient should default to false")
	}
	if cfg.AuditKafkaTopic != "otp-auth-audit" {
		t.Errorf("AuditKafkaTopic = %q, want default", cfg.AuditKafkaTopic)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("OTP_LENGTH", "8")
	os.Setenv("MAX_OTP_ATTEMPTS", "5")
	os.Setenv("MASTER_OTP_CODE", "424242")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.OTPLength != 8 {
		t.Errorf("OTPLength = %d, want 8", cfg.OTPLength)
	}
	if cfg.MaxOTPAttempts != 5 {
		t.Errorf("MaxOTPAttempts = %d, want 5", cfg.MaxOTPAttempts)
	}
	if cfg.MasterOTPCode != "424242" {
		t.Errorf("MasterOTPCode = %q, want %q", cfg.MasterOTPCode, "424242")
	}
}

func TestLoad_DevOTPRefusedInProduction(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("APP_ENV", "production")
	os.Setenv("OTP_RETURN_TO_CLIENT", "true")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail when dev OTP mode is enabled in production")
	}
}

func TestLoad_InvalidOTPLength(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("OTP_LENGTH", "2")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail for OTP_LENGTH below 4")
	}
}

func TestTTLHelpers(t *testing.T) {
	cfg := &Config{AccessTokenTTL: "30m", RefreshTokenTTL: "72h", OTPExpiryMinutes: 5}
	if got := cfg.AccessTTL(); got != 30*time.Minute {
		t.Errorf("AccessTTL = %v, want 30m", got)
	}
	if got := cfg.RefreshTTL(); got != 72*time.Hour {
		t.Errorf("RefreshTTL = %v, want 72h", got)
	}
	if got := cfg.OTPExpiry(); got != 5*time.Minute {
		t.Errorf("OTPExpiry = %v, want 5m", got)
	}

	bad := &Config{AccessTokenTTL: "bogus", RefreshTokenTTL: ""}
	if got := bad.AccessTTL(); got != 15*time.Minute {
		t.Errorf("AccessTTL fallback = %v, want 15m", got)
	}
	if got := bad.RefreshTTL(); got != 168*time.Hour {
		t.Errorf("RefreshTTL fallback = %v, want 168h", got)
	}
}

func TestAuditKafkaBrokersList(t *testing.T) {
	cfg := &Config{AuditKafkaBrokers: "localhost:9092, broker2:9092 ,"}
	got := cfg.AuditKafkaBrokersList()
	if len(got) != 2 || got[0] != "localhost:9092" || got[1] != "broker2:9092" {
		t.Errorf("AuditKafkaBrokersList = %v", got)
	}
	empty := &Config{}
	if got := empty.AuditKafkaBrokersList(); got != nil {
		t.Errorf("empty brokers should return nil, got %v", got)
	}
}
