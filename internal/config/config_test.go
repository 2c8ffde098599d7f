package config

import "testing"

func setRequiredEnvs(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DSN", "host=localhost user=propdesk dbname=propdesk")
	t.Setenv("SESSION_SECRET", "session-secret")
	t.Setenv("IDP_JWT_SECRET", "idp-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnvs(t)

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.IdentityIssuer != "propdesk-idp" {
		t.Errorf("IdentityIssuer = %q, want propdesk-idp", cfg.IdentityIssuer)
	}
	if cfg.SMTPPort != 587 {
		t.Errorf("SMTPPort = %d, want 587", cfg.SMTPPort)
	}
	if cfg.StorageRoot != "./data/uploads" {
		t.Errorf("StorageRoot = %q", cfg.StorageRoot)
	}
	if cfg.StorageBaseURL != "/uploads" {
		t.Errorf("StorageBaseURL = %q", cfg.StorageBaseURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnvs(t)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("IDP_ISSUER", "https://auth.example.com/")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")

	cfg := Load()

	if cfg.ServerPort != "9100" {
		t.Errorf("ServerPort = %q, want 9100", cfg.ServerPort)
	}
	if cfg.SMTPPort != 2525 {
		t.Errorf("SMTPPort = %d, want 2525", cfg.SMTPPort)
	}
	if cfg.IdentityIssuer != "https://auth.example.com/" {
		t.Errorf("IdentityIssuer = %q", cfg.IdentityIssuer)
	}
	if cfg.StripeSecretKey != "sk_test_123" {
		t.Errorf("StripeSecretKey = %q", cfg.StripeSecretKey)
	}
}

func TestLoadBadSMTPPortFallsBack(t *testing.T) {
	setRequiredEnvs(t)
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg := Load()
	if cfg.SMTPPort != 587 {
		t.Errorf("SMTPPort = %d, want fallback 587", cfg.SMTPPort)
	}
}
