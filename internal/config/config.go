package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string
	ServerPort    string
	SessionSecret string

	// identity provider (token exchange for subject id + role claim)
	IdentityJWTSecret string
	IdentityIssuer    string

	// payment provider
	StripeSecretKey     string
	StripeWebhookSecret string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	// outbound email; delivery is skipped when SMTPHost is empty
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	// object storage for uploads
	StorageRoot    string
	StorageBaseURL string

	AdminEmail    string
	AdminPassword string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),

		IdentityJWTSecret: os.Getenv("IDP_JWT_SECRET"),
		IdentityIssuer:    os.Getenv("IDP_ISSUER"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		CheckoutSuccessURL:  os.Getenv("CHECKOUT_SUCCESS_URL"),
		CheckoutCancelURL:   os.Getenv("CHECKOUT_CANCEL_URL"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     os.Getenv("MAIL_FROM"),

		StorageRoot:    os.Getenv("STORAGE_ROOT"),
		StorageBaseURL: os.Getenv("STORAGE_BASE_URL"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN is not set")
	}
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}
	if cfg.IdentityJWTSecret == "" {
		log.Fatal("IDP_JWT_SECRET is not set")
	}

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.IdentityIssuer == "" {
		cfg.IdentityIssuer = "propdesk-idp"
	}
	cfg.SMTPPort = 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.SMTPPort = p
		}
	}
	if cfg.StorageRoot == "" {
		cfg.StorageRoot = "./data/uploads"
	}
	if cfg.StorageBaseURL == "" {
		cfg.StorageBaseURL = "/uploads"
	}
	if cfg.CheckoutSuccessURL == "" {
		cfg.CheckoutSuccessURL = "http://localhost:" + cfg.ServerPort + "/invoices/paid"
	}
	if cfg.CheckoutCancelURL == "" {
		cfg.CheckoutCancelURL = "http://localhost:" + cfg.ServerPort + "/invoices"
	}

	return cfg
}
