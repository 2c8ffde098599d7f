package main

import (
	"log/slog"
	"os"

	"propdesk/internal/authn"
	"propdesk/internal/config"
	"propdesk/internal/database"
	"propdesk/internal/handlers"
	"propdesk/internal/mailer"
	"propdesk/internal/payments"
	"propdesk/internal/server"
	"propdesk/internal/services"
	"propdesk/internal/storage"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg := config.Load()

	db, err := database.Connect(cfg.DBDSN, log)
	if err != nil {
		log.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		log.Error("failed to migrate", "err", err)
		os.Exit(1)
	}
	database.Seed(db, cfg.AdminEmail, cfg.AdminPassword, log)

	audit := database.NewAuditRecorder(db)
	verifier := authn.NewVerifier(cfg.IdentityJWTSecret, cfg.IdentityIssuer)
	pay := payments.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom, log)
	store := storage.NewLocalFS(cfg.StorageRoot, cfg.StorageBaseURL)

	profiles := services.NewProfileService(db, audit, log)
	lifecycle := services.NewJobLifecycleService(db, audit, log)
	custody := services.NewKeyCustodyService(db, audit, log)
	invoices := services.NewInvoiceService(db, pay, mail, audit, log)

	r := server.NewRouter(cfg, server.Deps{
		Profiles: profiles,
		Verifier: verifier,

		Auth:        handlers.NewAuthHandler(profiles, verifier),
		JobActivity: handlers.NewJobActivityHandler(lifecycle),
		Jobs:        handlers.NewJobsHandler(db, audit),
		Keys:        handlers.NewKeysHandler(db, custody),
		Properties:  handlers.NewPropertiesHandler(db),
		Invoices:    handlers.NewInvoicesHandler(invoices, pay),
		Uploads:     handlers.NewUploadsHandler(store),
		ProfileOps:  handlers.NewProfilesHandler(profiles),
		Audit:       handlers.NewAuditHandler(db),
	})

	addr := ":" + cfg.ServerPort
	log.Info("starting server", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Error("server error", "err", err)
		os.Exit(1)
	}
}
