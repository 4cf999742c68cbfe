// Server runs the OTP auth HTTP API. Configuration comes from the environment
// and an optional .env file; see internal/config.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"otp-auth-service/internal/admin"
	"otp-auth-service/internal/audit"
	auditrepo "otp-auth-service/internal/audit/repository"
	"otp-auth-service/internal/auth"
	"otp-auth-service/internal/config"
	"otp-auth-service/internal/db"
	"otp-auth-service/internal/devotp"
	"otp-auth-service/internal/mail"
	"otp-auth-service/internal/otp"
	otprepo "otp-auth-service/internal/otp/repository"
	"otp-auth-service/internal/security"
	"otp-auth-service/internal/server"
	"otp-auth-service/internal/session"
	sessionrepo "otp-auth-service/internal/session/repository"
	"otp-auth-service/internal/telemetry/otel"
	userrepo "otp-auth-service/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "otp-auth-service", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("JWT_PRIVATE_KEY: %v", err)
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("JWT_PUBLIC_KEY: %v", err)
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())

	users := userrepo.NewPostgresRepository(conn)
	challenges := otprepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRepository(conn)
	auditLogs := auditrepo.NewPostgresRepository(conn)

	var sender mail.Sender = mail.LogSender{}
	if cfg.MailAPIKey != "" {
		sender = mail.NewAPIClient(cfg.MailAPIKey, cfg.MailBaseURL, cfg.MailSender)
	}

	var devStore devotp.Store
	if cfg.OTPReturnToClient {
		devStore = devotp.NewMemoryStore()
		log.Println("dev OTP mode enabled: plaintext codes are retained in memory")
	}

	producer := audit.NewKafkaProducer(cfg.AuditKafkaBrokersList(), cfg.AuditKafkaTopic)
	var streamProducer audit.Producer
	if producer != nil {
		streamProducer = producer
		defer producer.Close()
	}
	auditor := audit.NewLogger(auditLogs, server.GetClientIP, streamProducer)

	codes := otp.NewManager(challenges, users, sender, devStore, otp.Config{
		CodeLength:  cfg.OTPLength,
		TTL:         cfg.OTPExpiry(),
		MaxAttempts: cfg.MaxOTPAttempts,
		MasterCode:  cfg.MasterOTPCode,
	})
	sessionManager := session.NewManager(sessions)
	authService := auth.NewService(codes, users, sessionManager, tokens, auditor)
	adminService := admin.NewService(users, sessionManager, auditor)

	router := server.NewRouter(server.Deps{
		Auth:         authService,
		Admin:        adminService,
		Tokens:       tokens,
		Users:        users,
		HealthPinger: conn,
		DevOTP:       devStore,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight async audit emits drain before closing the producer and
	// telemetry providers.
	time.Sleep(audit.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
