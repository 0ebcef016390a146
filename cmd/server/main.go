package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditlog "hrms-platform/backend/internal/audit"
	auditrepo "hrms-platform/backend/internal/audit/repository"
	authhandler "hrms-platform/backend/internal/auth/handler"
	authservice "hrms-platform/backend/internal/auth/service"
	"hrms-platform/backend/internal/config"
	customerrepo "hrms-platform/backend/internal/customer/repository"
	"hrms-platform/backend/internal/db"
	employeerepo "hrms-platform/backend/internal/employee/repository"
	healthhandler "hrms-platform/backend/internal/health/handler"
	identityservice "hrms-platform/backend/internal/identity/service"
	presencerepo "hrms-platform/backend/internal/presence/repository"
	presenceservice "hrms-platform/backend/internal/presence/service"
	"hrms-platform/backend/internal/security"
	"hrms-platform/backend/internal/server"
	sessionrepo "hrms-platform/backend/internal/session/repository"
	"hrms-platform/backend/internal/telemetry"
	"hrms-platform/backend/internal/telemetry/otel"
	"hrms-platform/backend/internal/telemetry/producer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "hrms-auth", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	signer, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.Fatalf("JWT_PRIVATE_KEY: %v", err)
	}
	pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("JWT_PUBLIC_KEY: %v", err)
	}
	tokens := security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	employees := employeerepo.NewPostgresRepository(conn)
	customers := customerrepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRepository(conn)
	presence := presencerepo.NewPostgresRepository(conn)
	audits := auditrepo.NewPostgresRepository(conn)

	// Audit entries stream to Kafka when brokers are configured, otherwise to
	// the OTel log pipeline.
	var emitter telemetry.EventEmitter
	kafkaProducer, err := producer.NewKafkaProducer(cfg.AuditKafkaBrokersList(), cfg.AuditKafkaTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	if kafkaProducer != nil {
		defer kafkaProducer.Close()
		emitter = kafkaProducer
	} else {
		emitter = otel.NewEventEmitter(providers.LoggerProvider)
	}
	auditor := auditlog.NewLogger(audits, emitter)

	resolver := identityservice.NewResolver(employees, customers)
	authSvc := authservice.NewAuthService(resolver, sessions, presence, employees, customers, hasher, tokens, auditor, cfg.RefreshTTL())
	presenceSvc := presenceservice.NewPresenceService(presence, auditor)

	router := server.NewRouter(server.Deps{
		Auth: authhandler.NewAuthHandler(authSvc, authhandler.CookieConfig{
			Path:     cfg.CookiePath,
			Secure:   cfg.CookieSecure,
			SameSite: authhandler.ParseSameSite(cfg.CookieSameSite),
		}),
		Presence: authhandler.NewPresenceHandler(presenceSvc),
		Tokens:   tokens,
		Health:   healthhandler.NewHandler(conn),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
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

	// Give in-flight async audit emits time to land before tearing down OTel.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
