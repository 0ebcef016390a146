// Worker runs the session reconciliation loop and, when Kafka is configured,
// forwards audit entries from Kafka to Loki.
// Requires DATABASE_URL. Set KAFKA_BROKERS, AUDIT_KAFKA_TOPIC, KAFKA_GROUP_ID,
// and LOKI_URL to enable audit forwarding.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	auditlog "hrms-platform/backend/internal/audit"
	auditrepo "hrms-platform/backend/internal/audit/repository"
	"hrms-platform/backend/internal/config"
	"hrms-platform/backend/internal/db"
	presencerepo "hrms-platform/backend/internal/presence/repository"
	"hrms-platform/backend/internal/reconcile"
	sessionrepo "hrms-platform/backend/internal/session/repository"
	"hrms-platform/backend/internal/telemetry/loki"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("worker: DATABASE_URL is required")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("worker: db: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	sessions := sessionrepo.NewPostgresRepository(conn)
	presence := presencerepo.NewPostgresRepository(conn)
	auditor := auditlog.NewLogger(auditrepo.NewPostgresRepository(conn), nil)

	reconciler := reconcile.NewReconciler(sessions, presence, auditor, cfg.SessionRetention())
	scheduler := reconcile.NewScheduler(reconciler, cfg.ReconcileInterval())
	scheduler.Start(ctx)
	defer scheduler.Stop()
	log.Printf("worker: reconciling every %s (retention %s)", cfg.ReconcileInterval(), cfg.SessionRetention())

	brokers := cfg.AuditKafkaBrokersList()
	if len(brokers) == 0 || cfg.LokiURL == "" {
		log.Println("worker: audit forwarding disabled (KAFKA_BROKERS or LOKI_URL unset)")
		<-ctx.Done()
		log.Println("worker: stopped")
		return
	}

	topic := cfg.AuditKafkaTopic
	if topic == "" {
		topic = "hrms-audit"
	}
	groupID := cfg.KafkaGroupID
	if groupID == "" {
		groupID = "hrms-audit-worker"
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	log.Printf("worker: consuming from %s (group %s), pushing to %s", topic, groupID, cfg.LokiURL)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("worker: stopped")
				return
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}

		pushCtx, pushCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := loki.PushEntryJSON(pushCtx, cfg.LokiURL, msg.Value); err != nil {
			log.Printf("worker: loki push failed: %v", err)
		}
		pushCancel()
	}
}
