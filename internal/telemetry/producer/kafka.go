package producer

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	auditdomain "hrms-platform/backend/internal/audit/domain"
)

// auditMessage is the wire shape of an audit entry on the stream. The worker's
// Loki forwarder parses the same field names.
type auditMessage struct {
	ID        string `json:"id"`
	ActorID   string `json:"actorId,omitempty"`
	ActorType string `json:"actorType,omitempty"`
	Action    string `json:"action"`
	Outcome   string `json:"outcome"`
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Metadata  string `json:"metadata,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// KafkaProducer implements Producer using segmentio/kafka-go.
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaProducer creates a Kafka producer that writes audit entries to the given topic.
// Returns nil (disabled) when brokers or topic are unset. Call Close when shutting down.
func NewKafkaProducer(brokers []string, topic string) (*KafkaProducer, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaProducer{writer: writer, topic: topic}, nil
}

// Emit serializes the entry as JSON and writes it to the Kafka topic, keyed by
// actor so entries for one principal stay ordered.
// Uses the request context with a short timeout so slow Kafka does not block callers indefinitely.
func (p *KafkaProducer) Emit(ctx context.Context, entry *auditdomain.AuditLog) error {
	if p == nil || p.writer == nil || entry == nil {
		return nil
	}
	msg := auditMessage{
		ID:        entry.ID,
		ActorID:   entry.ActorID,
		ActorType: entry.ActorType,
		Action:    entry.Action,
		Outcome:   entry.Outcome,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
		Metadata:  entry.Metadata,
		CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var key []byte
	if entry.ActorID != "" {
		key = []byte(entry.ActorID)
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   key,
		Value: payload,
	})
	if err != nil {
		log.Printf("telemetry: kafka emit failed: %v", err)
		return err
	}
	return nil
}

// Close closes the Kafka writer. Safe to call multiple times.
func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
