package analytics

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaSink publishes notifications as JSON messages keyed by cart id, so
// a partitioned topic preserves per-cart ordering.
type KafkaSink struct {
	writer  *kafka.Writer
	logger  *log.Logger
	timeout time.Duration
}

func NewKafkaSink(topic string, logger *log.Logger, brokers ...string) *KafkaSink {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	return &KafkaSink{writer: writer, logger: logger, timeout: 5 * time.Second}
}

func (s *KafkaSink) Notify(ctx context.Context, n Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		s.logf("marshal notification %s: %v", n.Name, err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(n.CartID),
		Value: payload,
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		s.logf("publish notification %s for cart %s: %v", n.Name, n.CartID, err)
	}
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func (s *KafkaSink) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
