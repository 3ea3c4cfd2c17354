package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"barberbook/backend/internal/domain"
)

type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(ctx context.Context, batch []domain.Notification) error {
	for _, n := range batch {
		s.logger.InfoContext(ctx, "notification",
			slog.String("notification_id", n.ID.String()),
			slog.String("type", string(n.Type)),
			slog.String("recipient_id", n.RecipientID),
			slog.String("message", n.Message),
		)
	}
	return nil
}

func (s *LogSink) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes one message per notification keyed by recipient so a recipient's events stay ordered
// within a partition.
type KafkaSink struct {
	writer messageWriter
}

func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka sink: no brokers configured")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("kafka sink: topic is required")
	}
	return &KafkaSink{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}}, nil
}

func (s *KafkaSink) Publish(ctx context.Context, batch []domain.Notification) error {
	msgs := make([]kafka.Message, 0, len(batch))
	for _, n := range batch {
		value, err := json.Marshal(EventOf(n))
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(n.RecipientID),
			Value: value,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(n.ID.String())},
				{Key: "event_type", Value: []byte(n.Type)},
			},
		})
	}
	return s.writer.WriteMessages(ctx, msgs...)
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisSink appends notifications to a Redis stream.
type RedisSink struct {
	client streamAdder
	closer func() error
	stream string
}

func NewRedisSink(client *redis.Client, stream string) (*RedisSink, error) {
	if strings.TrimSpace(stream) == "" {
		return nil, fmt.Errorf("redis sink: stream is required")
	}
	return &RedisSink{client: client, closer: client.Close, stream: stream}, nil
}

func (s *RedisSink) Publish(ctx context.Context, batch []domain.Notification) error {
	for _, n := range batch {
		payload, err := json.Marshal(EventOf(n))
		if err != nil {
			return err
		}
		err = s.client.XAdd(ctx, &redis.XAddArgs{
			Stream: s.stream,
			Values: map[string]any{
				"event_id":     n.ID.String(),
				"event_type":   string(n.Type),
				"recipient_id": n.RecipientID,
				"payload":      payload,
			},
		}).Err()
		if err != nil {
			return fmt.Errorf("xadd %s: %w", n.ID, err)
		}
	}
	return nil
}

func (s *RedisSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// SplitBrokers parses a comma separated broker list.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
