package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kirasurf/order-service/internal/config"
	"github.com/kirasurf/order-service/internal/entities"

	"github.com/segmentio/kafka-go"
)

// Producer publishes email envelopes to the notifications topic. The mailer
// service on the other side renders and delivers them; order flow never waits
// for delivery.
type Producer struct {
	logger *slog.Logger
	writer *kafka.Writer
}

func New(logger *slog.Logger, cfg config.Kafka) *Producer {
	return &Producer{
		logger: logger.With(slog.String("component", "notifier")),
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.NotificationsTopic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: cfg.BatchTimeout,
		},
	}
}

type envelope struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

func (p *Producer) Send(ctx context.Context, n entities.Notification) error {
	value, err := json.Marshal(envelope{
		Recipient: n.Recipient,
		Subject:   n.Subject,
		Body:      n.Body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.Recipient),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	p.logger.Debug("notification published", slog.String("recipient", n.Recipient))
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
