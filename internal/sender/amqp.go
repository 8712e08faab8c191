package sender

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/config"
)

type amqpPayload struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

// AMQPSender hands messages to an external delivery worker through a
// durable queue. Publish acceptance by the broker counts as success; the
// downstream worker owns the actual transport.
type AMQPSender struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger
}

func NewAMQPSender(cfg *config.AMQPConfig, logger *zap.Logger) (*AMQPSender, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	return &AMQPSender{
		conn:    conn,
		channel: channel,
		queue:   cfg.Queue,
		logger:  logger,
	}, nil
}

// Send implements ChannelSender.
func (s *AMQPSender) Send(ctx context.Context, address, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(amqpPayload{
		To:      address,
		Content: text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	err = s.channel.Publish("", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to queue %s: %w", s.queue, err)
	}

	return nil
}

// Close releases the channel and connection.
func (s *AMQPSender) Close() error {
	if err := s.channel.Close(); err != nil {
		s.logger.Warn("Failed to close AMQP channel", zap.Error(err))
	}
	return s.conn.Close()
}
