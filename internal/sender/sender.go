// Package sender provides the outbound channel-sender capability: given a
// contact address and resolved message text, it reports immediate
// success or failure. No delivery receipts are modeled beyond that.
package sender

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/config"
)

// ChannelSender dispatches one resolved message to one recipient address.
type ChannelSender interface {
	Send(ctx context.Context, address, text string) error
}

// New builds the channel sender configured under sender.kind.
func New(cfg *config.SenderConfig, logger *zap.Logger) (ChannelSender, error) {
	switch cfg.Kind {
	case "webhook":
		return NewWebhookSender(&cfg.Webhook, logger), nil
	case "amqp":
		return NewAMQPSender(&cfg.AMQP, logger)
	default:
		return nil, fmt.Errorf("unknown sender kind: %q", cfg.Kind)
	}
}
