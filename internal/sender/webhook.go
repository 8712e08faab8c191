package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/config"
)

type webhookRequest struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

// WebhookSender posts each message to a delivery webhook.
type WebhookSender struct {
	cfg        *config.WebhookConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewWebhookSender(cfg *config.WebhookConfig, logger *zap.Logger) *WebhookSender {
	return &WebhookSender{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		logger: logger,
	}
}

// Send implements ChannelSender.
func (s *WebhookSender) Send(ctx context.Context, address, text string) error {
	jsonData, err := json.Marshal(webhookRequest{
		To:      address,
		Content: text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if s.cfg.AuthKey != "" {
		req.Header.Set("x-channel-auth-key", s.cfg.AuthKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn("Failed to close response body", zap.Error(closeErr))
		}
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}
