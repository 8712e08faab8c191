package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPProviderConfig configures one completion endpoint. All providers
// speak the same minimal JSON shape; no vendor-specific protocol is
// modeled here.
type HTTPProviderConfig struct {
	ID      string
	URL     string
	AuthKey string
	Timeout time.Duration
}

type completionRequest struct {
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Text string `json:"text"`
}

// HTTPProvider calls a completion endpoint over HTTP.
type HTTPProvider struct {
	cfg        HTTPProviderConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPProvider(cfg HTTPProviderConfig, logger *zap.Logger) *HTTPProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPProvider{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Generate implements Provider.
func (p *HTTPProvider) Generate(ctx context.Context, prompt string) (string, error) {
	jsonData, err := json.Marshal(completionRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if p.cfg.AuthKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.AuthKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call provider %s: %w", p.cfg.ID, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			p.logger.Warn("Failed to close provider response body", zap.Error(closeErr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider %s returned status %d", p.cfg.ID, resp.StatusCode)
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode provider response: %w", err)
	}

	if completion.Text == "" {
		return "", fmt.Errorf("provider %s returned an empty draft", p.cfg.ID)
	}

	return completion.Text, nil
}
