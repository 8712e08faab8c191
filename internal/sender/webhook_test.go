package sender_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atendo/crm-campaigns/internal/config"
	"github.com/atendo/crm-campaigns/internal/sender"
)

func TestWebhookSender_Send(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "test-auth-key", r.Header.Get("x-channel-auth-key"))

			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "+5511999990000", req["to"])
			assert.Equal(t, "Olá João", req["content"])

			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		s := sender.NewWebhookSender(&config.WebhookConfig{
			URL:     server.URL,
			AuthKey: "test-auth-key",
			Timeout: 5,
		}, zap.NewNop())

		err := s.Send(context.Background(), "+5511999990000", "Olá João")
		assert.NoError(t, err)
	})

	t.Run("non-2xx status fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		s := sender.NewWebhookSender(&config.WebhookConfig{URL: server.URL, Timeout: 5}, zap.NewNop())

		err := s.Send(context.Background(), "+5511999990000", "Olá")
		assert.ErrorContains(t, err, "unexpected status code: 503")
	})

	t.Run("unreachable endpoint fails", func(t *testing.T) {
		s := sender.NewWebhookSender(&config.WebhookConfig{
			URL:     "http://127.0.0.1:1/never",
			Timeout: 1,
		}, zap.NewNop())

		err := s.Send(context.Background(), "+5511999990000", "Olá")
		assert.Error(t, err)
	})
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	cfg := &config.CircuitBreakerConfig{
		MaxRequests:      1,
		Interval:         60,
		Timeout:          60,
		FailureRatio:     0.5,
		ConsecutiveFails: 3,
	}
	cb := sender.NewCircuitBreaker(cfg, zap.NewNop())

	assert.Equal(t, sender.BreakerClosed, cb.State())

	failing := func() error { return assert.AnError }
	for i := 0; i < 3; i++ {
		_ = cb.Execute(context.Background(), failing)
	}

	assert.Equal(t, sender.BreakerOpen, cb.State())
	assert.True(t, cb.Open())

	err := cb.Execute(context.Background(), func() error { return nil })
	assert.ErrorContains(t, err, "circuit breaker is open")

	requests, failures := cb.Counts()
	assert.GreaterOrEqual(t, failures, uint32(3))
	assert.GreaterOrEqual(t, requests, failures)
}
