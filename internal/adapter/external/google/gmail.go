package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/infrastructure/circuitbreaker"
)

const DefaultGmailURL = "https://gmail.googleapis.com/gmail/v1"

type GmailClient struct {
	baseURL string
	http    *circuitbreaker.HTTPClient
	log     *zap.Logger
}

func NewGmailClient(baseURL string, httpClient *circuitbreaker.HTTPClient, log *zap.Logger) *GmailClient {
	if baseURL == "" {
		baseURL = DefaultGmailURL
	}
	return &GmailClient{
		baseURL: baseURL,
		http:    httpClient,
		log:     log,
	}
}

// SendRaw sends an already encoded message and returns its Gmail id.
func (c *GmailClient) SendRaw(ctx context.Context, token, raw string) (string, error) {
	body, err := json.Marshal(map[string]string{"raw": raw})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users/me/messages/send", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var sent struct {
		ID       string `json:"id"`
		ThreadID string `json:"threadId"`
	}
	if err := c.http.DoJSON(req, &sent); err != nil {
		return "", err
	}

	c.log.Debug("email sent", zap.String("message_id", sent.ID))
	return sent.ID, nil
}
