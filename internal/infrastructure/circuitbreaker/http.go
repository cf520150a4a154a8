package circuitbreaker

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/domain"
	"github.com/seu-repo/vox-assistant/internal/observability/telemetry"
)

const maxErrorBody = 64 << 10

// HTTPClient guards calls to one upstream service with a breaker. Only
// transport errors and 5xx answers count against the breaker; a 4xx is the
// caller's problem, not the upstream's.
type HTTPClient struct {
	service string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

func NewHTTPClient(service string, client *http.Client, manager *Manager, log *zap.Logger) *HTTPClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{
		service: service,
		client:  client,
		breaker: manager.Get(service),
		log:     log,
	}
}

type serverError struct {
	resp *http.Response
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error: %d", e.resp.StatusCode)
}

// Do sends req. Non-2xx answers are returned as a response, not an error.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return nil, &serverError{resp: resp}
		}
		return resp, nil
	})

	if se, ok := err.(*serverError); ok {
		telemetry.ExternalCallsTotal.WithLabelValues(c.service, "server_error").Inc()
		return se.resp, nil
	}
	if err != nil {
		if IsOpen(err) {
			telemetry.ExternalCallsTotal.WithLabelValues(c.service, "rejected").Inc()
			c.log.Warn("Circuit breaker open, request blocked",
				zap.String("service", c.service),
				zap.String("url", req.URL.Redacted()),
			)
			return nil, &domain.ExternalServiceError{
				Service:    c.service,
				StatusCode: http.StatusServiceUnavailable,
				Message:    "service temporarily unavailable",
			}
		}
		telemetry.ExternalCallsTotal.WithLabelValues(c.service, "error").Inc()
		return nil, err
	}

	telemetry.ExternalCallsTotal.WithLabelValues(c.service, "ok").Inc()
	return result.(*http.Response), nil
}

// DoJSON sends req and decodes a 2xx body into out (which may be nil).
// Any other status becomes a *domain.ExternalServiceError carrying the
// upstream's own message when it sent one.
func (c *HTTPClient) DoJSON(req *http.Request, out any) error {
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.ExternalServiceError{
			Service:    c.service,
			StatusCode: resp.StatusCode,
			Message:    upstreamMessage(body),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.service, err)
	}
	return nil
}

// upstreamMessage understands the Google ({"error":{"message"}}), OAuth
// ({"error_description"}) and OpenWeatherMap ({"message"}) error bodies.
func upstreamMessage(body []byte) string {
	var payload struct {
		Error            json.RawMessage `json:"error"`
		ErrorDescription string          `json:"error_description"`
		Message          string          `json:"message"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	if len(payload.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(payload.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	if payload.ErrorDescription != "" {
		return payload.ErrorDescription
	}
	return payload.Message
}
