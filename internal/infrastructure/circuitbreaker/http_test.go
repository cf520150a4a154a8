package circuitbreaker

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, threshold uint32) (*HTTPClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	mgr := NewManager(Settings{MaxRequests: 1, Timeout: time.Minute, FailureThreshold: threshold}, zap.NewNop())
	return NewHTTPClient("upstream", srv.Client(), mgr, zap.NewNop()), srv
}

func TestDoJSON_DecodesSuccess(t *testing.T) {
	// Arrange
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"evt-1"}`))
	}, 5)
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)

	// Act
	var out struct {
		ID string `json:"id"`
	}
	err := client.DoJSON(req, &out)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.ID != "evt-1" {
		t.Errorf("expected evt-1, got %q", out.ID)
	}
}

func TestDoJSON_UpstreamMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"google", http.StatusForbidden, `{"error":{"code":403,"message":"Insufficient Permission"}}`, "Insufficient Permission"},
		{"oauth", http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Token has been revoked."}`, "Token has been revoked."},
		{"openweathermap", http.StatusNotFound, `{"cod":"404","message":"city not found"}`, "city not found"},
		{"no body", http.StatusBadRequest, ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, 5)
			req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)

			err := client.DoJSON(req, nil)

			var ext *domain.ExternalServiceError
			if !errors.As(err, &ext) {
				t.Fatalf("expected ExternalServiceError, got %v", err)
			}
			if ext.StatusCode != tt.status || ext.Message != tt.want {
				t.Errorf("expected %d %q, got %d %q", tt.status, tt.want, ext.StatusCode, ext.Message)
			}
		})
	}
}

func TestHTTPClient_OpensAfterServerErrors(t *testing.T) {
	// Arrange
	calls := 0
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}, 2)

	// Act
	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		_ = client.DoJSON(req, nil)
	}
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	err := client.DoJSON(req, nil)

	// Assert
	if calls != 2 {
		t.Errorf("expected breaker to block the third call, upstream saw %d", calls)
	}
	var ext *domain.ExternalServiceError
	if !errors.As(err, &ext) || ext.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected unavailable error, got %v", err)
	}
	if st := NewManager(DefaultSettings(), zap.NewNop()).Status(); len(st) != 0 {
		t.Errorf("expected fresh manager to be empty, got %v", st)
	}
}

func TestHTTPClient_ClientErrorsDoNotTrip(t *testing.T) {
	calls := 0
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}, 1)

	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		_ = client.DoJSON(req, nil)
	}

	if calls != 3 {
		t.Errorf("expected every 4xx call to reach upstream, got %d", calls)
	}
}
