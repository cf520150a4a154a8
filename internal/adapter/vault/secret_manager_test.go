package vault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestSecrets_ReadsKVv2(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/vox-assistant" {
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("X-Vault-Token") != "root" {
			t.Errorf("missing vault token")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"openai_api_key":"sk-1","weather_api_key":"w-1","retries":3},"metadata":{"version":2}}}`))
	}))
	defer srv.Close()

	sm, err := NewSecretManager(srv.URL, "root", "", zap.NewNop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// Act
	secrets, err := sm.Secrets(context.Background(), "vox-assistant")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if secrets["openai_api_key"] != "sk-1" || secrets["weather_api_key"] != "w-1" {
		t.Errorf("unexpected secrets %v", secrets)
	}
	if _, ok := secrets["retries"]; ok {
		t.Error("expected non-string field to be skipped")
	}
}

func TestSecrets_Missing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[]}`))
	}))
	defer srv.Close()
	sm, _ := NewSecretManager(srv.URL, "root", "kv", zap.NewNop())

	if _, err := sm.Secrets(context.Background(), "nothing"); err == nil {
		t.Error("expected error for missing secret")
	}
}
