package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/vox-assistant/internal/domain"
)

type fakeExecutor struct {
	got domain.Intent
	out domain.ExecutionOutcome
	err error
}

func (f *fakeExecutor) Execute(ctx context.Context, userID, sessionID, transcript string, in domain.Intent) (domain.ExecutionOutcome, error) {
	f.got = in
	return f.out, f.err
}

type fakeBatches struct {
	userID string
	count  int
}

func (f *fakeBatches) ExecuteAll(ctx context.Context, userID, sessionID, transcript string, intents []domain.Intent) (*domain.AggregatedOutcome, error) {
	f.userID = userID
	f.count = len(intents)
	return &domain.AggregatedOutcome{Success: true, DisplayResponse: "done"}, nil
}

type fakeAssistant struct {
	processErr error
	approved   *bool
	limit      int
}

func (f *fakeAssistant) ProcessTranscript(ctx context.Context, userID, sessionID, transcript string) (*domain.VoiceResponse, error) {
	if f.processErr != nil {
		return nil, f.processErr
	}
	return &domain.VoiceResponse{SessionID: "s1", Transcript: transcript, Text: "ok"}, nil
}

func (f *fakeAssistant) Confirm(ctx context.Context, userID, sessionID string, approved bool) (*domain.VoiceResponse, error) {
	f.approved = &approved
	return &domain.VoiceResponse{SessionID: sessionID, Text: "confirmed"}, nil
}

func (f *fakeAssistant) History(ctx context.Context, userID, sessionID string, limit int) ([]domain.ActionRecord, error) {
	f.limit = limit
	return []domain.ActionRecord{{ID: "a1", SessionID: sessionID}}, nil
}

func newTestApp(register func(app *fiber.App)) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(zap.NewNop())})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUserID, "user-1")
		return c.Next()
	})
	register(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %q: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

func TestIntentHandler_Execute(t *testing.T) {
	// Arrange
	exec := &fakeExecutor{out: domain.Succeeded("Task created", "")}
	h := NewIntentHandler(exec, &fakeBatches{}, zap.NewNop())
	app := newTestApp(func(app *fiber.App) { app.Post("/execute", h.Execute) })

	// Act
	code, body := doJSON(t, app, "POST", "/execute", `{"intent":{"intent":"create_task","parameters":{"title":"milk"}}}`)

	// Assert
	if code != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["success"] != true {
		t.Errorf("expected success, got %v", body)
	}
	if exec.got.Kind != domain.IntentCreateTask {
		t.Errorf("expected create_task, got %s", exec.got.Kind)
	}
}

func TestIntentHandler_ExecuteValidationError(t *testing.T) {
	exec := &fakeExecutor{err: domain.NewValidationError("intent", "intent kind is required")}
	h := NewIntentHandler(exec, &fakeBatches{}, zap.NewNop())
	app := newTestApp(func(app *fiber.App) { app.Post("/execute", h.Execute) })

	code, body := doJSON(t, app, "POST", "/execute", `{"intent":{}}`)

	if code != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if body["error"] != "intent: intent kind is required" {
		t.Errorf("unexpected error body: %v", body)
	}
}

func TestIntentHandler_ExecuteBatch(t *testing.T) {
	batches := &fakeBatches{}
	h := NewIntentHandler(&fakeExecutor{}, batches, zap.NewNop())
	app := newTestApp(func(app *fiber.App) { app.Post("/batch", h.ExecuteBatch) })

	code, _ := doJSON(t, app, "POST", "/batch", `{"intents":[{"intent":"get_tasks"},{"intent":"get_notes"}]}`)

	if code != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if batches.count != 2 || batches.userID != "user-1" {
		t.Errorf("unexpected batch call: %+v", batches)
	}
}

func TestIntentHandler_Confirmation(t *testing.T) {
	h := NewIntentHandler(&fakeExecutor{}, &fakeBatches{}, zap.NewNop())
	app := newTestApp(func(app *fiber.App) { app.Post("/confirmation", h.Confirmation) })

	tests := []struct {
		name string
		body string
		want bool
	}{
		{"read only", `{"intents":[{"intent":"get_weather"}]}`, false},
		{"side effect", `{"intents":[{"intent":"get_weather"},{"intent":"send_email"}]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, body := doJSON(t, app, "POST", "/confirmation", tt.body)
			if body["requires_confirmation"] != tt.want {
				t.Errorf("expected %v, got %v", tt.want, body["requires_confirmation"])
			}
		})
	}
}

func TestIntentHandler_InvalidBody(t *testing.T) {
	h := NewIntentHandler(&fakeExecutor{}, &fakeBatches{}, zap.NewNop())
	app := newTestApp(func(app *fiber.App) { app.Post("/execute", h.Execute) })

	code, _ := doJSON(t, app, "POST", "/execute", `{not json`)

	if code != fiber.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestVoiceHandler_ProcessCommand(t *testing.T) {
	h := NewVoiceHandler(&fakeAssistant{}, zap.NewNop())
	app := newTestApp(func(app *fiber.App) { app.Post("/voice/command", h.ProcessCommand) })

	code, body := doJSON(t, app, "POST", "/voice/command", `{"transcript":"what's the weather"}`)

	if code != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["session_id"] != "s1" || body["text"] != "ok" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestVoiceHandler_ProcessCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"missing transcript", `{}`, nil, fiber.StatusBadRequest},
		{"unknown session", `{"transcript":"hi","session_id":"x"}`, domain.ErrNotFound, fiber.StatusNotFound},
		{"upstream failure", `{"transcript":"hi"}`, errors.New("llm down"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewVoiceHandler(&fakeAssistant{processErr: tt.err}, zap.NewNop())
			app := newTestApp(func(app *fiber.App) { app.Post("/voice/command", h.ProcessCommand) })

			code, body := doJSON(t, app, "POST", "/voice/command", tt.body)

			if code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, code)
			}
			if tt.want == fiber.StatusInternalServerError && body["error"] != "Internal server error" {
				t.Errorf("server error leaked detail: %v", body)
			}
		})
	}
}

func TestVoiceHandler_Confirm(t *testing.T) {
	assistant := &fakeAssistant{}
	h := NewVoiceHandler(assistant, zap.NewNop())
	app := newTestApp(func(app *fiber.App) { app.Post("/voice/confirm", h.Confirm) })

	code, _ := doJSON(t, app, "POST", "/voice/confirm", `{"session_id":"s1","approved":true}`)

	if code != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if assistant.approved == nil || !*assistant.approved {
		t.Error("expected approval to be forwarded")
	}

	code, _ = doJSON(t, app, "POST", "/voice/confirm", `{"approved":true}`)
	if code != fiber.StatusBadRequest {
		t.Errorf("expected 400 without session_id, got %d", code)
	}
}

func TestVoiceHandler_GetHistory(t *testing.T) {
	assistant := &fakeAssistant{}
	h := NewVoiceHandler(assistant, zap.NewNop())
	app := newTestApp(func(app *fiber.App) { app.Get("/voice/history", h.GetHistory) })

	code, body := doJSON(t, app, "GET", "/voice/history?session_id=s1&limit=500", "")

	if code != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if assistant.limit != maxHistoryLimit {
		t.Errorf("expected limit clamped to %d, got %d", maxHistoryLimit, assistant.limit)
	}
	actions, _ := body["actions"].([]any)
	if len(actions) != 1 {
		t.Errorf("expected 1 action, got %v", body["actions"])
	}
}
