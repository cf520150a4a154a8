package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/vox-assistant/internal/domain"
)

const (
	MessageTranscript = "transcript"
	MessageConfirm    = "confirm"
	MessageResponse   = "response"
	MessageAction     = "action"
	MessageError      = "error"
)

type Assistant interface {
	ProcessTranscript(ctx context.Context, userID, sessionID, transcript string) (*domain.VoiceResponse, error)
	Confirm(ctx context.Context, userID, sessionID string, approved bool) (*domain.VoiceResponse, error)
}

// StreamRequest is one client frame.
type StreamRequest struct {
	Type       string `json:"type"`
	Transcript string `json:"transcript,omitempty"`
	Approved   bool   `json:"approved,omitempty"`
}

// StreamMessage is one server frame.
type StreamMessage struct {
	Type     string                `json:"type"`
	Response *domain.VoiceResponse `json:"response,omitempty"`
	Action   *domain.ActionEvent   `json:"action,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// VoiceStreamHandler keeps one assistant session per connection.
type VoiceStreamHandler struct {
	assistant Assistant
	hub       *Hub
	logger    *zap.Logger
}

func NewVoiceStreamHandler(assistant Assistant, hub *Hub, logger *zap.Logger) *VoiceStreamHandler {
	return &VoiceStreamHandler{
		assistant: assistant,
		hub:       hub,
		logger:    logger,
	}
}

// HandleVoiceStream reads transcript and confirm frames until the client
// disconnects. The session starts from the session_id query parameter.
func (h *VoiceStreamHandler) HandleVoiceStream(c *websocket.Conn) {
	userID, _ := c.Locals(middleware.LocalUserID).(string)
	sessionID := c.Query("session_id")
	ctx := context.Background()

	client, ok := h.hub.attach(c, userID)
	if !ok {
		return
	}
	defer h.hub.detach(client)

	for {
		messageType, raw, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("Voice stream closed", zap.String("user_id", userID), zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var req StreamRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			h.reply(client, StreamMessage{Type: MessageError, Error: "invalid message"})
			continue
		}

		var resp *domain.VoiceResponse
		switch req.Type {
		case MessageTranscript:
			resp, err = h.assistant.ProcessTranscript(ctx, userID, sessionID, req.Transcript)
		case MessageConfirm:
			resp, err = h.assistant.Confirm(ctx, userID, sessionID, req.Approved)
		default:
			err = domain.NewValidationError("type", "must be transcript or confirm")
		}
		if err != nil {
			h.reply(client, StreamMessage{Type: MessageError, Error: streamError(err)})
			continue
		}

		sessionID = resp.SessionID
		h.reply(client, StreamMessage{Type: MessageResponse, Response: resp})
	}
}

// PublishAction forwards an executor event to every open stream of the user.
func (h *VoiceStreamHandler) PublishAction(event domain.ActionEvent) {
	data, err := json.Marshal(StreamMessage{Type: MessageAction, Action: &event})
	if err != nil {
		h.logger.Error("Failed to encode action event", zap.Error(err))
		return
	}
	h.hub.SendToUser(event.UserID, data)
}

func (h *VoiceStreamHandler) reply(client *Client, msg StreamMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode stream message", zap.Error(err))
		return
	}
	h.hub.sendTo(client, data)
}

func streamError(err error) string {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, domain.ErrNotFound):
		return "Not found"
	default:
		return "Internal server error"
	}
}

// SetupVoiceRoutes mounts the stream at /ws/voice behind auth.
func SetupVoiceRoutes(app *fiber.App, auth fiber.Handler, handler *VoiceStreamHandler) {
	app.Use("/ws/voice", auth, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/voice", websocket.New(handler.HandleVoiceStream))
}
