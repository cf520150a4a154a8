package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/vox-assistant/internal/domain"
)

const maxHistoryLimit = 100

type VoiceService interface {
	ProcessTranscript(ctx context.Context, userID, sessionID, transcript string) (*domain.VoiceResponse, error)
	Confirm(ctx context.Context, userID, sessionID string, approved bool) (*domain.VoiceResponse, error)
	History(ctx context.Context, userID, sessionID string, limit int) ([]domain.ActionRecord, error)
}

type VoiceHandler struct {
	assistant VoiceService
	log       *zap.Logger
}

func NewVoiceHandler(assistant VoiceService, log *zap.Logger) *VoiceHandler {
	return &VoiceHandler{
		assistant: assistant,
		log:       log,
	}
}

type VoiceCommandRequest struct {
	Transcript string `json:"transcript"`
	SessionID  string `json:"session_id"`
}

type VoiceConfirmRequest struct {
	SessionID string `json:"session_id"`
	Approved  bool   `json:"approved"`
}

func (h *VoiceHandler) ProcessCommand(c *fiber.Ctx) error {
	var req VoiceCommandRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}
	if req.Transcript == "" {
		return fiber.NewError(fiber.StatusBadRequest, "transcript is required")
	}

	resp, err := h.assistant.ProcessTranscript(c.UserContext(), middleware.UserID(c), req.SessionID, req.Transcript)
	if err != nil {
		h.log.Warn("Failed to process voice command", zap.String("session_id", req.SessionID), zap.Error(err))
		return err
	}
	return c.JSON(resp)
}

func (h *VoiceHandler) Confirm(c *fiber.Ctx) error {
	var req VoiceConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}
	if req.SessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session_id is required")
	}

	resp, err := h.assistant.Confirm(c.UserContext(), middleware.UserID(c), req.SessionID, req.Approved)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *VoiceHandler) GetHistory(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session_id is required")
	}
	limit := c.QueryInt("limit", 10)
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := h.assistant.History(c.UserContext(), middleware.UserID(c), sessionID, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"session_id": sessionID, "actions": records})
}
