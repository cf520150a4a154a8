package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/vox-assistant/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/vox-assistant/internal/domain"
	"github.com/seu-repo/vox-assistant/internal/service/intent"
)

type BatchExecutor interface {
	ExecuteAll(ctx context.Context, userID, sessionID, transcript string, intents []domain.Intent) (*domain.AggregatedOutcome, error)
}

// IntentHandler exposes the execution core to callers that already hold
// structured intents.
type IntentHandler struct {
	executor intent.SingleExecutor
	batches  BatchExecutor
	log      *zap.Logger
}

func NewIntentHandler(executor intent.SingleExecutor, batches BatchExecutor, log *zap.Logger) *IntentHandler {
	return &IntentHandler{
		executor: executor,
		batches:  batches,
		log:      log,
	}
}

type ExecuteIntentRequest struct {
	SessionID  string        `json:"session_id"`
	Transcript string        `json:"transcript"`
	Intent     domain.Intent `json:"intent"`
}

type ExecuteBatchRequest struct {
	SessionID  string          `json:"session_id"`
	Transcript string          `json:"transcript"`
	Intents    []domain.Intent `json:"intents"`
}

type ConfirmationRequest struct {
	Intents []domain.Intent `json:"intents"`
}

func (h *IntentHandler) Execute(c *fiber.Ctx) error {
	var req ExecuteIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}

	outcome, err := h.executor.Execute(c.UserContext(), middleware.UserID(c), req.SessionID, req.Transcript, req.Intent)
	if err != nil {
		return err
	}
	return c.JSON(outcome)
}

func (h *IntentHandler) ExecuteBatch(c *fiber.Ctx) error {
	var req ExecuteBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}

	agg, err := h.batches.ExecuteAll(c.UserContext(), middleware.UserID(c), req.SessionID, req.Transcript, req.Intents)
	if err != nil {
		return err
	}
	return c.JSON(agg)
}

func (h *IntentHandler) Confirmation(c *fiber.Ctx) error {
	var req ConfirmationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}
	return c.JSON(fiber.Map{"requires_confirmation": intent.RequiresConfirmation(req.Intents)})
}
