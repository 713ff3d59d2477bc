package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/dijkstrabc/shittykbsystem/internal/chat"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/models"
	"github.com/dijkstrabc/shittykbsystem/internal/metrics"
	"github.com/dijkstrabc/shittykbsystem/pkg/logger"
)

type ChatHandler struct {
	engine *chat.Engine
}

func NewChatHandler(engine *chat.Engine) *ChatHandler {
	return &ChatHandler{engine: engine}
}

func (h *ChatHandler) StartSession(c *fiber.Ctx) error {
	var req struct {
		UserID  string `json:"user_id"`
		RobotID string `json:"robot_id"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	session, err := h.engine.StartSession(c.Context(), req.UserID, req.RobotID)
	if err != nil {
		logger.Error("Failed to start session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start session",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *ChatHandler) SubmitMessage(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	sessionID := c.Params("id")
	session, err := h.findSession(c, sessionID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	start := time.Now()
	updated, outcome, err := h.engine.Submit(c.Context(), session, req.Text)
	if err != nil {
		logger.Error("Failed to process chat turn",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process chat turn",
		})
	}

	metrics.ChatTurnDuration.WithLabelValues(string(outcome)).Observe(time.Since(start).Seconds())
	metrics.ChatTurnsTotal.WithLabelValues(string(outcome)).Inc()
	if outcome == chat.OutcomeMiss {
		metrics.UnansweredTotal.Inc()
	}

	return c.JSON(updated)
}

func (h *ChatHandler) ListSessions(c *fiber.Ctx) error {
	sessions, err := h.engine.Sessions(c.Context())
	if err != nil {
		logger.Error("Failed to list sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list sessions",
		})
	}

	return c.JSON(fiber.Map{
		"sessions": sessions,
	})
}

func (h *ChatHandler) findSession(c *fiber.Ctx, id string) (*models.ChatSession, error) {
	sessions, err := h.engine.Sessions(c.Context())
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].ID == id {
			return &sessions[i], nil
		}
	}
	return nil, fiber.NewError(fiber.StatusNotFound, "session "+id+" not found")
}
