package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/dijkstrabc/shittykbsystem/internal/analytics"
	"github.com/dijkstrabc/shittykbsystem/internal/chat"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/catalog"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/models"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/store"
	"github.com/dijkstrabc/shittykbsystem/internal/metrics"
	"github.com/dijkstrabc/shittykbsystem/pkg/logger"
)

type AnalyticsHandler struct {
	store  store.Store
	points *catalog.KnowledgePoints
	robots *catalog.Robots
	engine *chat.Engine
}

func NewAnalyticsHandler(s store.Store, points *catalog.KnowledgePoints, robots *catalog.Robots, engine *chat.Engine) *AnalyticsHandler {
	return &AnalyticsHandler{
		store:  s,
		points: points,
		robots: robots,
		engine: engine,
	}
}

// StaleReport lists published knowledge points whose answer was not served
// inside the window. window_days defaults to the robot's silence threshold
// when robot_id is given, else 30.
func (h *AnalyticsHandler) StaleReport(c *fiber.Ctx) error {
	robotID := c.Query("robot_id")
	windowDays := c.QueryInt("window_days")

	if windowDays <= 0 && robotID != "" {
		robot, err := h.robots.Get(c.Context(), robotID)
		if err == nil {
			windowDays = analytics.WindowForRobot(robot)
		}
	}

	points, err := h.points.List(c.Context())
	if err != nil {
		logger.Error("Failed to load knowledge points", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute staleness report",
		})
	}

	sessions, err := h.engine.Sessions(c.Context())
	if err != nil {
		logger.Error("Failed to load chat sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute staleness report",
		})
	}

	stale := analytics.StaleKnowledgePoints(points, sessions, windowDays, robotID)
	metrics.StaleKnowledgePoints.Set(float64(len(stale)))

	if windowDays <= 0 {
		windowDays = analytics.DefaultWindowDays
	}

	return c.JSON(fiber.Map{
		"window_days": windowDays,
		"robot_id":    robotID,
		"stale":       stale,
	})
}

func (h *AnalyticsHandler) ListUnanswered(c *fiber.Ctx) error {
	var unanswered []models.UnansweredQuestion
	if err := h.store.Read(c.Context(), store.KeyUnansweredQuestions, &unanswered); err != nil {
		logger.Error("Failed to list unanswered questions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list unanswered questions",
		})
	}

	if robotID := c.Query("robot_id"); robotID != "" {
		filtered := unanswered[:0]
		for _, q := range unanswered {
			if q.RobotID == robotID {
				filtered = append(filtered, q)
			}
		}
		unanswered = filtered
	}

	return c.JSON(fiber.Map{
		"unanswered": unanswered,
	})
}
