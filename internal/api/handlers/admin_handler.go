package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/dijkstrabc/shittykbsystem/internal/kb/catalog"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/models"
	"github.com/dijkstrabc/shittykbsystem/pkg/logger"
)

// AdminHandler serves the flat configuration collections: robots, entities
// and intents. Entities and intents are inert scaffolding for a future NLU
// pipeline; nothing downstream consumes them yet.
type AdminHandler struct {
	robots   *catalog.Robots
	entities *catalog.Entities
	intents  *catalog.Intents
}

func NewAdminHandler(robots *catalog.Robots, entities *catalog.Entities, intents *catalog.Intents) *AdminHandler {
	return &AdminHandler{
		robots:   robots,
		entities: entities,
		intents:  intents,
	}
}

func (h *AdminHandler) ListRobots(c *fiber.Ctx) error {
	robots, err := h.robots.List(c.Context())
	if err != nil {
		logger.Error("Failed to list robots", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list robots"})
	}
	return c.JSON(fiber.Map{"robots": robots})
}

func (h *AdminHandler) CreateRobot(c *fiber.Ctx) error {
	var req models.Robot
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	robot, err := h.robots.Add(c.Context(), req)
	if err != nil {
		logger.Error("Failed to create robot", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create robot"})
	}
	return c.Status(fiber.StatusCreated).JSON(robot)
}

func (h *AdminHandler) UpdateRobot(c *fiber.Ctx) error {
	var req models.Robot
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.ID = c.Params("id")

	robot, err := h.robots.Update(c.Context(), req)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(robot)
}

func (h *AdminHandler) DeleteRobot(c *fiber.Ctx) error {
	if err := h.robots.Delete(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Robot deleted"})
}

func (h *AdminHandler) ListEntities(c *fiber.Ctx) error {
	entities, err := h.entities.List(c.Context())
	if err != nil {
		logger.Error("Failed to list entities", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list entities"})
	}
	return c.JSON(fiber.Map{"entities": entities})
}

func (h *AdminHandler) CreateEntity(c *fiber.Ctx) error {
	var req models.Entity
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}
	if req.Type != "enum" && req.Type != "regex" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Type must be enum or regex"})
	}

	entity, err := h.entities.Add(c.Context(), req)
	if err != nil {
		logger.Error("Failed to create entity", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create entity"})
	}
	return c.Status(fiber.StatusCreated).JSON(entity)
}

func (h *AdminHandler) UpdateEntity(c *fiber.Ctx) error {
	var req models.Entity
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.ID = c.Params("id")

	entity, err := h.entities.Update(c.Context(), req)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(entity)
}

func (h *AdminHandler) DeleteEntity(c *fiber.Ctx) error {
	if err := h.entities.Delete(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Entity deleted"})
}

func (h *AdminHandler) ListIntents(c *fiber.Ctx) error {
	intents, err := h.intents.List(c.Context())
	if err != nil {
		logger.Error("Failed to list intents", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list intents"})
	}
	return c.JSON(fiber.Map{"intents": intents})
}

func (h *AdminHandler) CreateIntent(c *fiber.Ctx) error {
	var req models.Intent
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name is required"})
	}

	intent, err := h.intents.Add(c.Context(), req)
	if err != nil {
		logger.Error("Failed to create intent", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create intent"})
	}
	return c.Status(fiber.StatusCreated).JSON(intent)
}

func (h *AdminHandler) UpdateIntent(c *fiber.Ctx) error {
	var req models.Intent
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	req.ID = c.Params("id")

	intent, err := h.intents.Update(c.Context(), req)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(intent)
}

func (h *AdminHandler) DeleteIntent(c *fiber.Ctx) error {
	if err := h.intents.Delete(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Intent deleted"})
}
