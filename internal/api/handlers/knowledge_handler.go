package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/dijkstrabc/shittykbsystem/internal/genai"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/catalog"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/models"
	"github.com/dijkstrabc/shittykbsystem/internal/metrics"
	"github.com/dijkstrabc/shittykbsystem/pkg/logger"
)

type KnowledgeHandler struct {
	points *catalog.KnowledgePoints
	genai  *genai.Client
}

func NewKnowledgeHandler(points *catalog.KnowledgePoints, genaiClient *genai.Client) *KnowledgeHandler {
	return &KnowledgeHandler{points: points, genai: genaiClient}
}

func (h *KnowledgeHandler) List(c *fiber.Ctx) error {
	points, err := h.points.List(c.Context())
	if err != nil {
		logger.Error("Failed to list knowledge points", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list knowledge points",
		})
	}

	counts := map[string]float64{}
	for _, point := range points {
		counts[point.Status]++
	}
	for status, count := range counts {
		metrics.KnowledgePointsTotal.WithLabelValues(status).Set(count)
	}

	return c.JSON(fiber.Map{
		"knowledge_points": points,
	})
}

func (h *KnowledgeHandler) Get(c *fiber.Ctx) error {
	point, err := h.points.Get(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(point)
}

func (h *KnowledgeHandler) Create(c *fiber.Ctx) error {
	var req models.KnowledgePoint
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.StandardQuestion) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Standard question is required",
		})
	}

	point, err := h.points.Add(c.Context(), req)
	if err != nil {
		logger.Error("Failed to create knowledge point", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create knowledge point",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(point)
}

func (h *KnowledgeHandler) Update(c *fiber.Ctx) error {
	var req models.KnowledgePoint
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	req.ID = c.Params("id")

	point, err := h.points.Update(c.Context(), req)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(point)
}

func (h *KnowledgeHandler) SetStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	point, err := h.points.SetStatus(c.Context(), c.Params("id"), req.Status)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(point)
}

func (h *KnowledgeHandler) Delete(c *fiber.Ctx) error {
	if err := h.points.Delete(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Knowledge point deleted",
	})
}

// ExpandSimilar asks the generation endpoint for paraphrases of the point's
// standard question and appends the ones not already present. The point is
// only written after generation succeeds.
func (h *KnowledgeHandler) ExpandSimilar(c *fiber.Ctx) error {
	var req struct {
		Count int `json:"count"`
	}
	// Body is optional; default count applies when absent.
	_ = c.BodyParser(&req)

	point, err := h.points.Get(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	similar, err := h.genai.ExpandSimilarQuestions(c.Context(), point.StandardQuestion, req.Count)
	if err != nil {
		metrics.GenerationRequests.WithLabelValues("expand_similar", "error").Inc()
		logger.Error("Failed to expand similar questions", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	metrics.GenerationRequests.WithLabelValues("expand_similar", "ok").Inc()

	existing := make(map[string]struct{}, len(point.SimilarQuestions))
	for _, q := range point.SimilarQuestions {
		existing[q] = struct{}{}
	}
	for _, q := range similar {
		if _, dup := existing[q]; !dup {
			point.SimilarQuestions = append(point.SimilarQuestions, q)
		}
	}

	updated, err := h.points.Update(c.Context(), *point)
	if err != nil {
		logger.Error("Failed to save expanded questions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save expanded questions",
		})
	}

	return c.JSON(updated)
}
