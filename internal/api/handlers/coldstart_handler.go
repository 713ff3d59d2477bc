package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/dijkstrabc/shittykbsystem/internal/coldstart"
	"github.com/dijkstrabc/shittykbsystem/internal/metrics"
	"github.com/dijkstrabc/shittykbsystem/pkg/logger"
)

type ColdStartHandler struct {
	processor *coldstart.Processor
}

func NewColdStartHandler(processor *coldstart.Processor) *ColdStartHandler {
	return &ColdStartHandler{processor: processor}
}

// UploadDocument runs the document through QA extraction and returns the
// draft knowledge points it produced. A generation failure surfaces as 502
// with the underlying message; nothing is written on failure.
func (h *ColdStartHandler) UploadDocument(c *fiber.Ctx) error {
	var req struct {
		Name       string `json:"name"`
		Content    string `json:"content"`
		CategoryID string `json:"category_id"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Content is required",
		})
	}

	created, err := h.processor.ProcessDocument(c.Context(), req.Name, req.Content, req.CategoryID)
	if err != nil {
		metrics.GenerationRequests.WithLabelValues("extract_qa", "error").Inc()
		logger.Error("Failed to process cold-start document",
			zap.String("name", req.Name),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	metrics.GenerationRequests.WithLabelValues("extract_qa", "ok").Inc()
	metrics.ColdStartDocuments.Inc()
	metrics.ColdStartPoints.Add(float64(len(created)))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"name":             req.Name,
		"knowledge_points": created,
	})
}
