package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"credocarbon/metrics"
	"credocarbon/registry"
	"credocarbon/storage"
	"credocarbon/utils"
)

// InsightsHandler handles insights document requests
type InsightsHandler struct {
	svc *registry.Service
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(svc *registry.Service) *InsightsHandler {
	return &InsightsHandler{svc: svc}
}

// GetInsights godoc
// @Summary Get insights document
// @Tags Insights
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{} "Insights document"
// @Failure 404 {object} map[string]interface{} "Document not uploaded yet"
// @Router /insights [get]
func (h *InsightsHandler) GetInsights(c *fiber.Ctx) error {
	data, err := h.svc.Insights(c.Context())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Insights data not found"})
		}
		metrics.IncrementDocumentStoreError("insights")
		utils.LogRequestError(c, "INSIGHTS_READ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load insights data"})
	}
	return c.JSON(data)
}

// ReplaceInsights godoc
// @Summary Replace insights document
// @Description Replace the whole insights document; lastUpdated is stamped on save
// @Tags Insights
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Insights document"
// @Success 200 {object} map[string]interface{} "Saved document"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Router /insights [put]
func (h *InsightsHandler) ReplaceInsights(c *fiber.Ctx) error {
	var data map[string]any
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if data == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.svc.SaveInsights(c.Context(), data); err != nil {
		metrics.IncrementDocumentStoreError("insights")
		utils.LogRequestError(c, "INSIGHTS_REPLACE", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save insights data"})
	}

	metrics.IncrementRegistryOperation("insights_replace")
	return c.JSON(data)
}
