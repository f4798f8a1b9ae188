package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"credocarbon/metrics"
	"credocarbon/registry"
	"credocarbon/storage"
	"credocarbon/utils"
)

// RegistryHandler handles registry dataset requests
type RegistryHandler struct {
	svc *registry.Service
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(svc *registry.Service) *RegistryHandler {
	return &RegistryHandler{svc: svc}
}

// GetRegistry godoc
// @Summary Get registry dataset
// @Description Return the full registry document with totals
// @Tags Registry
// @Security BearerAuth
// @Produce json
// @Success 200 {object} registry.Data "Registry document"
// @Failure 404 {object} map[string]interface{} "Dataset not uploaded yet"
// @Router /registry [get]
func (h *RegistryHandler) GetRegistry(c *fiber.Ctx) error {
	data, err := h.svc.Registry(c.Context())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Registry data not found"})
		}
		metrics.IncrementDocumentStoreError("registry")
		utils.LogRequestError(c, "REGISTRY_READ", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load registry data"})
	}
	return c.JSON(data)
}

// ReplaceRegistry godoc
// @Summary Replace registry dataset
// @Description Replace the whole registry document; totals and lastUpdated are recomputed on save
// @Tags Registry
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body registry.Data true "Registry document"
// @Success 200 {object} registry.Data "Saved document"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Router /registry [put]
func (h *RegistryHandler) ReplaceRegistry(c *fiber.Ctx) error {
	var data registry.Data
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.svc.SaveRegistry(c.Context(), &data); err != nil {
		metrics.IncrementDocumentStoreError("registry")
		utils.LogRequestError(c, "REGISTRY_REPLACE", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save registry data"})
	}

	metrics.IncrementRegistryOperation("replace")
	return c.JSON(data)
}

// CreateEntry godoc
// @Summary Add registry entry
// @Description Append an entry to one of the carbon, rec, or ets lists
// @Tags Registry
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param type path string true "Registry type" Enums(carbon, rec, ets)
// @Param request body registry.Entry true "New entry"
// @Success 201 {object} registry.Data "Updated document"
// @Failure 400 {object} map[string]interface{} "Unknown registry type or invalid body"
// @Router /registry/{type} [post]
func (h *RegistryHandler) CreateEntry(c *fiber.Ctx) error {
	kind, err := registry.ParseKind(c.Params("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown registry type"})
	}

	var entry registry.Entry
	if err := c.BodyParser(&entry); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	data, err := h.svc.AddEntry(c.Context(), kind, entry)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Registry data not found"})
		}
		metrics.IncrementDocumentStoreError("registry")
		utils.LogRequestError(c, "REGISTRY_CREATE", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save registry data"})
	}

	metrics.IncrementRegistryOperation("create")
	return c.Status(fiber.StatusCreated).JSON(data)
}

// UpdateEntry godoc
// @Summary Update registry entry
// @Description Replace an entry identified by ID in one of the lists
// @Tags Registry
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param type path string true "Registry type" Enums(carbon, rec, ets)
// @Param id path string true "Entry ID"
// @Param request body registry.Entry true "Updated entry"
// @Success 200 {object} registry.Data "Updated document"
// @Failure 404 {object} map[string]interface{} "Entry not found"
// @Router /registry/{type}/{id} [put]
func (h *RegistryHandler) UpdateEntry(c *fiber.Ctx) error {
	kind, err := registry.ParseKind(c.Params("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown registry type"})
	}

	var entry registry.Entry
	if err := c.BodyParser(&entry); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	data, found, err := h.svc.UpdateEntry(c.Context(), kind, c.Params("id"), entry)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Registry data not found"})
		}
		metrics.IncrementDocumentStoreError("registry")
		utils.LogRequestError(c, "REGISTRY_UPDATE", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save registry data"})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Registry entry not found"})
	}

	metrics.IncrementRegistryOperation("update")
	return c.JSON(data)
}

// DeleteEntry godoc
// @Summary Delete registry entry
// @Description Remove an entry identified by ID from one of the lists
// @Tags Registry
// @Security BearerAuth
// @Produce json
// @Param type path string true "Registry type" Enums(carbon, rec, ets)
// @Param id path string true "Entry ID"
// @Success 200 {object} map[string]interface{} "Deletion result"
// @Failure 404 {object} map[string]interface{} "Entry not found"
// @Router /registry/{type}/{id} [delete]
func (h *RegistryHandler) DeleteEntry(c *fiber.Ctx) error {
	kind, err := registry.ParseKind(c.Params("type"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown registry type"})
	}

	found, err := h.svc.DeleteEntry(c.Context(), kind, c.Params("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Registry data not found"})
		}
		metrics.IncrementDocumentStoreError("registry")
		utils.LogRequestError(c, "REGISTRY_DELETE", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save registry data"})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Registry entry not found"})
	}

	metrics.IncrementRegistryOperation("delete")
	return c.JSON(fiber.Map{"deleted": true})
}
