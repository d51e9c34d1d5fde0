package assets

import (
	"errors"

	"asset-resolver/core/logger"
	"asset-resolver/core/resolver"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for asset resolution.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the asset routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/assets")
	group.Get("/status", h.HandleStatus)
	group.Post("/preload", h.HandlePreload)
	group.Post("/instantiate", h.HandleInstantiate)
	group.Delete("/cache", h.HandleClearCache)
	group.Get("/cache/stats", h.HandleStats)
	// Wildcard routes last so the fixed paths above keep winning.
	group.Get("/+", h.HandleFetch)
	group.Delete("/+", h.HandleRelease)
}

// HandleFetch resolves a key and streams the asset bytes.
// @Summary Fetch Asset
// @Description Resolves the key through the provider chain (bundle store, then local fallback), caches the result, and returns the asset bytes.
// @Tags assets
// @Produce octet-stream
// @Param key path string true "Asset key"
// @Success 200 {string} binary "Asset bytes"
// @Failure 400 {object} map[string]string "Invalid key"
// @Failure 404 {object} map[string]string "No provider resolved the key"
// @Router /assets/{key} [get]
func (h *Handler) HandleFetch(c *fiber.Ctx) error {
	key := c.Params("+")
	l := logger.WithRayID(h.service.logger, c)

	blob, err := h.service.Fetch(c.Context(), key)
	if err != nil {
		return respondError(c, l, key, err)
	}

	if blob.ContentType != "" {
		c.Set(fiber.HeaderContentType, blob.ContentType)
	}
	return c.Send(blob.Data)
}

// HandlePreload schedules a background load.
// @Summary Preload Asset
// @Description Starts a deduplicated background load for the key. Returns immediately; poll /assets/status for completion.
// @Tags assets
// @Produce json
// @Param key query string true "Asset key"
// @Success 202 {object} StatusReport
// @Failure 400 {object} map[string]string "Invalid key"
// @Router /assets/preload [post]
func (h *Handler) HandlePreload(c *fiber.Ctx) error {
	key := c.Query("key")
	l := logger.WithRayID(h.service.logger, c)

	if err := h.service.Preload(c.Context(), key); err != nil {
		return respondError(c, l, key, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(h.service.Status(key))
}

// HandleStatus reports a key's cache state.
// @Summary Asset Status
// @Description Reports whether the key is cached and whether a preload is in flight.
// @Tags assets
// @Produce json
// @Param key query string true "Asset key"
// @Success 200 {object} StatusReport
// @Router /assets/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status(c.Query("key")))
}

type instantiateRequest struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Parent string `json:"parent"`
}

// HandleInstantiate creates a live instance in the object graph.
// @Summary Instantiate Asset
// @Description Resolves the key (from cache when possible) and attaches a named instance under the given parent node.
// @Tags assets
// @Accept json
// @Produce json
// @Param request body instantiateRequest true "Instantiation request"
// @Success 201 {object} InstanceReport
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Key or parent not found"
// @Router /assets/instantiate [post]
func (h *Handler) HandleInstantiate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req instantiateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	report, err := h.service.Instantiate(c.Context(), req.Key, req.Name, req.Parent)
	if err != nil {
		return respondError(c, l, req.Key, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// HandleRelease drops the cached entry for a key.
// @Summary Release Asset
// @Description Removes the cached entry and releases the retained bundle handle. Idempotent.
// @Tags assets
// @Produce json
// @Param key path string true "Asset key"
// @Success 200 {object} StatusReport
// @Router /assets/{key} [delete]
func (h *Handler) HandleRelease(c *fiber.Ctx) error {
	key := c.Params("+")
	h.service.Release(key)
	return c.JSON(h.service.Status(key))
}

// HandleClearCache empties the whole cache.
// @Summary Clear Cache
// @Description Releases every retained handle and empties all cache tables.
// @Tags assets
// @Produce json
// @Success 200 {object} resolver.Stats
// @Router /assets/cache [delete]
func (h *Handler) HandleClearCache(c *fiber.Ctx) error {
	h.service.Clear()
	return c.JSON(h.service.Stats())
}

// HandleStats reports cache table sizes.
// @Summary Cache Stats
// @Tags assets
// @Produce json
// @Success 200 {object} resolver.Stats
// @Router /assets/cache/stats [get]
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	return c.JSON(h.service.Stats())
}

// respondError maps resolver errors onto HTTP statuses with a structured body
// naming the key.
func respondError(c *fiber.Ctx, l *zap.Logger, key string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, resolver.ErrInvalidKey):
		status = fiber.StatusBadRequest
	case errors.Is(err, resolver.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, resolver.ErrTypeMismatch):
		status = fiber.StatusConflict
	}
	logger.WithKey(l, key).Warn("Asset request failed", zap.Error(err))
	return c.Status(status).JSON(fiber.Map{
		"key":   key,
		"error": err.Error(),
	})
}
