package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/lyricframe/api/internal/model"
	"github.com/lyricframe/api/internal/service"
	"github.com/lyricframe/api/pkg/response"
)

// MediaHandler exposes the synchronous helpers clients call while
// assembling a submission: palette extraction, audio probing and LRC
// inspection.
type MediaHandler struct {
	service   *service.VideoService
	validator *validator.Validate
}

func NewMediaHandler(svc *service.VideoService, v *validator.Validate) *MediaHandler {
	return &MediaHandler{
		service:   svc,
		validator: v,
	}
}

// ExtractColors handles POST /api/extract-colors
func (h *MediaHandler) ExtractColors(c *fiber.Ctx) error {
	var req model.ExtractColorsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	pal, err := h.service.ExtractColors(&req)
	if err != nil {
		return response.ValidationError(c, err.Error(), nil)
	}

	return response.OK(c, pal)
}

// AudioDuration handles GET /api/audio-duration?path=...
func (h *MediaHandler) AudioDuration(c *fiber.Ctx) error {
	path := c.Query("path")
	if path == "" {
		return response.ValidationError(c, "path query parameter is required", nil)
	}

	duration, err := h.service.AudioDuration(c.Context(), path)
	if err != nil {
		return response.ValidationError(c, err.Error(), nil)
	}

	return response.OK(c, fiber.Map{"duration": duration})
}

// LrcMetadata handles GET /api/lrc-metadata?path=...
func (h *MediaHandler) LrcMetadata(c *fiber.Ctx) error {
	path := c.Query("path")
	if path == "" {
		return response.ValidationError(c, "path query parameter is required", nil)
	}

	meta, events, err := h.service.LrcMetadata(path)
	if err != nil {
		return response.ValidationError(c, err.Error(), nil)
	}

	return response.OK(c, fiber.Map{
		"metadata": meta,
		"events":   events,
	})
}

// Catalog handles GET /api/config
func (h *MediaHandler) Catalog(c *fiber.Ctx) error {
	return response.OK(c, h.service.Catalog())
}
