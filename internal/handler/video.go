package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/lyricframe/api/internal/model"
	"github.com/lyricframe/api/internal/service"
	"github.com/lyricframe/api/pkg/response"
)

type VideoHandler struct {
	service   *service.VideoService
	validator *validator.Validate
}

func NewVideoHandler(svc *service.VideoService, v *validator.Validate) *VideoHandler {
	return &VideoHandler{
		service:   svc,
		validator: v,
	}
}

// Generate handles POST /api/generate
func (h *VideoHandler) Generate(c *fiber.Ctx) error {
	var req model.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.SubmitGenerate(c.Context(), &req)
	if err != nil {
		if isInputError(err) {
			return response.ValidationError(c, err.Error(), nil)
		}
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// Preview handles POST /api/preview
func (h *VideoHandler) Preview(c *fiber.Ctx) error {
	var req model.PreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.SubmitPreview(c.Context(), &req)
	if err != nil {
		if isInputError(err) {
			return response.ValidationError(c, err.Error(), nil)
		}
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// Status handles GET /api/tasks/:taskId
func (h *VideoHandler) Status(c *fiber.Ctx) error {
	taskID := c.Params("taskId")
	if taskID == "" {
		return response.ValidationError(c, "Task ID is required", nil)
	}

	task, err := h.service.GetStatus(taskID)
	if err != nil {
		return response.NotFound(c, "Task not found")
	}

	return response.OK(c, task)
}

// isInputError distinguishes submission mistakes from server faults.
func isInputError(err error) bool {
	var inputErr *service.InputError
	return errors.As(err, &inputErr)
}
