package http

import (
	"errors"

	"docdb-dashboard/internal/environment/domain/model"
	"docdb-dashboard/internal/environment/usecase"
	apperrors "docdb-dashboard/internal/shared/errors"
	"docdb-dashboard/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
)

const (
	msgEnvironmentNotFound = "Environment not found"
	msgInvalidEnvironment  = "Invalid environment"
	msgInvalidBody         = "Invalid request body"
	msgListEnvironments    = "Failed to fetch environments"
	msgSaveEnvironment     = "Failed to save environment"
	msgDeleteEnvironment   = "Failed to delete environment"
	msgActivateEnvironment = "Failed to activate environment"
)

// HTTPHandler serves the connection profile endpoints
type HTTPHandler struct {
	EnvironmentUC usecase.EnvironmentUsecaseInterface
	Log           logger.Logger
}

// NewEnvironmentHTTPHandler creates a new HTTPHandler
func NewEnvironmentHTTPHandler(uc usecase.EnvironmentUsecaseInterface, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{EnvironmentUC: uc, Log: log}
}

// RegisterRoutes registers the environment routes under /api/environments
func (h *HTTPHandler) RegisterRoutes(router fiber.Router) {
	envs := router.Group("/api/environments")

	envs.Get("/", h.ListEnvironments)
	envs.Post("/", h.CreateEnvironment)
	envs.Put("/:id", h.UpdateEnvironment)
	envs.Delete("/:id", h.DeleteEnvironment)
	envs.Post("/:id/activate", h.ActivateEnvironment)
}

// ListEnvironments returns every profile sorted by name
func (h *HTTPHandler) ListEnvironments(c *fiber.Ctx) error {
	ctx := c.UserContext()

	envs, err := h.EnvironmentUC.ListEnvironments(ctx)
	if err != nil {
		return h.errorResponse(c, err, msgListEnvironments)
	}
	if envs == nil {
		envs = []model.Environment{}
	}
	return c.JSON(fiber.Map{"environments": envs})
}

// CreateEnvironment stores a new profile
func (h *HTTPHandler) CreateEnvironment(c *fiber.Ctx) error {
	var req usecase.CreateEnvironmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgInvalidBody})
	}

	env, err := h.EnvironmentUC.CreateEnvironment(c.UserContext(), req)
	if err != nil {
		return h.errorResponse(c, err, msgSaveEnvironment)
	}
	return c.Status(fiber.StatusCreated).JSON(env)
}

// UpdateEnvironment replaces a profile's editable fields
func (h *HTTPHandler) UpdateEnvironment(c *fiber.Ctx) error {
	var req usecase.UpdateEnvironmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgInvalidBody})
	}
	req.ID = fiberutils.CopyString(c.Params("id"))

	env, err := h.EnvironmentUC.UpdateEnvironment(c.UserContext(), req)
	if err != nil {
		return h.errorResponse(c, err, msgSaveEnvironment)
	}
	return c.JSON(env)
}

// DeleteEnvironment removes a profile
func (h *HTTPHandler) DeleteEnvironment(c *fiber.Ctx) error {
	id := fiberutils.CopyString(c.Params("id"))

	if err := h.EnvironmentUC.DeleteEnvironment(c.UserContext(), id); err != nil {
		return h.errorResponse(c, err, msgDeleteEnvironment)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ActivateEnvironment makes a profile the active one
func (h *HTTPHandler) ActivateEnvironment(c *fiber.Ctx) error {
	id := fiberutils.CopyString(c.Params("id"))

	env, err := h.EnvironmentUC.ActivateEnvironment(c.UserContext(), id)
	if err != nil {
		return h.errorResponse(c, err, msgActivateEnvironment)
	}
	return c.JSON(env)
}

func (h *HTTPHandler) errorResponse(c *fiber.Ctx, err error, fallback string) error {
	var ve *apperrors.ValidationErrors
	var appErr *apperrors.AppError

	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   msgInvalidEnvironment,
			"details": ve.Errors,
		})
	case apperrors.IsValidation(err) && errors.As(err, &appErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": appErr.Message})
	case apperrors.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgEnvironmentNotFound})
	case apperrors.IsConfiguration(err) && errors.As(err, &appErr):
		h.Log.WithContext(c.UserContext()).Error(fallback, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": appErr.Message})
	}

	h.Log.WithContext(c.UserContext()).Error(fallback, "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
}
