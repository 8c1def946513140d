package http

import (
	"errors"

	"docdb-dashboard/internal/dashboard/usecase"
	apperrors "docdb-dashboard/internal/shared/errors"
	"docdb-dashboard/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// Client-facing error messages. Details stay in the logs.
const (
	msgFetchCollections    = "Failed to fetch collections"
	msgExportCollection    = "Failed to export collection"
	msgExportCollections   = "Failed to export collections"
	msgBulkExport          = "Failed to process bulk export"
	msgNoCollections       = "No collections specified"
	msgCollectionNameArray = "Please provide an array of collection names"
)

// HTTPHandler serves the collection listing and export endpoints
type HTTPHandler struct {
	DashboardUC usecase.DashboardUsecaseInterface
	Log         logger.Logger
}

// NewDashboardHTTPHandler creates a new HTTPHandler
func NewDashboardHTTPHandler(dashboardUC usecase.DashboardUsecaseInterface, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		DashboardUC: dashboardUC,
		Log:         log,
	}
}

// RegisterRoutes registers the dashboard routes under /api
func (h *HTTPHandler) RegisterRoutes(router fiber.Router) {
	api := router.Group("/api")

	h.registerCollectionRoutes(api)
	h.registerExportRoutes(api)
}

// registerCollectionRoutes registers listing endpoints
func (h *HTTPHandler) registerCollectionRoutes(router fiber.Router) {
	router.Get("/collections", h.ListCollections)
}

// registerExportRoutes registers CSV and ZIP export endpoints
func (h *HTTPHandler) registerExportRoutes(router fiber.Router) {
	router.Get("/export/:collection", CollectionParamMiddleware(), h.ExportCollection)
	router.Post("/collections/export", h.ExportCollectionsCSV)
	router.Post("/export-bulk", h.ExportCollectionsZip)
}

// errorResponse writes {"error": message}. Configuration problems are
// reported with their own message so operators can see what is missing.
func (h *HTTPHandler) errorResponse(c *fiber.Ctx, err error, fallback string) error {
	status := fiber.StatusInternalServerError
	message := fallback

	var appErr *apperrors.AppError
	if apperrors.IsConfiguration(err) && errors.As(err, &appErr) {
		message = appErr.Message
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}
