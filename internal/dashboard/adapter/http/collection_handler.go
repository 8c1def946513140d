package http

import (
	"docdb-dashboard/internal/dashboard/domain/model"

	"github.com/gofiber/fiber/v2"
)

// ListCollections returns every collection with its document count and size
func (h *HTTPHandler) ListCollections(c *fiber.Ctx) error {
	ctx := c.UserContext()

	collections, err := h.DashboardUC.ListCollectionsWithStats(ctx)
	if err != nil {
		h.Log.WithContext(ctx).WithFields(map[string]interface{}{"error": err.Error()}).Error("Failed to fetch collections")
		return h.errorResponse(c, err, msgFetchCollections)
	}
	if collections == nil {
		collections = []model.CollectionDescriptor{}
	}

	return c.JSON(fiber.Map{"collections": collections})
}
