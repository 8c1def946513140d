package http

import (
	"encoding/json"
	"fmt"

	"docdb-dashboard/internal/dashboard/domain/model"
	"docdb-dashboard/internal/dashboard/usecase"
	"docdb-dashboard/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// ExportCollection streams one collection as a CSV attachment
func (h *HTTPHandler) ExportCollection(c *fiber.Ctx) error {
	ctx := c.UserContext()
	collection, _ := c.Locals(collectionLocal).(string)

	export, err := h.DashboardUC.ExportCollection(ctx, usecase.ExportCollectionRequest{Collection: collection})
	if err != nil {
		h.Log.WithContext(ctx).WithFields(map[string]interface{}{"error": err.Error()}).Error("Failed to export collection")
		return h.errorResponse(c, err, msgExportCollection)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, attachment(export.FileName))
	return c.SendString(export.Content)
}

// ExportCollectionsCSV returns the requested collections as an array of CSV payloads
func (h *HTTPHandler) ExportCollectionsCSV(c *fiber.Ctx) error {
	ctx := c.UserContext()

	req, ok := parseBulkRequest(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgCollectionNameArray})
	}

	exports, err := h.DashboardUC.ExportCollectionsCSV(ctx, req)
	if err != nil {
		if errors.IsValidation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgCollectionNameArray})
		}
		h.Log.WithContext(ctx).WithFields(map[string]interface{}{"error": err.Error()}).Error("Failed to export collections")
		return h.errorResponse(c, err, msgExportCollections)
	}
	if exports == nil {
		exports = []model.CollectionExport{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    exports,
	})
}

// ExportCollectionsZip returns the requested collections as a ZIP attachment
func (h *HTTPHandler) ExportCollectionsZip(c *fiber.Ctx) error {
	ctx := c.UserContext()

	req, ok := parseBulkRequest(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgNoCollections})
	}

	archive, err := h.DashboardUC.ExportCollectionsZip(ctx, req)
	if err != nil {
		if errors.IsValidation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgNoCollections})
		}
		h.Log.WithContext(ctx).WithFields(map[string]interface{}{"error": err.Error()}).Error("Failed to process bulk export")
		return h.errorResponse(c, err, msgBulkExport)
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, attachment(archive.FileName))
	return c.Send(archive.Data)
}

// parseBulkRequest decodes {"collections": [...]} regardless of the request
// content type. ok is false for malformed JSON or a non-array field.
func parseBulkRequest(c *fiber.Ctx) (usecase.BulkExportRequest, bool) {
	var req usecase.BulkExportRequest
	body := c.Body()
	if len(body) == 0 {
		return req, false
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, false
	}
	return req, true
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}
