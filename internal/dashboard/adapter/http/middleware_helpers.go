package http

import (
	"net/url"
	"time"

	"docdb-dashboard/internal/shared/logger"
	"docdb-dashboard/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
)

const collectionLocal = "collection"

// RequestContextMiddleware copies the request ID set by the requestid
// middleware into the Go context so loggers pick it up.
func RequestContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.GetRespHeader(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = c.Get(fiber.HeaderXRequestID)
		}
		if requestID != "" {
			c.Locals("requestID", requestID)
			c.SetUserContext(utils.WithRequestID(c.UserContext(), requestID))
		}
		return c.Next()
	}
}

// RequestLogger logs one line per request with status and latency
func RequestLogger(log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		entry := log.WithContext(c.UserContext()).WithFields(map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if status >= fiber.StatusInternalServerError {
			entry.Warn("HTTP request failed")
		} else {
			entry.Debug("HTTP request")
		}
		return err
	}
}

// CollectionParamMiddleware decodes the :collection path parameter and
// stores it in locals and the Go context
func CollectionParamMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		collection := fiberutils.CopyString(c.Params("collection"))
		if decoded, err := url.PathUnescape(collection); err == nil {
			collection = decoded
		}

		c.Locals(collectionLocal, collection)
		c.SetUserContext(utils.WithCollection(c.UserContext(), collection))
		return c.Next()
	}
}
