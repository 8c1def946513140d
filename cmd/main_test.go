package main

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"docdb-dashboard/internal/di"
	"docdb-dashboard/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoint_Unconfigured(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("MONGODB_HOST", "")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("ENVIRONMENTS_PATH", "")

	log := logger.NewLoggerWithConfig("error", "text")
	container := di.NewContainer(log)
	require.NoError(t, container.InitializeDashboard())
	require.NoError(t, container.InitializeEnvironments())
	defer container.Close()

	app := newApp(container, log, &ServerConfig{BodyLimit: 1 << 20, ShutdownTimeout: time.Second})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "UNHEALTHY", body["status"])
	assert.Contains(t, body["error"], "MongoDB connection is not configured")

	resp, err = app.Test(httptest.NewRequest("GET", "/api/environments", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/no/such/route", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}
