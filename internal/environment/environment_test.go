package environment

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"docdb-dashboard/internal/environment/config"
	"docdb-dashboard/internal/environment/domain/model"
	"docdb-dashboard/internal/shared/database"
	"docdb-dashboard/internal/shared/eventbus"
	"docdb-dashboard/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionSettings(t *testing.T) {
	s := ConnectionSettings(&model.Environment{
		Hostname: "prod-db.example.com",
		Port:     "27017",
		Username: "admin",
		Password: "pw",
		Database: "prod-db",
		SSL:      true,
	})
	assert.Equal(t, "mongodb://admin:pw@prod-db.example.com:27017/", s.URI)
	assert.Equal(t, "prod-db", s.Database)
	assert.True(t, s.TLS)
}

func TestActivatedEnvironment(t *testing.T) {
	env := &model.Environment{ID: "1"}

	got, ok := ActivatedEnvironment(eventbus.NewEvent(eventbus.EventEnvironmentActivated, "test", env))
	assert.True(t, ok)
	assert.Same(t, env, got)

	_, ok = ActivatedEnvironment(eventbus.NewEvent(eventbus.EventEnvironmentDeleted, "test", "1"))
	assert.False(t, ok)
}

func TestEnvironmentModule_CreateAndActivate(t *testing.T) {
	log := logger.NewLoggerWithConfig("error", "text")
	bus := eventbus.NewEventBus(log)

	var applied []database.Settings
	bus.Subscribe(eventbus.EventEnvironmentActivated, func(ctx context.Context, event eventbus.Event) error {
		env, ok := ActivatedEnvironment(event)
		require.True(t, ok)
		applied = append(applied, ConnectionSettings(env))
		return nil
	})

	m, err := NewEnvironmentModuleWithConfig(log, &config.EnvironmentStoreConfig{Secret: "s3cret"}, bus)
	require.NoError(t, err)
	defer m.Close()

	app := fiber.New()
	m.RegisterRoutes(app)

	req := httptest.NewRequest("POST", "/api/environments", strings.NewReader(
		`{"name":"Production","hostname":"prod-db.example.com","port":"27017","username":"admin","password":"pw","database":"prod-db","ssl":true}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode)

	var created model.Environment
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.MaskedPassword, created.Password)

	resp, err = app.Test(httptest.NewRequest("POST", "/api/environments/"+created.ID+"/activate", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	require.Len(t, applied, 1)
	assert.Equal(t, "mongodb://admin:pw@prod-db.example.com:27017/", applied[0].URI)

	require.NoError(t, m.RestoreActive(context.Background()))
	assert.Len(t, applied, 2)
}

func TestEnvironmentModule_NoSecret(t *testing.T) {
	m, err := NewEnvironmentModuleWithConfig(logger.NewLoggerWithConfig("error", "text"), &config.EnvironmentStoreConfig{}, nil)
	require.NoError(t, err)
	defer m.Close()

	app := fiber.New()
	m.RegisterRoutes(app)

	req := httptest.NewRequest("POST", "/api/environments", strings.NewReader(
		`{"name":"Production","hostname":"h","port":"27017","username":"admin","password":"pw","database":"d"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "ENVIRONMENTS_SECRET")
}
