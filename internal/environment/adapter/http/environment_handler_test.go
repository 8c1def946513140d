package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"docdb-dashboard/internal/environment/domain/model"
	"docdb-dashboard/internal/environment/usecase"
	"docdb-dashboard/internal/shared/errors"
	"docdb-dashboard/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEnvironmentUC is a testify mock of EnvironmentUsecaseInterface
type MockEnvironmentUC struct {
	mock.Mock
}

func (m *MockEnvironmentUC) ListEnvironments(ctx context.Context) ([]model.Environment, error) {
	args := m.Called(ctx)
	envs, _ := args.Get(0).([]model.Environment)
	return envs, args.Error(1)
}

func (m *MockEnvironmentUC) CreateEnvironment(ctx context.Context, req usecase.CreateEnvironmentRequest) (*model.Environment, error) {
	args := m.Called(ctx, req)
	env, _ := args.Get(0).(*model.Environment)
	return env, args.Error(1)
}

func (m *MockEnvironmentUC) UpdateEnvironment(ctx context.Context, req usecase.UpdateEnvironmentRequest) (*model.Environment, error) {
	args := m.Called(ctx, req)
	env, _ := args.Get(0).(*model.Environment)
	return env, args.Error(1)
}

func (m *MockEnvironmentUC) DeleteEnvironment(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEnvironmentUC) ActivateEnvironment(ctx context.Context, id string) (*model.Environment, error) {
	args := m.Called(ctx, id)
	env, _ := args.Get(0).(*model.Environment)
	return env, args.Error(1)
}

func (m *MockEnvironmentUC) RestoreActive(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newTestApp(uc usecase.EnvironmentUsecaseInterface) *fiber.App {
	app := fiber.New()
	NewEnvironmentHTTPHandler(uc, logger.NewLoggerWithConfig("error", "text")).RegisterRoutes(app)
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) == 0 {
		return resp.StatusCode, nil
	}
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestListEnvironments(t *testing.T) {
	uc := new(MockEnvironmentUC)
	uc.On("ListEnvironments", mock.Anything).Return([]model.Environment{
		{ID: "1", Name: "Production", Password: model.MaskedPassword, IsActive: true},
	}, nil)

	status, body := do(t, newTestApp(uc), "GET", "/api/environments", "")
	assert.Equal(t, 200, status)
	envs := body["environments"].([]interface{})
	require.Len(t, envs, 1)
	first := envs[0].(map[string]interface{})
	assert.Equal(t, "Production", first["name"])
	assert.Equal(t, "********", first["password"])
	assert.Equal(t, true, first["isActive"])
}

func TestListEnvironments_Empty(t *testing.T) {
	uc := new(MockEnvironmentUC)
	uc.On("ListEnvironments", mock.Anything).Return(nil, nil)

	status, body := do(t, newTestApp(uc), "GET", "/api/environments", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, []interface{}{}, body["environments"])
}

func TestCreateEnvironment(t *testing.T) {
	uc := new(MockEnvironmentUC)
	uc.On("CreateEnvironment", mock.Anything, mock.MatchedBy(func(req usecase.CreateEnvironmentRequest) bool {
		return req.Name == "Staging" && req.Port == "27017" && req.SSL
	})).Return(&model.Environment{ID: "new", Name: "Staging", Password: model.MaskedPassword}, nil)

	status, body := do(t, newTestApp(uc), "POST", "/api/environments",
		`{"name":"Staging","hostname":"staging-db.example.com","port":"27017","username":"admin","password":"pw","database":"staging","ssl":true}`)
	assert.Equal(t, 201, status)
	assert.Equal(t, "new", body["id"])
	uc.AssertExpectations(t)
}

func TestCreateEnvironment_Errors(t *testing.T) {
	ve := errors.NewValidationErrors().Add("port", "Port must be a number", "abc")

	tests := []struct {
		name    string
		body    string
		err     error
		status  int
		message string
	}{
		{"malformed body", `{"name":`, nil, 400, "Invalid request body"},
		{"validation", `{"name":"x"}`, ve, 400, "Invalid environment"},
		{"no secret", `{"name":"x"}`, errors.NewConfigurationError("ENVIRONMENTS_SECRET is not configured; refusing to store passwords in clear"), 500, "ENVIRONMENTS_SECRET is not configured; refusing to store passwords in clear"},
		{"store failure", `{"name":"x"}`, errors.NewInternalError("disk full"), 500, "Failed to save environment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockEnvironmentUC)
			uc.On("CreateEnvironment", mock.Anything, mock.Anything).Return(nil, tt.err)

			status, body := do(t, newTestApp(uc), "POST", "/api/environments", tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, body["error"])
		})
	}
}

func TestCreateEnvironment_ValidationDetails(t *testing.T) {
	uc := new(MockEnvironmentUC)
	ve := errors.NewValidationErrors().Add("port", "Port must be a number", "abc")
	uc.On("CreateEnvironment", mock.Anything, mock.Anything).Return(nil, ve)

	_, body := do(t, newTestApp(uc), "POST", "/api/environments", `{"port":"abc"}`)
	details := body["details"].([]interface{})
	require.Len(t, details, 1)
	assert.Equal(t, "port", details[0].(map[string]interface{})["field"])
}

func TestUpdateEnvironment(t *testing.T) {
	uc := new(MockEnvironmentUC)
	uc.On("UpdateEnvironment", mock.Anything, mock.MatchedBy(func(req usecase.UpdateEnvironmentRequest) bool {
		return req.ID == "abc" && req.Password == ""
	})).Return(&model.Environment{ID: "abc", Name: "Renamed"}, nil)
	uc.On("UpdateEnvironment", mock.Anything, mock.Anything).Return(nil, errors.NewNotFoundError("environment"))

	app := newTestApp(uc)

	status, body := do(t, app, "PUT", "/api/environments/abc", `{"name":"Renamed","hostname":"h","port":"1","username":"u","database":"d"}`)
	assert.Equal(t, 200, status)
	assert.Equal(t, "Renamed", body["name"])

	status, body = do(t, app, "PUT", "/api/environments/zzz", `{"name":"Renamed"}`)
	assert.Equal(t, 404, status)
	assert.Equal(t, "Environment not found", body["error"])
}

func TestDeleteEnvironment(t *testing.T) {
	uc := new(MockEnvironmentUC)
	uc.On("DeleteEnvironment", mock.Anything, "abc").Return(nil)
	uc.On("DeleteEnvironment", mock.Anything, "zzz").Return(errors.NewNotFoundError("environment"))

	app := newTestApp(uc)

	status, body := do(t, app, "DELETE", "/api/environments/abc", "")
	assert.Equal(t, 204, status)
	assert.Nil(t, body)

	status, _ = do(t, app, "DELETE", "/api/environments/zzz", "")
	assert.Equal(t, 404, status)
}

func TestActivateEnvironment(t *testing.T) {
	uc := new(MockEnvironmentUC)
	uc.On("ActivateEnvironment", mock.Anything, "abc").Return(&model.Environment{ID: "abc", IsActive: true}, nil)
	uc.On("ActivateEnvironment", mock.Anything, "zzz").Return(nil, errors.NewNotFoundError("environment"))

	app := newTestApp(uc)

	status, body := do(t, app, "POST", "/api/environments/abc/activate", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["isActive"])

	status, _ = do(t, app, "POST", "/api/environments/zzz/activate", "")
	assert.Equal(t, 404, status)
	uc.AssertExpectations(t)
}
