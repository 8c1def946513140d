package http

import (
	"context"

	"docdb-dashboard/internal/dashboard/domain/model"
	"docdb-dashboard/internal/dashboard/usecase"
	"docdb-dashboard/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// MockDashboardUC is a function-field DashboardUsecaseInterface double
type MockDashboardUC struct {
	ListCollectionsWithStatsFn func(ctx context.Context) ([]model.CollectionDescriptor, error)
	ExportCollectionFn         func(ctx context.Context, req usecase.ExportCollectionRequest) (*model.CSVExport, error)
	ExportCollectionsCSVFn     func(ctx context.Context, req usecase.BulkExportRequest) ([]model.CollectionExport, error)
	ExportCollectionsZipFn     func(ctx context.Context, req usecase.BulkExportRequest) (*model.BulkArchive, error)
	HealthCheckFn              func(ctx context.Context) error
}

func (m *MockDashboardUC) ListCollectionsWithStats(ctx context.Context) ([]model.CollectionDescriptor, error) {
	if m.ListCollectionsWithStatsFn != nil {
		return m.ListCollectionsWithStatsFn(ctx)
	}
	return []model.CollectionDescriptor{}, nil
}

func (m *MockDashboardUC) ExportCollection(ctx context.Context, req usecase.ExportCollectionRequest) (*model.CSVExport, error) {
	if m.ExportCollectionFn != nil {
		return m.ExportCollectionFn(ctx, req)
	}
	return &model.CSVExport{Collection: req.Collection, FileName: req.Collection + ".csv"}, nil
}

func (m *MockDashboardUC) ExportCollectionsCSV(ctx context.Context, req usecase.BulkExportRequest) ([]model.CollectionExport, error) {
	if m.ExportCollectionsCSVFn != nil {
		return m.ExportCollectionsCSVFn(ctx, req)
	}
	return []model.CollectionExport{}, nil
}

func (m *MockDashboardUC) ExportCollectionsZip(ctx context.Context, req usecase.BulkExportRequest) (*model.BulkArchive, error) {
	if m.ExportCollectionsZipFn != nil {
		return m.ExportCollectionsZipFn(ctx, req)
	}
	return &model.BulkArchive{FileName: "collections.zip"}, nil
}

func (m *MockDashboardUC) HealthCheck(ctx context.Context) error {
	if m.HealthCheckFn != nil {
		return m.HealthCheckFn(ctx)
	}
	return nil
}

// TestLogger implements logger.Logger and discards everything
type TestLogger struct{}

func (TestLogger) Debug(args ...interface{})                              {}
func (TestLogger) Info(args ...interface{})                               {}
func (TestLogger) Error(args ...interface{})                              {}
func (TestLogger) Warn(args ...interface{})                               {}
func (TestLogger) Debugf(format string, args ...interface{})              {}
func (TestLogger) Infof(format string, args ...interface{})               {}
func (TestLogger) Errorf(format string, args ...interface{})              {}
func (TestLogger) Warnf(format string, args ...interface{})               {}
func (TestLogger) Fatal(args ...interface{})                              {}
func (TestLogger) Fatalf(format string, args ...interface{})              {}
func (TestLogger) WithFields(fields map[string]interface{}) logger.Logger { return TestLogger{} }
func (TestLogger) WithContext(ctx context.Context) logger.Logger          { return TestLogger{} }
func (TestLogger) WithComponent(component string) logger.Logger           { return TestLogger{} }

// newTestApp wires a handler around uc on a fresh Fiber app
func newTestApp(uc usecase.DashboardUsecaseInterface) *fiber.App {
	app := fiber.New()
	h := NewDashboardHTTPHandler(uc, TestLogger{})
	h.RegisterRoutes(app)
	return app
}
