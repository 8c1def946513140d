package usecase

import (
	"context"
	"time"

	"docdb-dashboard/internal/dashboard/domain/model"
	"docdb-dashboard/internal/dashboard/domain/repository"
	"docdb-dashboard/internal/dashboard/domain/service"
	"docdb-dashboard/internal/shared/errors"
	"docdb-dashboard/internal/shared/logger"
	"docdb-dashboard/internal/shared/utils"

	"golang.org/x/sync/errgroup"
)

const docDBUnconfigured = "Database connection string not configured"

// DashboardUsecaseInterface defines the contract for listing and exporting collections
type DashboardUsecaseInterface interface {
	// Listing
	ListCollectionsWithStats(ctx context.Context) ([]model.CollectionDescriptor, error)

	// Exports
	ExportCollection(ctx context.Context, req ExportCollectionRequest) (*model.CSVExport, error)
	ExportCollectionsCSV(ctx context.Context, req BulkExportRequest) ([]model.CollectionExport, error)
	ExportCollectionsZip(ctx context.Context, req BulkExportRequest) (*model.BulkArchive, error)

	// Health
	HealthCheck(ctx context.Context) error
}

// ProgressFunc is called once per collection of a bulk ZIP export, after it
// was either serialized or skipped.
type ProgressFunc func(collection string, err error)

// Dependencies groups what the dashboard usecase is built from.
// DocDB may be nil when no export target is configured; StatsCache is optional.
type Dependencies struct {
	Primary    repository.CollectionRepository
	DocDB      repository.CollectionRepository
	Serializer service.CSVSerializer
	Packager   service.ArchivePackager
	StatsCache repository.StatsCache
	StatsTTL   time.Duration
	Progress   ProgressFunc
	Logger     logger.Logger
}

// DashboardUsecase implements collection listing and CSV exports
type DashboardUsecase struct {
	primary    repository.CollectionRepository
	docdb      repository.CollectionRepository
	serializer service.CSVSerializer
	packager   service.ArchivePackager
	statsCache repository.StatsCache
	statsTTL   time.Duration
	progress   ProgressFunc
	logger     logger.Logger
	now        func() time.Time
}

// NewDashboardUsecase creates a new DashboardUsecase
func NewDashboardUsecase(deps Dependencies) *DashboardUsecase {
	if deps.Serializer == nil {
		deps.Serializer = service.NewCSVSerializer()
	}
	if deps.Packager == nil {
		deps.Packager = service.NewArchivePackager()
	}
	return &DashboardUsecase{
		primary:    deps.Primary,
		docdb:      deps.DocDB,
		serializer: deps.Serializer,
		packager:   deps.Packager,
		statsCache: deps.StatsCache,
		statsTTL:   deps.StatsTTL,
		progress:   deps.Progress,
		logger:     deps.Logger.WithComponent("dashboard_usecase"),
		now:        time.Now,
	}
}

var _ DashboardUsecaseInterface = (*DashboardUsecase)(nil)

// ListCollectionsWithStats lists every collection and looks up its stats concurrently.
// Output order follows the database's listing order.
func (uc *DashboardUsecase) ListCollectionsWithStats(ctx context.Context) ([]model.CollectionDescriptor, error) {
	ctx = utils.WithOperation(ctx, "list_collections")

	names, err := uc.primary.ListCollections(ctx)
	if err != nil {
		uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"error": err.Error()}).Error("Failed to list collections")
		return nil, err
	}

	descriptors := make([]model.CollectionDescriptor, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			stats := uc.collectionStats(utils.WithCollection(gctx, name), name)
			descriptors[i] = model.NewCollectionDescriptor(name, stats)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"collections": len(descriptors)}).Debug("Listed collections")
	return descriptors, nil
}

// collectionStats reads through the optional cache.
func (uc *DashboardUsecase) collectionStats(ctx context.Context, name string) model.CollectionStats {
	if uc.statsCache != nil {
		stats, ok, err := uc.statsCache.Get(ctx, name)
		if err != nil {
			uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"error": err.Error()}).Debug("Stats cache read failed")
		} else if ok {
			return stats
		}
	}

	stats := uc.primary.GetCollectionStats(ctx, name)

	if uc.statsCache != nil {
		if err := uc.statsCache.Set(ctx, name, stats, uc.statsTTL); err != nil {
			uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"error": err.Error()}).Debug("Stats cache write failed")
		}
	}
	return stats
}

// ExportCollection renders one collection of the primary target as CSV
func (uc *DashboardUsecase) ExportCollection(ctx context.Context, req ExportCollectionRequest) (*model.CSVExport, error) {
	ctx = utils.WithCollection(utils.WithOperation(ctx, "export_csv"), req.Collection)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	content, count, err := uc.exportOne(ctx, uc.primary, req.Collection)
	if err != nil {
		uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"error": err.Error()}).Error("Failed to export collection")
		return nil, err
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"documents": count}).Info("Exported collection")
	return &model.CSVExport{
		Collection:    req.Collection,
		Content:       content,
		DocumentCount: count,
		FileName:      model.CSVFileName(req.Collection, uc.now()),
	}, nil
}

// ExportCollectionsCSV exports each requested collection of the DocumentDB
// target. The first failure aborts the whole request.
func (uc *DashboardUsecase) ExportCollectionsCSV(ctx context.Context, req BulkExportRequest) ([]model.CollectionExport, error) {
	ctx = utils.WithOperation(ctx, "export_csv_array")

	names, err := req.Names()
	if err != nil {
		return nil, err
	}
	if uc.docdb == nil {
		return nil, errors.NewConfigurationError(docDBUnconfigured).WithComponent("dashboard_usecase")
	}

	exports := make([]model.CollectionExport, 0, len(names))
	for _, name := range names {
		cctx := utils.WithCollection(ctx, name)
		content, count, err := uc.exportOne(cctx, uc.docdb, name)
		if err != nil {
			uc.logger.WithContext(cctx).WithFields(map[string]interface{}{"error": err.Error()}).Error("Failed to export collection")
			return nil, err
		}
		exports = append(exports, model.CollectionExport{
			CollectionName: name,
			CSV:            content,
			DocumentCount:  count,
		})
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"collections": len(exports)}).Info("Exported collections as CSV array")
	return exports, nil
}

// ExportCollectionsZip bundles the requested collections of the primary
// target into one archive. A collection that fails is logged and left out.
func (uc *DashboardUsecase) ExportCollectionsZip(ctx context.Context, req BulkExportRequest) (*model.BulkArchive, error) {
	ctx = utils.WithOperation(ctx, "export_zip")

	names, err := req.Names()
	if err != nil {
		return nil, err
	}

	if err := uc.primary.Ping(ctx); err != nil {
		uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"error": err.Error()}).Error("Database unavailable for bulk export")
		return nil, err
	}

	failed := &errors.PartialFailure{}
	entries := make([]model.ExportEntry, 0, len(names))
	included := make([]string, 0, len(names))
	for _, name := range names {
		cctx := utils.WithCollection(ctx, name)
		content, _, err := uc.exportOne(cctx, uc.primary, name)
		if uc.progress != nil {
			uc.progress(name, err)
		}
		if err != nil {
			uc.logger.WithContext(cctx).WithFields(map[string]interface{}{"error": err.Error()}).Warn("Skipping collection in bulk export")
			failed.Add(name, err)
			continue
		}
		entries = append(entries, model.ExportEntry{Name: name, Content: content})
		included = append(included, name)
	}

	data, err := uc.packager.Pack(entries)
	if err != nil {
		uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"error": err.Error()}).Error("Failed to build archive")
		return nil, err
	}

	archive := &model.BulkArchive{
		Data:     data,
		FileName: model.ArchiveFileName(uc.now()),
		Included: included,
	}
	if failed.HasFailures() {
		archive.Failed = failed
		uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"failed": failed.Collections()}).Warn(failed.Error())
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"included": len(included),
		"bytes":    len(data),
	}).Info("Built bulk export archive")
	return archive, nil
}

// HealthCheck pings the primary target
func (uc *DashboardUsecase) HealthCheck(ctx context.Context) error {
	return uc.primary.Ping(ctx)
}

// exportOne fetches and serializes one collection. Empty collections yield "".
func (uc *DashboardUsecase) exportOne(ctx context.Context, repo repository.CollectionRepository, name string) (string, int, error) {
	docs, err := repo.GetCollectionDocuments(ctx, name)
	if err != nil {
		return "", 0, err
	}
	content, err := uc.serializer.ToCSV(docs)
	if err != nil {
		return "", 0, err
	}
	return content, len(docs), nil
}
