package dashboard

import (
	"context"
	"time"

	httpadapter "docdb-dashboard/internal/dashboard/adapter/http"
	"docdb-dashboard/internal/dashboard/adapter/persistence/cache"
	mongodbpersistence "docdb-dashboard/internal/dashboard/adapter/persistence/mongodb"
	"docdb-dashboard/internal/dashboard/config"
	"docdb-dashboard/internal/dashboard/domain/repository"
	"docdb-dashboard/internal/dashboard/domain/service"
	"docdb-dashboard/internal/dashboard/usecase"
	"docdb-dashboard/internal/shared/database"
	"docdb-dashboard/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// DashboardModule owns the collection listing and export stack.
type DashboardModule struct {
	Config           *config.DashboardConfig
	Primary          *database.ConnectionManager // Target listed and exported by default
	DocDB            *database.ConnectionManager // Target of the CSV array export
	PrimaryRepo      repository.CollectionRepository
	DocDBRepo        repository.CollectionRepository
	StatsCache       *cache.RedisStatsCache // nil when Redis is disabled
	DashboardUsecase usecase.DashboardUsecaseInterface
	Handler          *httpadapter.HTTPHandler
	Logger           logger.Logger

	redisClient *redis.Client
}

// PrimarySettings maps the primary MongoDB configuration to connection settings.
func PrimarySettings(cfg config.MongoConfig) database.Settings {
	return database.Settings{
		Name:                "primary",
		URI:                 cfg.ConnectionURI(),
		Database:            cfg.Database,
		TLS:                 cfg.SSL,
		ConnectTimeout:      cfg.ConnectTimeout,
		UnconfiguredMessage: "MongoDB connection is not configured",
	}
}

// DocDBSettings maps the DocumentDB export target to connection settings.
func DocDBSettings(cfg config.DocDBConfig, connectTimeout time.Duration) database.Settings {
	return database.Settings{
		Name:                "docdb",
		URI:                 cfg.ConnectionString,
		Database:            cfg.DatabaseName,
		TLS:                 cfg.SSL,
		ConnectTimeout:      connectTimeout,
		UnconfiguredMessage: "Database connection string not configured",
	}
}

// NewDashboardModule creates and initializes the dashboard module.
func NewDashboardModule(log logger.Logger) (*DashboardModule, error) {
	log.Info("Initializing Dashboard Module...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithFields(map[string]interface{}{"error": err.Error()}).Warn("Failed to load dashboard config from environment, using defaults")
		cfg = config.DefaultDashboardConfig()
	}
	return NewDashboardModuleWithConfig(log, cfg)
}

// NewDashboardModuleWithConfig creates the module from an explicit configuration.
// No connection is opened here; targets are dialed on first use.
func NewDashboardModuleWithConfig(log logger.Logger, cfg *config.DashboardConfig) (*DashboardModule, error) {
	if cfg == nil {
		cfg = config.DefaultDashboardConfig()
	}

	if !cfg.Mongo.IsConfigured() {
		log.Warn("MongoDB connection is not configured; listing and export requests will fail until it is")
	}

	primary := database.NewConnectionManager(PrimarySettings(cfg.Mongo), log)
	docdb := database.NewConnectionManager(DocDBSettings(cfg.DocDB, cfg.Mongo.ConnectTimeout), log)

	primaryRepo := mongodbpersistence.NewCollectionRepository(primary, log)
	docdbRepo := mongodbpersistence.NewCollectionRepository(docdb, log)

	m := &DashboardModule{
		Config:      cfg,
		Primary:     primary,
		DocDB:       docdb,
		PrimaryRepo: primaryRepo,
		DocDBRepo:   docdbRepo,
		Logger:      log,
	}

	deps := usecase.Dependencies{
		Primary:    primaryRepo,
		DocDB:      docdbRepo,
		Serializer: service.NewCSVSerializer(),
		Packager:   service.NewArchivePackager(),
		StatsTTL:   cfg.Redis.StatsTTL,
		Logger:     log,
	}

	if cfg.Redis.Enabled {
		m.redisClient = config.NewRedisClient(&cfg.Redis)
		m.StatsCache = cache.NewRedisStatsCache(m.redisClient, primary.Settings().Database, log)
		deps.StatsCache = m.StatsCache
		log.WithFields(map[string]interface{}{"addr": cfg.Redis.GetAddr()}).Info("Redis stats cache enabled")
	}

	m.DashboardUsecase = usecase.NewDashboardUsecase(deps)
	m.Handler = httpadapter.NewDashboardHTTPHandler(m.DashboardUsecase, log)

	log.Info("Dashboard Module initialized successfully.")
	return m, nil
}

// RegisterRoutes mounts the dashboard API on router.
func (m *DashboardModule) RegisterRoutes(router fiber.Router) {
	m.Handler.RegisterRoutes(router)
}

// SwitchPrimary re-points the primary target and drops cached stats.
func (m *DashboardModule) SwitchPrimary(ctx context.Context, settings database.Settings) {
	m.Primary.Reconfigure(ctx, settings)

	if m.StatsCache != nil {
		m.StatsCache.SetNamespace(m.Primary.Settings().Database)
		if err := m.StatsCache.Flush(ctx); err != nil {
			m.Logger.WithFields(map[string]interface{}{"error": err.Error()}).Warn("Failed to flush stats cache after target switch")
		}
	}
}

// HealthCheck pings the primary target.
func (m *DashboardModule) HealthCheck(ctx context.Context) error {
	return m.DashboardUsecase.HealthCheck(ctx)
}

// Close releases all connections held by the module.
func (m *DashboardModule) Close(ctx context.Context) error {
	var firstErr error
	if err := m.Primary.Close(ctx); err != nil {
		firstErr = err
	}
	if err := m.DocDB.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if m.redisClient != nil {
		if err := m.redisClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
