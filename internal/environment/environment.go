package environment

import (
	"context"

	httpadapter "docdb-dashboard/internal/environment/adapter/http"
	badgerpersistence "docdb-dashboard/internal/environment/adapter/persistence/badger"
	"docdb-dashboard/internal/environment/config"
	"docdb-dashboard/internal/environment/domain/model"
	"docdb-dashboard/internal/environment/usecase"
	"docdb-dashboard/internal/shared/database"
	"docdb-dashboard/internal/shared/eventbus"
	"docdb-dashboard/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// EnvironmentModule owns the persisted connection profiles.
type EnvironmentModule struct {
	Config             *config.EnvironmentStoreConfig
	Store              *badgerpersistence.EnvironmentStore
	EnvironmentUsecase usecase.EnvironmentUsecaseInterface
	Handler            *httpadapter.HTTPHandler
	Logger             logger.Logger
}

// ActivatedEnvironment extracts the profile carried by an activation event.
func ActivatedEnvironment(event eventbus.Event) (*model.Environment, bool) {
	if event.Type != eventbus.EventEnvironmentActivated {
		return nil, false
	}
	env, ok := event.Payload.(*model.Environment)
	return env, ok && env != nil
}

// ConnectionSettings turns a profile into primary connection settings.
func ConnectionSettings(env *model.Environment) database.Settings {
	return database.Settings{
		URI:      env.ConnectionURI(),
		Database: env.Database,
		TLS:      env.SSL,
	}
}

// NewEnvironmentModule creates the module from environment variables.
// Profile changes are published on events.
func NewEnvironmentModule(log logger.Logger, events eventbus.Publisher) (*EnvironmentModule, error) {
	log.Info("Initializing Environment Module...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithFields(map[string]interface{}{"error": err.Error()}).Warn("Failed to load environment store config, using in-memory store")
		cfg = &config.EnvironmentStoreConfig{}
	}
	return NewEnvironmentModuleWithConfig(log, cfg, events)
}

// NewEnvironmentModuleWithConfig creates the module from an explicit configuration.
func NewEnvironmentModuleWithConfig(log logger.Logger, cfg *config.EnvironmentStoreConfig, events eventbus.Publisher) (*EnvironmentModule, error) {
	store, err := badgerpersistence.NewEnvironmentStore(cfg, log)
	if err != nil {
		return nil, err
	}

	uc := usecase.NewEnvironmentUsecase(store, events, log)

	log.Info("Environment Module initialized successfully.")
	return &EnvironmentModule{
		Config:             cfg,
		Store:              store,
		EnvironmentUsecase: uc,
		Handler:            httpadapter.NewEnvironmentHTTPHandler(uc, log),
		Logger:             log,
	}, nil
}

// RegisterRoutes mounts the environment API on router.
func (m *EnvironmentModule) RegisterRoutes(router fiber.Router) {
	m.Handler.RegisterRoutes(router)
}

// RestoreActive re-applies the stored active profile.
func (m *EnvironmentModule) RestoreActive(ctx context.Context) error {
	return m.EnvironmentUsecase.RestoreActive(ctx)
}

// Close closes the profile store.
func (m *EnvironmentModule) Close() error {
	return m.Store.Close()
}
