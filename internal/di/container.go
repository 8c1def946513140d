package di

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"docdb-dashboard/internal/dashboard"
	"docdb-dashboard/internal/environment"
	"docdb-dashboard/internal/shared/eventbus"
	"docdb-dashboard/internal/shared/logger"
)

// Container represents a dependency injection container with proper lifecycle management
type Container struct {
	mu        sync.RWMutex
	services  map[reflect.Type]interface{}
	factories map[reflect.Type]func() (interface{}, error)
	// Module instances
	DashboardModule   *dashboard.DashboardModule
	EnvironmentModule *environment.EnvironmentModule
	// Cross-module events
	EventBus *eventbus.EventBus
	// Logger
	Logger logger.Logger
}

// NewContainer creates a new DI container
func NewContainer(log logger.Logger) *Container {
	if log == nil {
		log = logger.NewLogger()
	}
	return &Container{
		services:  make(map[reflect.Type]interface{}),
		factories: make(map[reflect.Type]func() (interface{}, error)),
		EventBus:  eventbus.NewEventBus(log),
		Logger:    log,
	}
}

// InitializeDashboard initializes the listing and export module
func (c *Container) InitializeDashboard() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := dashboard.NewDashboardModule(c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create dashboard module: %w", err)
	}

	c.DashboardModule = m
	c.services[reflect.TypeOf(*m)] = m
	return nil
}

// InitializeEnvironments initializes the connection profile module and
// subscribes the dashboard to activations so the primary connection follows
// the active profile.
func (c *Container) InitializeEnvironments() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.DashboardModule == nil {
		return fmt.Errorf("dashboard module must be initialized before environment module")
	}

	dash := c.DashboardModule
	c.EventBus.Subscribe(eventbus.EventEnvironmentActivated, func(ctx context.Context, event eventbus.Event) error {
		env, ok := environment.ActivatedEnvironment(event)
		if !ok {
			return fmt.Errorf("unexpected %s payload %T", event.Type, event.Payload)
		}
		dash.SwitchPrimary(ctx, environment.ConnectionSettings(env))
		return nil
	})

	m, err := environment.NewEnvironmentModule(c.Logger, c.EventBus)
	if err != nil {
		return fmt.Errorf("failed to create environment module: %w", err)
	}

	c.EnvironmentModule = m
	c.services[reflect.TypeOf(*m)] = m
	return nil
}

// Register registers a service instance
func (c *Container) Register(service interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	serviceType := reflect.TypeOf(service)
	if serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}

	c.services[serviceType] = service
	return nil
}

// RegisterFactory registers a factory function for a service
func (c *Container) RegisterFactory(serviceType reflect.Type, factory func() (interface{}, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.factories[serviceType] = factory
	return nil
}

// Resolve resolves a service by type
func (c *Container) Resolve(serviceType reflect.Type) (interface{}, error) {
	if serviceType != nil && serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}

	c.mu.RLock()
	if service, exists := c.services[serviceType]; exists {
		c.mu.RUnlock()
		return service, nil
	}
	factory, exists := c.factories[serviceType]
	c.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("service of type %v not registered", serviceType)
	}

	service, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	c.mu.Lock()
	c.services[serviceType] = service
	c.mu.Unlock()

	return service, nil
}

// GetService is a generic helper for resolving services
func GetService[T any](c *Container) (T, error) {
	var zero T
	service, err := c.Resolve(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return zero, err
	}

	if typedService, ok := service.(T); ok {
		return typedService, nil
	}
	return zero, fmt.Errorf("service is not of expected type %T", zero)
}

// GetDashboardModule returns the dashboard module instance
func (c *Container) GetDashboardModule() *dashboard.DashboardModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.DashboardModule
}

// GetEnvironmentModule returns the environment module instance
func (c *Container) GetEnvironmentModule() *environment.EnvironmentModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.EnvironmentModule
}

// HealthCheck pings the primary database
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.DashboardModule == nil {
		return fmt.Errorf("dashboard module is not initialized")
	}
	if err := c.DashboardModule.HealthCheck(ctx); err != nil {
		return fmt.Errorf("MongoDB health check failed: %w", err)
	}
	return nil
}

// Cleanup shuts modules down in reverse order of initialization
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if c.EnvironmentModule != nil {
		if err := c.EnvironmentModule.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close environment store: %w", err))
		}
		c.EnvironmentModule = nil
	}

	if c.DashboardModule != nil {
		if err := c.DashboardModule.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close dashboard connections: %w", err))
		}
		c.DashboardModule = nil
	}

	for _, service := range c.services {
		if cleaner, ok := service.(interface{ Cleanup(context.Context) error }); ok {
			if err := cleaner.Cleanup(ctx); err != nil {
				errs = append(errs, fmt.Errorf("failed to cleanup service: %w", err))
			}
		}
	}

	c.services = make(map[reflect.Type]interface{})
	c.factories = make(map[reflect.Type]func() (interface{}, error))

	return errors.Join(errs...)
}

// Close gracefully shuts down all services in the container with timeout
func (c *Container) Close() error {
	c.Logger.Info("Closing DI Container resources...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		c.Logger.WithFields(map[string]interface{}{"error": err.Error()}).Warn("Cleanup errors occurred")
		return err
	}

	c.Logger.Info("DI Container resources closed.")
	return nil
}
