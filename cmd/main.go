package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	dashboardhttp "docdb-dashboard/internal/dashboard/adapter/http"
	"docdb-dashboard/internal/di"
	"docdb-dashboard/internal/shared/logger"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"localhost"`
	Port            string        `env:"SERVER_PORT" envDefault:"3000"`
	BodyLimit       int           `env:"SERVER_BODY_LIMIT" envDefault:"4194304"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	serverCfg := &ServerConfig{}
	if err := env.Parse(serverCfg); err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	appLogger := logger.NewLogger()
	appLogger.Info("Application configuration loaded successfully")

	container := di.NewContainer(appLogger)
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.WithFields(map[string]interface{}{"error": err.Error()}).Error("Failed to close container")
		}
	}()

	if err := container.InitializeDashboard(); err != nil {
		appLogger.Fatalf("Failed to initialize dashboard module: %v", err)
	}
	if err := container.InitializeEnvironments(); err != nil {
		appLogger.Fatalf("Failed to initialize environment module: %v", err)
	}

	restoreCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := container.GetEnvironmentModule().RestoreActive(restoreCtx); err != nil {
		appLogger.WithFields(map[string]interface{}{"error": err.Error()}).Warn("Failed to restore active environment; using configured connection")
	}
	cancel()

	app := newApp(container, appLogger, serverCfg)

	serverAddr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	appLogger.WithFields(map[string]interface{}{"addr": serverAddr}).Info("All modules initialized. Starting HTTP server")

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			appLogger.WithFields(map[string]interface{}{"error": err.Error()}).Error("Server failed to start")
			return
		}
	case sig := <-quit:
		appLogger.WithFields(map[string]interface{}{"signal": sig.String()}).Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.WithFields(map[string]interface{}{"error": err.Error()}).Error("Server forced to shutdown")
		}
		appLogger.Info("HTTP server stopped")
	}
}

// newApp builds the Fiber app with middleware, health check and module routes.
func newApp(container *di.Container, appLogger logger.Logger, cfg *ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "DocumentDB Dashboard API",
		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				appLogger.WithContext(c.UserContext()).WithFields(map[string]interface{}{"error": err.Error()}).Error("HTTP Error")
				return c.Status(code).JSON(fiber.Map{"error": "Internal Server Error"})
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,HEAD,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, X-Request-ID",
		ExposeHeaders: "Content-Disposition, X-Request-ID",
	}))
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(dashboardhttp.RequestContextMiddleware())
	app.Use(dashboardhttp.RequestLogger(appLogger))

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.WithContext(c.UserContext()).WithFields(map[string]interface{}{"error": err.Error()}).Warn("Health check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "UNHEALTHY",
				"error":  err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"timestamp": time.Now().UTC(),
		})
	})

	if m := container.GetDashboardModule(); m != nil {
		m.RegisterRoutes(app)
		appLogger.Info("Dashboard routes registered")
	}
	if m := container.GetEnvironmentModule(); m != nil {
		m.RegisterRoutes(app)
		appLogger.Info("Environment routes registered")
	}

	return app
}
