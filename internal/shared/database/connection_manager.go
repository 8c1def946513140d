package database

import (
	"context"
	"crypto/tls"
	"errors"
	"sync"
	"time"

	apperrors "docdb-dashboard/internal/shared/errors"
	"docdb-dashboard/internal/shared/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultDatabase       = "test"
	defaultConnectTimeout = 10 * time.Second
	defaultUnconfigured   = "MongoDB connection is not configured"
)

// Settings describes one database target.
type Settings struct {
	// Name labels the target in logs, e.g. "primary" or "docdb".
	Name           string
	URI            string
	Database       string
	TLS            bool
	ConnectTimeout time.Duration

	// UnconfiguredMessage is reported when URI is empty.
	UnconfiguredMessage string
}

// IsConfigured reports whether the target can be dialed.
func (s Settings) IsConfigured() bool {
	return s.URI != ""
}

func (s Settings) withDefaults() Settings {
	if s.Database == "" {
		s.Database = defaultDatabase
	}
	if s.ConnectTimeout <= 0 {
		s.ConnectTimeout = defaultConnectTimeout
	}
	if s.UnconfiguredMessage == "" {
		s.UnconfiguredMessage = defaultUnconfigured
	}
	if s.Name == "" {
		s.Name = "primary"
	}
	return s
}

// dialFunc opens and verifies a client for the given settings.
type dialFunc func(ctx context.Context, s Settings) (*mongo.Client, error)

// ConnectionManager owns the cached client of a single database target.
// The client is created on first Acquire and reused until the target is
// reconfigured, a network failure is reported, or the manager is closed.
type ConnectionManager struct {
	mu       sync.RWMutex
	settings Settings
	client   *mongo.Client
	db       *mongo.Database
	logger   logger.Logger
	dial     dialFunc
}

// NewConnectionManager creates a manager; no connection is opened yet.
func NewConnectionManager(settings Settings, log logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		settings: settings.withDefaults(),
		logger:   log,
		dial:     dialAndPing,
	}
}

// Acquire returns the shared database handle, connecting on first use.
func (m *ConnectionManager) Acquire(ctx context.Context) (*mongo.Database, error) {
	m.mu.RLock()
	if m.db != nil {
		db := m.db
		m.mu.RUnlock()
		return db, nil
	}
	m.mu.RUnlock()

	// Double-check locking pattern
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		return m.db, nil
	}

	if !m.settings.IsConfigured() {
		return nil, apperrors.NewConfigurationError(m.settings.UnconfiguredMessage).WithComponent("database")
	}

	client, err := m.dial(ctx, m.settings)
	if err != nil {
		m.logger.WithFields(map[string]interface{}{
			"target":   m.settings.Name,
			"database": m.settings.Database,
			"error":    err.Error(),
		}).Error("Failed to connect to database")
		return nil, err
	}

	m.client = client
	m.db = client.Database(m.settings.Database)

	m.logger.WithFields(map[string]interface{}{
		"target":   m.settings.Name,
		"database": m.settings.Database,
		"tls":      m.settings.TLS,
	}).Info("Connected to database")

	return m.db, nil
}

// Release hands a handle back. The client is shared, so this is a no-op.
func (m *ConnectionManager) Release(*mongo.Database) {}

// Invalidate drops the cached client when err indicates a broken connection,
// so the next Acquire dials again. Other errors are ignored.
func (m *ConnectionManager) Invalidate(ctx context.Context, err error) bool {
	if err == nil || !mongo.IsNetworkError(err) {
		return false
	}

	m.mu.Lock()
	client := m.client
	m.client, m.db = nil, nil
	m.mu.Unlock()

	if client == nil {
		return false
	}

	m.logger.WithFields(map[string]interface{}{
		"target": m.settings.Name,
		"error":  err.Error(),
	}).Warn("Dropping database connection after network failure")
	m.disconnect(ctx, client)
	return true
}

// Reconfigure points the manager at a new target. The previous client, if
// any, is disconnected; the next Acquire dials the new target.
func (m *ConnectionManager) Reconfigure(ctx context.Context, settings Settings) {
	m.mu.Lock()
	if settings.Name == "" {
		settings.Name = m.settings.Name
	}
	if settings.UnconfiguredMessage == "" {
		settings.UnconfiguredMessage = m.settings.UnconfiguredMessage
	}
	settings = settings.withDefaults()
	old := m.client
	m.settings = settings
	m.client, m.db = nil, nil
	m.mu.Unlock()

	m.logger.WithFields(map[string]interface{}{
		"target":   settings.Name,
		"database": settings.Database,
	}).Info("Database target reconfigured")

	if old != nil {
		m.disconnect(ctx, old)
	}
}

// Settings returns the current target description.
func (m *ConnectionManager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Configured reports whether the current target has a URI.
func (m *ConnectionManager) Configured() bool {
	return m.Settings().IsConfigured()
}

// Ping acquires the handle and pings the primary.
func (m *ConnectionManager) Ping(ctx context.Context) error {
	db, err := m.Acquire(ctx)
	if err != nil {
		return err
	}
	defer m.Release(db)

	if err := db.Client().Ping(ctx, readpref.Primary()); err != nil {
		m.Invalidate(ctx, err)
		return apperrors.NewConnectionError("database ping failed").WithCause(err)
	}
	return nil
}

// Close disconnects the cached client.
func (m *ConnectionManager) Close(ctx context.Context) error {
	m.mu.Lock()
	client := m.client
	m.client, m.db = nil, nil
	m.mu.Unlock()

	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		return err
	}
	m.logger.WithFields(map[string]interface{}{"target": m.settings.Name}).Info("Closed database connection")
	return nil
}

func (m *ConnectionManager) disconnect(ctx context.Context, client *mongo.Client) {
	if err := client.Disconnect(ctx); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
		m.logger.WithFields(map[string]interface{}{
			"target": m.settings.Name,
			"error":  err.Error(),
		}).Warn("Failed to disconnect database client")
	}
}

// clientOptions builds driver options. Retryable writes are off because
// DocumentDB does not support them.
func clientOptions(s Settings) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(s.URI).
		SetRetryWrites(false).
		SetConnectTimeout(s.ConnectTimeout).
		SetServerSelectionTimeout(s.ConnectTimeout)
	if s.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	return opts
}

func dialAndPing(ctx context.Context, s Settings) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, clientOptions(s))
	if err != nil {
		return nil, apperrors.NewConnectionError("failed to connect to database").WithCause(err).WithComponent("database")
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, apperrors.NewConnectionError("failed to ping database").WithCause(err).WithComponent("database")
	}
	return client, nil
}
