// Shared test doubles for dashboard usecase tests.
package usecase

import (
	"context"
	"sync"
	"time"

	"docdb-dashboard/internal/dashboard/domain/model"
	"docdb-dashboard/internal/shared/logger"
)

// collectionRepoMock is a function-field CollectionRepository double.
type collectionRepoMock struct {
	ListCollectionsFn        func(ctx context.Context) ([]string, error)
	GetCollectionStatsFn     func(ctx context.Context, collection string) model.CollectionStats
	GetCollectionDocumentsFn func(ctx context.Context, collection string) ([]model.Document, error)
	PingFn                   func(ctx context.Context) error
}

func (m *collectionRepoMock) ListCollections(ctx context.Context) ([]string, error) {
	if m.ListCollectionsFn != nil {
		return m.ListCollectionsFn(ctx)
	}
	return []string{}, nil
}

func (m *collectionRepoMock) GetCollectionStats(ctx context.Context, collection string) model.CollectionStats {
	if m.GetCollectionStatsFn != nil {
		return m.GetCollectionStatsFn(ctx, collection)
	}
	return model.CollectionStats{}
}

func (m *collectionRepoMock) GetCollectionDocuments(ctx context.Context, collection string) ([]model.Document, error) {
	if m.GetCollectionDocumentsFn != nil {
		return m.GetCollectionDocumentsFn(ctx, collection)
	}
	return []model.Document{}, nil
}

func (m *collectionRepoMock) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}

// memoryStatsCache is an in-process StatsCache double.
type memoryStatsCache struct {
	mu      sync.Mutex
	entries map[string]model.CollectionStats
	sets    int
}

func newMemoryStatsCache() *memoryStatsCache {
	return &memoryStatsCache{entries: make(map[string]model.CollectionStats)}
}

func (c *memoryStatsCache) Get(_ context.Context, collection string) (model.CollectionStats, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[collection]
	return s, ok, nil
}

func (c *memoryStatsCache) Set(_ context.Context, collection string, stats model.CollectionStats, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[collection] = stats
	c.sets++
	return nil
}

func (c *memoryStatsCache) Flush(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]model.CollectionStats)
	return nil
}

// newTestLogger returns a quiet logger for tests.
func newTestLogger() logger.Logger {
	return logger.NewLoggerWithConfig("error", "text")
}
