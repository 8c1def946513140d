package repository

import (
	"context"
	"time"

	"docdb-dashboard/internal/dashboard/domain/model"
)

// CollectionRepository reads collections of one database target.
type CollectionRepository interface {
	// ListCollections returns collection names in the order the database reports them.
	ListCollections(ctx context.Context) ([]string, error)

	// GetCollectionStats never fails: lookup errors yield zeroed stats.
	GetCollectionStats(ctx context.Context, collection string) model.CollectionStats

	// GetCollectionDocuments returns every document of the collection.
	// A collection that does not exist yields an empty slice.
	GetCollectionDocuments(ctx context.Context, collection string) ([]model.Document, error)

	// Ping verifies the target is reachable.
	Ping(ctx context.Context) error
}

// StatsCache memoizes collection stats between listing calls.
type StatsCache interface {
	Get(ctx context.Context, collection string) (model.CollectionStats, bool, error)
	Set(ctx context.Context, collection string, stats model.CollectionStats, ttl time.Duration) error
	// Flush drops every cached entry, used when the primary target changes.
	Flush(ctx context.Context) error
}
