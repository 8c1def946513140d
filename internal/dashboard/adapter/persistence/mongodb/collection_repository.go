package mongodb

import (
	"context"

	"docdb-dashboard/internal/dashboard/domain/model"
	"docdb-dashboard/internal/dashboard/domain/repository"
	"docdb-dashboard/internal/shared/errors"
	"docdb-dashboard/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DatabaseProvider hands out the shared database handle of one target.
type DatabaseProvider interface {
	Acquire(ctx context.Context) (*mongo.Database, error)
	Release(db *mongo.Database)
	Invalidate(ctx context.Context, err error) bool
	Ping(ctx context.Context) error
}

// CollectionRepository reads collections through a DatabaseProvider
type CollectionRepository struct {
	conn   DatabaseProvider
	logger logger.Logger
}

var _ repository.CollectionRepository = (*CollectionRepository)(nil)

// NewCollectionRepository creates a repository bound to one target
func NewCollectionRepository(conn DatabaseProvider, log logger.Logger) *CollectionRepository {
	return &CollectionRepository{
		conn:   conn,
		logger: log.WithComponent("collection_repository"),
	}
}

// ListCollections returns all collection names of the configured database
func (r *CollectionRepository) ListCollections(ctx context.Context) ([]string, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.conn.Release(db)

	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, r.wrap(ctx, err, "failed to list collections")
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// GetCollectionStats runs collStats. Failures are logged and reported as
// zeroed stats so one bad collection does not break the listing.
func (r *CollectionRepository) GetCollectionStats(ctx context.Context, collection string) model.CollectionStats {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		r.logStatsFailure(ctx, collection, err)
		return model.CollectionStats{}
	}
	defer r.conn.Release(db)

	var result bson.M
	if err := db.RunCommand(ctx, bson.D{{Key: "collStats", Value: collection}}).Decode(&result); err != nil {
		r.conn.Invalidate(ctx, err)
		r.logStatsFailure(ctx, collection, err)
		return model.CollectionStats{}
	}

	return model.NewCollectionStats(toInt64(result["count"]), toInt64(result["size"]))
}

// GetCollectionDocuments loads every document of the collection in natural order
func (r *CollectionRepository) GetCollectionDocuments(ctx context.Context, collection string) ([]model.Document, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.conn.Release(db)

	cursor, err := db.Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, r.wrap(ctx, err, "failed to query collection").WithDetail("collection", collection)
	}
	defer cursor.Close(ctx)

	var raw []bson.D
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, r.wrap(ctx, err, "failed to read collection documents").WithDetail("collection", collection)
	}

	docs := make([]model.Document, 0, len(raw))
	for _, d := range raw {
		docs = append(docs, documentFromBSON(d))
	}

	r.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"collection": collection,
		"documents":  len(docs),
	}).Debug("Fetched collection documents")

	return docs, nil
}

// Ping verifies the target is reachable
func (r *CollectionRepository) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}

// wrap classifies a driver error and drops the cached client on network failures.
func (r *CollectionRepository) wrap(ctx context.Context, err error, message string) *errors.AppError {
	if r.conn.Invalidate(ctx, err) || mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return errors.NewConnectionError(message).WithCause(err).WithComponent("collection_repository")
	}
	return errors.WrapError(err, message).WithComponent("collection_repository")
}

func (r *CollectionRepository) logStatsFailure(ctx context.Context, collection string, err error) {
	r.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"collection": collection,
		"operation":  "collStats",
		"error":      err.Error(),
	}).Warn("Failed to get collection stats, reporting zero")
}
