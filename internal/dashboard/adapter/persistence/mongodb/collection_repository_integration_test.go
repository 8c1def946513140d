package mongodb

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"docdb-dashboard/internal/dashboard/domain/service"
	"docdb-dashboard/internal/shared/database"
	"docdb-dashboard/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	tc "github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
)

// CollectionRepositoryTestSuite runs the repository against a real MongoDB container.
type CollectionRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	ctr  *tcmongo.MongoDBContainer
	conn *database.ConnectionManager
	repo *CollectionRepository
}

func TestCollectionRepositoryTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container tests in short mode")
	}
	suite.Run(t, new(CollectionRepositoryTestSuite))
}

func (s *CollectionRepositoryTestSuite) SetupSuite() {
	s.ctx = context.Background()

	ctr, err := startMongo(s.ctx)
	if err != nil {
		s.T().Skipf("docker not available: %v", err)
	}
	s.ctr = ctr

	uri, err := ctr.ConnectionString(s.ctx)
	s.Require().NoError(err)

	log := logger.NewLoggerWithConfig("error", "text")
	s.conn = database.NewConnectionManager(database.Settings{
		URI:            uri,
		Database:       "dashboard_it",
		ConnectTimeout: 10 * time.Second,
	}, log)
	s.repo = NewCollectionRepository(s.conn, log)

	db, err := s.conn.Acquire(s.ctx)
	s.Require().NoError(err)

	_, err = db.Collection("users").InsertMany(s.ctx, []interface{}{
		bson.D{{Key: "name", Value: "Ann"}, {Key: "age", Value: int32(30)}},
		bson.D{{Key: "name", Value: "Bo"}, {Key: "age", Value: int32(41)}},
		bson.D{{Key: "name", Value: "Cy"}, {Key: "age", Value: int32(25)}},
	})
	s.Require().NoError(err)
	s.Require().NoError(db.CreateCollection(s.ctx, "empty_coll"))
}

// startMongo recovers from provider panics so a missing Docker daemon skips the suite.
func startMongo(ctx context.Context) (ctr *tcmongo.MongoDBContainer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("container provider: %v", r)
		}
	}()
	return tcmongo.Run(ctx, "mongo:6")
}

func (s *CollectionRepositoryTestSuite) TearDownSuite() {
	if s.conn != nil {
		_ = s.conn.Close(s.ctx)
	}
	if s.ctr != nil {
		tc.CleanupContainer(s.T(), s.ctr)
	}
}

func (s *CollectionRepositoryTestSuite) TestListCollections() {
	t := s.T()

	first, err := s.repo.ListCollections(s.ctx)
	require.NoError(t, err)
	second, err := s.repo.ListCollections(s.ctx)
	require.NoError(t, err)

	sort.Strings(first)
	sort.Strings(second)
	assert.Equal(t, []string{"empty_coll", "users"}, first)
	assert.Equal(t, first, second)
}

func (s *CollectionRepositoryTestSuite) TestGetCollectionStats() {
	t := s.T()

	stats := s.repo.GetCollectionStats(s.ctx, "users")
	assert.Equal(t, int64(3), stats.DocumentCount)
	assert.GreaterOrEqual(t, stats.SizeInMB, float64(0))

	assert.Zero(t, s.repo.GetCollectionStats(s.ctx, "empty_coll").DocumentCount)
	assert.Zero(t, s.repo.GetCollectionStats(s.ctx, "does_not_exist").DocumentCount)
}

func (s *CollectionRepositoryTestSuite) TestGetCollectionDocuments() {
	t := s.T()

	docs, err := s.repo.GetCollectionDocuments(s.ctx, "users")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"_id", "name", "age"}, docs[0].Keys())

	out, err := service.NewCSVSerializer().ToCSV(docs)
	require.NoError(t, err)
	assert.Contains(t, out, "_id,name,age\n")

	missing, err := s.repo.GetCollectionDocuments(s.ctx, "does_not_exist")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func (s *CollectionRepositoryTestSuite) TestPing() {
	assert.NoError(s.T(), s.repo.Ping(s.ctx))
}
