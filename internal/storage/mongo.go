package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rcaballes/salesdesk/backend/internal/types"
)

// MongoStore implements Store using MongoDB
type MongoStore struct {
	client     *mongo.Client
	activities *mongo.Collection
	rollups    *mongo.Collection
	logger     zerolog.Logger
}

// NewMongoStore creates a new MongoDB store
func NewMongoStore(ctx context.Context, cfg StoreConfig, logger zerolog.Logger) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)
	store := &MongoStore{
		client:     client,
		activities: db.Collection(cfg.ActivitiesColl),
		rollups:    db.Collection(cfg.RollupsColl),
		logger:     logger,
	}

	if err := store.createIndexes(connectCtx); err != nil {
		return nil, err
	}

	logger.Info().
		Str("database", cfg.MongoDatabase).
		Msg("MongoDB store initialized")

	return store, nil
}

func (s *MongoStore) createIndexes(ctx context.Context) error {
	_, err := s.activities.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "activity_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "date_key", Value: 1}}},
		{Keys: bson.D{{Key: "agent_ref", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create activity indexes: %w", err)
	}

	_, err = s.rollups.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "group_key", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create rollup index: %w", err)
	}
	return nil
}

func (s *MongoStore) SaveActivity(ctx context.Context, a types.Activity) error {
	filter := bson.M{"activity_id": a.ID}
	opts := options.Replace().SetUpsert(true)

	if _, err := s.activities.ReplaceOne(ctx, filter, a, opts); err != nil {
		return fmt.Errorf("failed to save activity: %w", err)
	}
	return nil
}

func (s *MongoStore) GetActivitiesByDate(ctx context.Context, dateKey string) ([]types.Activity, error) {
	cursor, err := s.activities.Find(ctx, bson.M{"date_key": dateKey})
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer cursor.Close(ctx)

	var activities []types.Activity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return activities, nil
}

func (s *MongoStore) SaveDailyRollup(ctx context.Context, rollup types.DailyRollup) error {
	filter := bson.M{"group_key": rollup.GroupKey, "date": rollup.Date}
	opts := options.Replace().SetUpsert(true)

	if _, err := s.rollups.ReplaceOne(ctx, filter, rollup, opts); err != nil {
		return fmt.Errorf("failed to save daily rollup: %w", err)
	}
	return nil
}

func (s *MongoStore) GetDailyRollups(ctx context.Context, groupKey string) ([]types.DailyRollup, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := s.rollups.Find(ctx, bson.M{"group_key": groupKey}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily rollups: %w", err)
	}
	defer cursor.Close(ctx)

	var rollups []types.DailyRollup
	if err := cursor.All(ctx, &rollups); err != nil {
		return nil, fmt.Errorf("failed to decode daily rollups: %w", err)
	}
	return rollups, nil
}

func (s *MongoStore) TruncateAll(ctx context.Context) error {
	if _, err := s.activities.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to truncate activities: %w", err)
	}
	if _, err := s.rollups.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to truncate daily rollups: %w", err)
	}
	s.logger.Info().Msg("collections truncated")
	return nil
}
