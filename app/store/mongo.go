package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pulseai/pulse/app/feed"
)

const (
	mongoSelectionTimeout = 5 * time.Second
	duplicateKeyCode      = 11000
)

type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

func OpenMongo(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(mongoSelectionTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	if err := ensureIndexes(ctx, coll); err != nil {
		client.Disconnect(context.WithoutCancel(ctx))
		return nil, err
	}

	slog.Info("Connected to mongo", "database", database, "collection", collection)

	return &MongoStore{client: client, collection: coll}, nil
}

func ensureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "title", Value: 1}, {Key: "source", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("title_source_unique"),
		},
		{
			Keys:    bson.D{{Key: "published", Value: -1}},
			Options: options.Index().SetName("published_desc"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// upsertModels builds one insert-if-absent write per article.
func upsertModels(articles []feed.Article) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, len(articles))
	for _, article := range articles {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "title", Value: article.Title}, {Key: "source", Value: article.Source}}).
			SetUpdate(bson.D{{Key: "$setOnInsert", Value: article}}).
			SetUpsert(true))
	}
	return models
}

func (s *MongoStore) UpsertArticles(ctx context.Context, articles []feed.Article) (UpsertResult, error) {
	if len(articles) == 0 {
		return UpsertResult{}, nil
	}

	res, err := s.collection.BulkWrite(ctx, upsertModels(articles), options.BulkWrite().SetOrdered(false))
	if err != nil {
		var bulkErr mongo.BulkWriteException
		if !errors.As(err, &bulkErr) {
			return UpsertResult{}, fmt.Errorf("failed to write articles: %w", err)
		}
		return bulkOutcome(len(articles), res, bulkErr.WriteErrors), nil
	}

	return bulkOutcome(len(articles), res, nil), nil
}

// bulkOutcome tallies an unordered bulk upsert. A duplicate key error means a
// concurrent writer inserted the same record first.
func bulkOutcome(total int, res *mongo.BulkWriteResult, writeErrors []mongo.BulkWriteError) UpsertResult {
	var result UpsertResult
	if res != nil {
		result.Inserted = int(res.UpsertedCount)
	}

	for _, writeErr := range writeErrors {
		if writeErr.Code == duplicateKeyCode {
			continue
		}
		result.Failed++
		slog.Warn("Failed to store article", "index", writeErr.Index, "error", writeErr.Message)
	}

	result.Existing = total - result.Inserted - result.Failed
	return result
}

func (s *MongoStore) ListArticles(ctx context.Context, limit int) (*ArticleList, error) {
	cursor, err := s.collection.Find(ctx, bson.D{}, options.Find().
		SetProjection(bson.D{{Key: "_id", Value: 0}}).
		SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}

	var records []feed.Article
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode articles: %w", err)
	}

	return SelectListing(records, limit), nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
