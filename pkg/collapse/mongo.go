package collapse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/sebastiansztangierski/ancestral-scribe/pkg/errors"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "ancestral_scribe"
	DefaultMongoCollection = "collapse_state"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps one State document per tree, keyed by tree id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore connects to MongoDB and pings the primary.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "ping mongo")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, treeID string) ([]string, error) {
	var st State
	err := s.coll.FindOne(ctx, bson.M{"_id": treeID}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	return Normalize(st.Collapsed), nil
}

func (s *MongoStore) Set(ctx context.Context, treeID string, ids []string) error {
	st := State{
		TreeID:    treeID,
		Collapsed: Normalize(ids),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": treeID}, st, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo upsert: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, treeID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": treeID}); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
