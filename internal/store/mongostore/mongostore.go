// Package mongostore is a MongoDB-backed store.SessionRepo for deployments
// that run several server instances against one database.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/somilnegi/AI-Interview-Prep-App/internal/store"
)

const (
	DefaultDatabase   = "interviewprep"
	DefaultCollection = "sessions"
)

// Client owns a MongoDB connection.
type Client struct {
	raw *mongo.Client
	db  string
}

// Connect dials uri and verifies the connection. An empty database name
// selects DefaultDatabase.
func Connect(ctx context.Context, uri, database string) (*Client, error) {
	if uri == "" {
		return nil, errors.New("mongo URI is empty")
	}
	if database == "" {
		database = DefaultDatabase
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := c.Ping(ctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Client{raw: c, db: database}, nil
}

// Ping checks that the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.raw.Ping(ctx, nil)
}

// Close disconnects from the server.
func (c *Client) Close(ctx context.Context) error {
	return c.raw.Disconnect(ctx)
}

// SessionRepo implements store.SessionRepo on a MongoDB collection.
type SessionRepo struct {
	col *mongo.Collection
}

var _ store.SessionRepo = (*SessionRepo)(nil)

// NewSessionRepo returns a repo on the named collection and ensures its
// owner index. An empty name selects DefaultCollection.
func NewSessionRepo(ctx context.Context, c *Client, collection string) (*SessionRepo, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	col := c.raw.Database(c.db).Collection(collection)

	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("create owner index: %w", err)
	}
	return &SessionRepo{col: col}, nil
}

func (r *SessionRepo) Create(ctx context.Context, rec *store.SessionRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.Questions == nil {
		rec.Questions = []store.QuestionRecord{}
	}

	if _, err := r.col.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*store.SessionRecord, error) {
	var rec store.SessionRecord
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &rec, nil
}

// Update replaces the document if its stored version still matches.
func (r *SessionRepo) Update(ctx context.Context, rec *store.SessionRecord) error {
	next := *rec
	next.Version = rec.Version + 1
	next.UpdatedAt = time.Now().UTC()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": rec.ID, "version": rec.Version}, &next)
	if err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": rec.ID})
		if err != nil {
			return fmt.Errorf("count session: %w", err)
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return store.ErrVersionConflict
	}

	rec.Version = next.Version
	rec.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *SessionRepo) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*store.SessionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.col.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find sessions: %w", err)
	}
	defer cur.Close(ctx)

	var out []*store.SessionRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return out, nil
}
