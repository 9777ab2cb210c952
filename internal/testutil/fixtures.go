package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/questionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given ID and device token ("" for none).
func (f *Fixtures) CreateUser(ctx context.Context, id, token string) models.User {
	f.t.Helper()

	u := models.User{ID: id, DisplayName: "User " + id, FCMToken: token}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateQuestion inserts q as-is, filling CreatedAt when zero.
func (f *Fixtures) CreateQuestion(ctx context.Context, q models.Question) models.Question {
	f.t.Helper()

	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	if _, err := f.db.Collection("questions").InsertOne(ctx, q); err != nil {
		f.t.Fatalf("failed to create test question: %v", err)
	}
	return q
}

// InsertRaw inserts an arbitrary document into collection, for shapes the
// models cannot express (explicit nulls, missing fields).
func (f *Fixtures) InsertRaw(ctx context.Context, collection string, doc bson.M) {
	f.t.Helper()

	if _, err := f.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert into %s: %v", collection, err)
	}
}
