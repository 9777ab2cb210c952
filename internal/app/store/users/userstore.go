package userstore

import (
	"context"
	"fmt"
	"slices"

	"github.com/dalemusser/questionhub/internal/app/store/docid"
	"github.com/dalemusser/questionhub/internal/app/store/mongoerr"
	"github.com/dalemusser/questionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the collection users live in.
const CollectionName = "users"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// ListUserIDs returns the ID of every user, sorted ascending. Both string and
// ObjectID keys are accepted; ObjectIDs are returned as hex.
func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, mongoerr.Wrap("list users", err)
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		id, err := docid.String(cur.Current.Lookup("_id"))
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		ids = append(ids, id)
	}
	if err := cur.Err(); err != nil {
		return nil, mongoerr.Wrap("list users", err)
	}
	slices.Sort(ids)
	return ids, nil
}

// GetByID loads a user. Returns models.ErrNotFound if there is no such user.
func (s *Store) GetByID(ctx context.Context, id string) (models.User, error) {
	var raw bson.Raw
	if err := s.c.FindOne(ctx, docid.Filter(id)).Decode(&raw); err != nil {
		return models.User{}, mongoerr.Wrap("get user", err)
	}

	var u struct {
		DisplayName string `bson:"displayName"`
		FCMToken    string `bson:"fcmToken"`
	}
	if err := bson.Unmarshal(raw, &u); err != nil {
		return models.User{}, fmt.Errorf("decode user %s: %w", id, err)
	}
	return models.User{ID: id, DisplayName: u.DisplayName, FCMToken: u.FCMToken}, nil
}

// Token returns the device token registered for id, or "" when the user has
// none. Returns models.ErrNotFound if there is no such user.
func (s *Store) Token(ctx context.Context, id string) (string, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.FCMToken, nil
}
