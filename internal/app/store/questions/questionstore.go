package questionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/questionhub/internal/app/store/docid"
	"github.com/dalemusser/questionhub/internal/app/store/mongoerr"
	"github.com/dalemusser/questionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the collection questions live in.
const CollectionName = "questions"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// Get loads a question by ID, string or ObjectID keyed. Returns
// models.ErrNotFound if it does not exist.
func (s *Store) Get(ctx context.Context, id string) (models.Question, error) {
	var q models.Question
	if err := s.c.FindOne(ctx, docid.Filter(id)).Decode(&q); err != nil {
		return models.Question{}, mongoerr.Wrap("get question", err)
	}
	return q, nil
}

// All returns every question ordered by _id, so repeated scans see the same order.
func (s *Store) All(ctx context.Context) ([]models.Question, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, mongoerr.Wrap("list questions", err)
	}
	defer cur.Close(ctx)

	var out []models.Question
	if err := cur.All(ctx, &out); err != nil {
		return nil, mongoerr.Wrap("decode questions", err)
	}
	return out, nil
}

// Unassigned returns questions whose assignee is missing, null, or "", in _id
// order with repeated IDs dropped.
//
// The filter runs client-side over All so the three encodings are treated the
// same no matter how a writer cleared the field.
func (s *Store) Unassigned(ctx context.Context) ([]models.Question, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return models.PendingOnly(all), nil
}

// UpdateAssignment sets assignee and updatedAt without touching any other field.
//
// The write is conditional. It matches only when the stored assignee still
// equals expected (expected "" matches missing, null, and "") and assignee is
// not in declinedBy. Otherwise it returns models.ErrWriteConflict, or
// models.ErrNotFound when the question no longer exists.
func (s *Store) UpdateAssignment(ctx context.Context, id, expected, assignee string, at time.Time) error {
	if assignee == "" {
		return errors.New("update assignment: empty assignee")
	}

	filter := bson.M{
		"_id":        docid.Match(id),
		"declinedBy": bson.M{"$ne": assignee},
	}
	if expected == "" {
		filter["assignee"] = bson.M{"$in": bson.A{nil, ""}}
	} else {
		filter["assignee"] = expected
	}

	res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"assignee":  assignee,
		"updatedAt": at,
	}})
	if err != nil {
		return mongoerr.Wrap("update assignment", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return models.ErrWriteConflict
}
