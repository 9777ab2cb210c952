package questionstore

import (
	"context"

	"github.com/dalemusser/questionhub/internal/app/store/mongoerr"
	"github.com/dalemusser/questionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChangeFunc receives one change from Watch. ev is nil for changes that carry
// no usable document (the token must still be checkpointed). Returning an
// error stops the stream without advancing past token.
type ChangeFunc func(ctx context.Context, ev *models.QuestionEvent, token bson.Raw) error

type changeDoc struct {
	OperationType            string           `bson:"operationType"`
	FullDocument             *models.Question `bson:"fullDocument"`
	FullDocumentBeforeChange *models.Question `bson:"fullDocumentBeforeChange"`
}

// toEvent converts a raw change into a QuestionEvent.
func (c changeDoc) toEvent() *models.QuestionEvent {
	if c.FullDocument == nil {
		return nil
	}
	switch c.OperationType {
	case "insert":
		return &models.QuestionEvent{Kind: models.EventCreated, After: *c.FullDocument}
	case "update", "replace":
		return &models.QuestionEvent{
			Kind:   models.EventUpdated,
			Before: c.FullDocumentBeforeChange,
			After:  *c.FullDocument,
		}
	}
	return nil
}

// Watch streams inserts and updates on the questions collection until ctx is
// done or the stream fails. Before/after snapshots come from the collection's
// pre- and post-images (see indexes.EnableChangeImages); resumeAfter, when
// non-nil, continues a previous stream.
func (s *Store) Watch(ctx context.Context, resumeAfter bson.Raw, fn ChangeFunc) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace"}}}},
		}}},
	}
	opts := options.ChangeStream().
		SetFullDocument(options.WhenAvailable).
		SetFullDocumentBeforeChange(options.WhenAvailable)
	if resumeAfter != nil {
		opts.SetResumeAfter(resumeAfter)
	}

	cs, err := s.c.Watch(ctx, pipeline, opts)
	if err != nil {
		return mongoerr.Wrap("open change stream", err)
	}
	defer cs.Close(context.Background())

	for cs.Next(ctx) {
		var doc changeDoc
		if err := cs.Decode(&doc); err != nil {
			return mongoerr.Wrap("decode change", err)
		}
		if err := fn(ctx, doc.toEvent(), cs.ResumeToken()); err != nil {
			return err
		}
	}
	if err := cs.Err(); err != nil {
		return mongoerr.Wrap("change stream", err)
	}
	return ctx.Err()
}
