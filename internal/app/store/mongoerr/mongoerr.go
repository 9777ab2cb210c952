// Package mongoerr maps driver errors onto the domain error taxonomy.
package mongoerr

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/questionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// Wrap classifies err for operation op:
//   - mongo.ErrNoDocuments becomes models.ErrNotFound
//   - network failures, server timeouts and a disconnected client wrap
//     models.ErrStoreUnavailable
//   - an expired context deadline stays a failure of this operation only
//   - anything else is wrapped with op for context
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}
	if Unavailable(err) {
		return fmt.Errorf("%s: %w: %v", op, models.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Unavailable reports whether err means the store could not be reached.
// mongo.IsTimeout also matches context deadlines, which belong to the caller's
// budget rather than to the store, so those are excluded.
func Unavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected)
}
