package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/questionhub/internal/app/system/timeouts"
	"github.com/dalemusser/questionhub/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBody = 1 << 20

// EventHandler processes one question event.
type EventHandler interface {
	Handle(ctx context.Context, ev models.QuestionEvent) error
}

// Handler accepts question events pushed over HTTP by platforms that cannot
// expose a change stream. Callers are authenticated by the router's
// shared-secret middleware before they get here.
type Handler struct {
	Events EventHandler
	Log    *zap.Logger
}

func NewHandler(events EventHandler, logger *zap.Logger) *Handler {
	return &Handler{Events: events, Log: logger}
}

type acceptedResponse struct {
	Status     string `json:"status"`
	DeliveryID string `json:"delivery_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ServeEvent handles POST /events.
//
//	202 event processed
//	400 malformed payload or unknown event type
//	500 processing failed; the sender should retry
func (h *Handler) ServeEvent(w http.ResponseWriter, r *http.Request) {
	deliveryID := uuid.NewString()
	log := h.Log.With(zap.String("delivery_id", deliveryID))

	var ev models.QuestionEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&ev); err != nil {
		log.Info("event rejected: malformed body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed event"})
		return
	}
	if err := validate(ev); err != nil {
		log.Info("event rejected", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), log, "handle pushed event")
	defer cancel()

	if err := h.Events.Handle(ctx, ev); err != nil {
		log.Error("event processing failed",
			zap.String("question_id", ev.After.ID),
			zap.String("kind", string(ev.Kind)),
			zap.Bool("store_unavailable", errors.Is(err, models.ErrStoreUnavailable)),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "processing failed"})
		return
	}

	log.Debug("event processed",
		zap.String("question_id", ev.After.ID),
		zap.String("kind", string(ev.Kind)))
	writeJSON(w, http.StatusAccepted, acceptedResponse{Status: "accepted", DeliveryID: deliveryID})
}

func validate(ev models.QuestionEvent) error {
	switch ev.Kind {
	case models.EventCreated, models.EventUpdated:
	default:
		return errors.New("unknown event type")
	}
	if ev.After.ID == "" {
		return errors.New("after.id is required")
	}
	if ev.Before != nil && ev.Before.ID != ev.After.ID {
		return errors.New("before and after describe different questions")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
