package sweep

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/questionhub/internal/app/assign"
	"github.com/dalemusser/questionhub/internal/app/system/timeouts"
	"github.com/dalemusser/questionhub/internal/domain/models"
	"go.uber.org/zap"
)

// Runner runs one reconciliation sweep.
type Runner interface {
	RunSweep(ctx context.Context) (assign.SweepReport, error)
}

// Handler triggers a sweep on demand.
type Handler struct {
	Sweeper Runner
	Log     *zap.Logger
}

func NewHandler(sweeper Runner, logger *zap.Logger) *Handler {
	return &Handler{Sweeper: sweeper, Log: logger}
}

type sweepResponse struct {
	Status string             `json:"status"`
	Error  string             `json:"error,omitempty"`
	Report assign.SweepReport `json:"report"`
}

// ServeSweep handles POST /sweep. The sweep runs inside the request and the
// report is returned when it finishes.
//
//	200 sweep completed
//	409 another sweep is already running
//	503 the store became unavailable part way through
//	500 any other failure
func (h *Handler) ServeSweep(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Sweep(), h.Log, "manual sweep")
	defer cancel()

	report, err := h.Sweeper.RunSweep(ctx)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, sweepResponse{Status: "completed", Report: report})
	case errors.Is(err, assign.ErrSweepInProgress):
		writeJSON(w, http.StatusConflict, sweepResponse{Status: "busy", Error: err.Error()})
	case errors.Is(err, models.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, sweepResponse{Status: "aborted", Error: "store unavailable", Report: report})
	default:
		h.Log.Error("manual sweep failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, sweepResponse{Status: "failed", Error: "sweep failed", Report: report})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
