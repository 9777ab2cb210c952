package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/questionhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger checks database connectivity. *mongo.Client satisfies it.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB           Pinger
	SweepRunning func() bool
	Log          *zap.Logger
}

// NewHandler constructs a health Handler. sweepRunning may be nil.
func NewHandler(db Pinger, sweepRunning func() bool, logger *zap.Logger) *Handler {
	return &Handler{
		DB:           db,
		SweepRunning: sweepRunning,
		Log:          logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	SweepRunning bool   `json:"sweep_running"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "sweep_running":false }
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}
	if h.SweepRunning != nil {
		resp.SweepRunning = h.SweepRunning()
	}

	if err := h.DB.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	_ = json.NewEncoder(w).Encode(resp)
}
