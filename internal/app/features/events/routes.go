package events

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for event intake, mounted under /events.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeEvent)
	return r
}
