package sweep

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the manual sweep trigger, mounted under /sweep.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeSweep)
	return r
}
