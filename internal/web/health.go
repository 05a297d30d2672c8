package web

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HealthHandler reports whether the dependencies of the server are reachable.
type HealthHandler struct {
	checks map[string]func(context.Context) error
}

// NewHealthHandler instantiates the handler, each check is identified by its key.
func NewHealthHandler(checks map[string]func(context.Context) error) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Register connects the handlers to the router.
func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/healthz", h.health)
}

// HealthResponse is the body returned by /healthz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}

	sort.Strings(names)

	res := HealthResponse{Status: "ok", Checks: map[string]string{}}

	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			res.Status = "unavailable"
			res.Checks[name] = err.Error()

			continue
		}

		res.Checks[name] = "ok"
	}

	if res.Status != "ok" {
		render.Status(r, http.StatusServiceUnavailable)
	}

	render.JSON(w, r, &res)
}
