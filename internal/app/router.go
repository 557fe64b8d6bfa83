package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pennywise-app/pennywise/internal/observability"
	"github.com/pennywise-app/pennywise/internal/platform/httpx"
)

// ServiceRouterParams groups dependencies for building a service router.
type ServiceRouterParams struct {
	Middleware []func(http.Handler) http.Handler
	Metrics    *observability.Metrics
	StoreMode  string
	Mount      func(chi.Router)
}

type healthResponse struct {
	Status    string `json:"status"`
	StoreMode string `json:"storeMode"`
}

// NewServiceRouter constructs a chi router with the shared middleware,
// health and metrics endpoints, then mounts the domain routes.
func NewServiceRouter(params ServiceRouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range params.Middleware {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		httpx.JSON(w, http.StatusOK, healthResponse{Status: "ok", StoreMode: params.StoreMode})
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	if params.Mount != nil {
		params.Mount(r)
	}
	return r
}
