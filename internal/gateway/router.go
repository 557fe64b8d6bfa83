package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pennywise-app/pennywise/internal/observability"
	"github.com/pennywise-app/pennywise/internal/platform/httpx"
)

// RouterParams groups dependencies for building the gateway router.
type RouterParams struct {
	Middleware []func(http.Handler) http.Handler
	UserProxy  *ServiceProxy
	TxnProxy   *ServiceProxy
	Health     *HealthChecker
	Metrics    *observability.Metrics
}

// NewRouter constructs the gateway router: auth and user routes forward to
// the user service, transaction routes to the transaction service.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range params.Middleware {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		report := params.Health.Check(req.Context())
		status := http.StatusOK
		if report.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		httpx.JSON(w, status, report)
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	api := http.StripPrefix("/api", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		routeByPrefix(params, w, req)
	}))
	r.Handle("/api/*", api)

	return r
}

func routeByPrefix(params RouterParams, w http.ResponseWriter, req *http.Request) {
	switch {
	case hasPrefix(req.URL.Path, "/auth"), hasPrefix(req.URL.Path, "/users"):
		params.UserProxy.Handler().ServeHTTP(w, req)
	case hasPrefix(req.URL.Path, "/transactions"):
		params.TxnProxy.Handler().ServeHTTP(w, req)
	default:
		httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown route")
	}
}

func hasPrefix(path, prefix string) bool {
	return path == prefix || (len(path) > len(prefix) && path[:len(prefix)+1] == prefix+"/")
}
