// Package gateway fronts the services with a reverse proxy, aggregated
// health checks and the shared middleware stack.
package gateway

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/pennywise-app/pennywise/internal/platform/httpx"
)

// ServiceProxy forwards requests to one backing service.
type ServiceProxy struct {
	name  string
	proxy *httputil.ReverseProxy
}

// NewServiceProxy builds a reverse proxy for the service at rawURL.
func NewServiceProxy(name, rawURL string, logger *slog.Logger) (*ServiceProxy, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("gateway: parse %s url: %w", name, err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error("proxy error",
			slog.String("service", name),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Bad Gateway", name+" unavailable")
	}

	return &ServiceProxy{name: name, proxy: proxy}, nil
}

// Handler exposes the proxy as an http.Handler.
func (p *ServiceProxy) Handler() http.Handler {
	return p.proxy
}
