package gateway

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// HealthChecker probes the backing services' health endpoints in parallel.
type HealthChecker struct {
	client  *http.Client
	targets map[string]string // service name -> base URL
}

// NewHealthChecker constructs a checker for the given service base URLs.
func NewHealthChecker(targets map[string]string) *HealthChecker {
	return &HealthChecker{
		client:  &http.Client{Timeout: 3 * time.Second},
		targets: targets,
	}
}

// HealthReport aggregates per-service statuses.
type HealthReport struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// Check probes every target concurrently and reports per-service status.
// The overall status is "ok" only when every service is healthy.
func (c *HealthChecker) Check(ctx context.Context) HealthReport {
	report := HealthReport{Status: "ok", Services: make(map[string]string, len(c.targets))}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for name, base := range c.targets {
		g.Go(func() error {
			status := c.probe(ctx, base)
			mu.Lock()
			report.Services[name] = status
			if status != "ok" {
				report.Status = "degraded"
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return report
}

func (c *HealthChecker) probe(ctx context.Context, base string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/health", nil)
	if err != nil {
		return "unreachable"
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "unreachable"
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}
	return "ok"
}
