package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/onion/core/handler"
	"github.com/dmitrymomot/onion/core/logger"
	"github.com/dmitrymomot/onion/core/response"
)

// DefaultCheckTimeout bounds each dependency check.
const DefaultCheckTimeout = 5 * time.Second

// Check is a named dependency check, such as redis.Healthcheck(client).
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// Report is the readiness response body.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Readiness runs every check concurrently, each bounded by
// DefaultCheckTimeout. It answers 200 with status "ready" when all pass
// and 503 with status "unavailable" otherwise. Failures are logged; the
// report only says which check failed.
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	if log == nil {
		log = logger.Nop()
	}

	return func(ctx C) handler.Response {
		results := make([]error, len(checks))

		var g errgroup.Group
		for i, c := range checks {
			g.Go(func() error {
				cctx, cancel := context.WithTimeout(ctx, DefaultCheckTimeout)
				defer cancel()
				results[i] = c.Fn(cctx)
				return nil
			})
		}
		_ = g.Wait()

		report := Report{Status: "ready", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for i, c := range checks {
			if err := results[i]; err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					logger.Component("health"),
					slog.String("check", c.Name),
					logger.Error(err),
				)
				report.Checks[c.Name] = "failed"
				report.Status = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			report.Checks[c.Name] = "ok"
		}

		return response.JSONWithStatus(report, status)
	}
}
