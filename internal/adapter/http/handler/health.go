package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/Temutjin2k/campus-radar/pkg/logger"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

type Health struct {
	serviceName string
	checks      map[string]Pinger
	log         logger.Logger
}

func NewHealth(serviceName string, checks map[string]Pinger, log logger.Logger) *Health {
	return &Health{
		serviceName: serviceName,
		checks:      checks,
		log:         log,
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Reports the service name and whether each backing store answers a ping.
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      503  {object}  map[string]any
// @Router       /health [get]
func (a *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")

	status := "available"
	code := http.StatusOK
	deps := make(map[string]string, len(a.checks))

	names := make([]string, 0, len(a.checks))
	for name := range a.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := a.checks[name](pctx)
		cancel()

		if err != nil {
			a.log.Warn(ctx, "dependency check failed", "dependency", name, "error", err.Error())
			deps[name] = "unavailable"
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	response := envelope{
		"status": status,
		"system_info": map[string]string{
			"service-name": a.serviceName,
		},
		"dependencies": deps,
	}

	if err := writeJSON(w, code, response, nil); err != nil {
		a.log.Error(ctx, "healthcheck", err)
	}
}
