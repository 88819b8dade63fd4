// Package health performs this daemon's per-container liveness and TCP
// probing and classifies the result with hysteresis, mirroring the
// teacher's Checker/Status/Config shape (pkg/health/health.go) generalized
// from a single health check type to the spec's two-stage process+TCP
// probe.
package health

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/acidtib/jiji/pkg/types"
)

const unhealthyThreshold = 3

// Prober asks the container engine whether a container is running.
type Prober interface {
	IsRunning(ctx context.Context, containerID string) (bool, error)
}

// Syncer runs one health-sync pass over a set of containers.
type Syncer struct {
	Prober Prober
	Logger zerolog.Logger
}

// NewSyncer builds a Syncer using the given liveness prober.
func NewSyncer(prober Prober, logger zerolog.Logger) *Syncer {
	return &Syncer{Prober: prober, Logger: logger}
}

// Sync probes every container concurrently (the only intra-tick
// parallelism this daemon has, per spec §5) and returns only the rows
// whose status or failure count changed. Individual probe errors degrade
// to "unchanged row reported back", never to an aborted sync.
func (s *Syncer) Sync(ctx context.Context, containers []types.Container) []types.Container {
	results := make([]types.Container, len(containers))
	g, gctx := errgroup.WithContext(ctx)

	for i, c := range containers {
		i, c := i, c
		g.Go(func() error {
			results[i] = s.probeOne(gctx, c)
			return nil
		})
	}
	_ = g.Wait()

	changed := make([]types.Container, 0, len(results))
	for i, r := range results {
		if r.HealthStatus != containers[i].HealthStatus || r.ConsecutiveFailures != containers[i].ConsecutiveFailures {
			changed = append(changed, r)
		}
	}
	return changed
}

func (s *Syncer) probeOne(ctx context.Context, c types.Container) types.Container {
	running, err := s.Prober.IsRunning(ctx, c.ID)
	if err != nil {
		s.Logger.Warn().Str("container_id", c.ID).Err(err).Msg("liveness probe error, row unchanged")
		return c
	}

	next := c
	next.LastHealthCheckMs = nowMs()

	if !running {
		next.ConsecutiveFailures = c.ConsecutiveFailures + 1
		next.HealthStatus = types.HealthUnhealthy
		return next
	}

	if c.HealthPort == 0 {
		next.ConsecutiveFailures = 0
		next.HealthStatus = types.HealthHealthy
		return next
	}

	if ProbeTCP(ctx, c.PrivateIP, c.HealthPort) {
		next.ConsecutiveFailures = 0
		next.HealthStatus = types.HealthHealthy
		return next
	}

	next.ConsecutiveFailures = c.ConsecutiveFailures + 1
	if next.ConsecutiveFailures >= unhealthyThreshold {
		next.HealthStatus = types.HealthUnhealthy
	} else {
		next.HealthStatus = types.HealthDegraded
	}
	return next
}

// ParseHealthPort coerces the store's representation of health_port,
// which may arrive as the literal strings "null" or "0" in place of a
// missing value, into 0 ("no TCP probe configured").
func ParseHealthPort(raw string) int {
	switch raw {
	case "", "null", "0":
		return 0
	}
	var port int
	if _, err := fmt.Sscanf(raw, "%d", &port); err != nil {
		return 0
	}
	return port
}
