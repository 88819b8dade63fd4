package daemon

import (
	"strconv"

	"github.com/acidtib/jiji/pkg/health"
	"github.com/acidtib/jiji/pkg/metrics"
	"github.com/acidtib/jiji/pkg/types"
)

func rowsToContainers(rows [][]string, serverID string) []types.Container {
	containers := make([]types.Container, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		failures, _ := strconv.Atoi(row[4])
		startedAt, _ := strconv.ParseInt(row[5], 10, 64)
		containers = append(containers, types.Container{
			ID:                  row[0],
			PrivateIP:           row[1],
			ServerID:            serverID,
			HealthPort:          health.ParseHealthPort(row[2]),
			HealthStatus:        types.HealthStatus(row[3]),
			ConsecutiveFailures: failures,
			StartedAtMs:         startedAt,
		})
	}
	return containers
}

// reportContainerStatusCounts publishes the current per-status container
// tally, applying changed on top of containers so the gauge reflects this
// tick's outcome rather than the pre-sync snapshot.
func reportContainerStatusCounts(containers, changed []types.Container) {
	byID := make(map[string]types.HealthStatus, len(containers))
	for _, c := range containers {
		byID[c.ID] = c.HealthStatus
	}
	for _, c := range changed {
		byID[c.ID] = c.HealthStatus
	}

	counts := map[types.HealthStatus]float64{
		types.HealthHealthy:   0,
		types.HealthDegraded:  0,
		types.HealthUnhealthy: 0,
		types.HealthUnknown:   0,
	}
	for _, status := range byID {
		counts[status]++
	}
	for status, n := range counts {
		label := string(status)
		if label == "" {
			label = "unknown"
		}
		metrics.ContainersByStatus.WithLabelValues(label).Set(n)
	}
}
