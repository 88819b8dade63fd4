// Package gc deletes container rows that have outlived their grace
// windows, in two independent passes, and never runs while a partition is
// suspected. Grounded on the teacher's reconciler delete-then-count idiom
// (pkg/reconciler/reconciler.go), adapted from node/task GC to container
// row GC against a SQL-over-HTTP store.
package gc

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/acidtib/jiji/pkg/metrics"
	"github.com/acidtib/jiji/pkg/store"
	"github.com/acidtib/jiji/pkg/validate"
)

const (
	staleSeconds  = 180
	skewSeconds   = 30
	offlineMillis = 600_000
)

// Collector runs the two GC passes.
type Collector struct {
	SelfID string
	Reader store.Reader
	Writer store.Writer
	Logger zerolog.Logger
}

// New builds a Collector.
func New(selfID string, r store.Reader, w store.Writer, logger zerolog.Logger) *Collector {
	return &Collector{SelfID: selfID, Reader: r, Writer: w, Logger: logger}
}

// Run executes both GC passes unless partitioned is true, in which case it
// aborts immediately and deletes nothing (spec §4.H, §4.I).
func (c *Collector) Run(ctx context.Context, partitioned bool) error {
	if partitioned {
		metrics.GCSkippedPartitionTotal.Inc()
		c.Logger.Warn().Msg("gc skipped: split-brain flag set")
		return nil
	}

	staleDeleted, err := c.collectStaleContainers(ctx)
	if err != nil {
		return fmt.Errorf("gc stale containers: %w", err)
	}

	offlineDeleted, err := c.collectOfflineServerContainers(ctx)
	if err != nil {
		return fmt.Errorf("gc offline-server containers: %w", err)
	}

	total := staleDeleted + offlineDeleted
	if total > 0 {
		c.Logger.Info().
			Int64("stale_deleted", staleDeleted).
			Int64("offline_deleted", offlineDeleted).
			Msg("garbage collection removed container rows")
	}
	return nil
}

func (c *Collector) collectStaleContainers(ctx context.Context) (int64, error) {
	nowS := time.Now().Unix()
	cutoff := nowS - staleSeconds - skewSeconds
	sql := fmt.Sprintf(
		"SELECT id, service FROM containers WHERE health_status != 'healthy' AND (started_at/1000) < %d",
		cutoff,
	)
	rows, err := c.Reader.Query(ctx, sql)
	if err != nil {
		return 0, err
	}

	var deleted int64
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		id := row[0]
		if !validate.ContainerID(id) {
			c.Logger.Warn().Str("container_id", id).Msg("gc skipped: invalid container id")
			continue
		}
		del := fmt.Sprintf("DELETE FROM containers WHERE id = '%s'", validate.QuoteSQL(id))
		results, err := c.Writer.Exec(ctx, del)
		if err != nil {
			c.Logger.Error().Str("container_id", id).Err(err).Msg("gc delete failed")
			continue
		}
		for _, r := range results {
			deleted += r.RowsAffected
		}
	}
	if deleted > 0 {
		metrics.GCDeletedContainersTotal.Add(float64(deleted))
	}
	return deleted, nil
}

func (c *Collector) collectOfflineServerContainers(ctx context.Context) (int64, error) {
	nowMs := time.Now().UnixMilli()
	cutoff := nowMs - offlineMillis
	sql := fmt.Sprintf(
		"SELECT id FROM servers WHERE last_seen < %d AND id != '%s'",
		cutoff, validate.QuoteSQL(c.SelfID),
	)
	rows, err := c.Reader.Query(ctx, sql)
	if err != nil {
		return 0, err
	}

	var deleted int64
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		serverID := row[0]
		if !validate.ServerID(serverID) {
			c.Logger.Warn().Str("server_id", serverID).Msg("gc skipped: invalid server id")
			continue
		}
		del := fmt.Sprintf("DELETE FROM containers WHERE server_id = '%s'", validate.QuoteSQL(serverID))
		results, err := c.Writer.Exec(ctx, del)
		if err != nil {
			c.Logger.Error().Str("server_id", serverID).Err(err).Msg("gc delete failed")
			continue
		}
		for _, r := range results {
			deleted += r.RowsAffected
		}
	}
	if deleted > 0 {
		metrics.GCDeletedContainersTotal.Add(float64(deleted))
	}
	return deleted, nil
}
