// Package partition tracks this node's belief about whether the cluster
// is split-brained, using nothing more than an atomic flag (spec §4.I:
// "no locks, no queues"). pkg/daemon reads the flag before every GC run
// and passes its value to pkg/gc.
package partition

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/acidtib/jiji/pkg/metrics"
	"github.com/acidtib/jiji/pkg/store"
)

const activeWindowMs = 5 * 60 * 1000

// Flag is a process-wide, atomic-bool-backed split-brain indicator.
type Flag struct {
	set atomic.Bool
}

// IsSet reports the current split-brain state.
func (f *Flag) IsSet() bool { return f.set.Load() }

// Detector recomputes the Flag's state once per coarse-cadence tick.
type Detector struct {
	Reader store.Reader
	Flag   *Flag
	Logger zerolog.Logger
}

// New builds a Detector sharing the given Flag.
func New(r store.Reader, flag *Flag, logger zerolog.Logger) *Detector {
	return &Detector{Reader: r, Flag: flag, Logger: logger}
}

// Check queries total and active server counts and updates the Flag
// (spec §4.I). pct is floor(100*active/total); the flag is set when
// total > 1 and pct < 50.
func (d *Detector) Check(ctx context.Context) error {
	total, err := d.scalarInt(ctx, "SELECT count(*) FROM servers")
	if err != nil {
		return fmt.Errorf("partition check: count servers: %w", err)
	}

	now := time.Now().UnixMilli()
	cutoff := now - activeWindowMs
	active, err := d.scalarInt(ctx, fmt.Sprintf("SELECT count(*) FROM servers WHERE last_seen >= %d", cutoff))
	if err != nil {
		return fmt.Errorf("partition check: count active servers: %w", err)
	}

	wasSet := d.Flag.IsSet()

	if total > 0 {
		metrics.ActiveServerPct.Set(float64(active * 100 / total))
	}

	if total <= 1 || active*100/total >= 50 {
		if wasSet {
			d.Logger.Info().Msg("partition resolved")
		}
		d.Flag.set.Store(false)
		metrics.SplitBrain.Set(0)
		return nil
	}

	stale, err := d.staleHostnames(ctx, cutoff)
	if err != nil {
		d.Logger.Error().Err(err).Msg("partition check: failed to list stale hostnames")
	}
	d.Flag.set.Store(true)
	metrics.SplitBrain.Set(1)
	d.Logger.Error().
		Int("total", total).
		Int("active", active).
		Strs("stale_hostnames", stale).
		Msg("split-brain suspected: majority of servers unreachable")
	return nil
}

func (d *Detector) staleHostnames(ctx context.Context, cutoff int64) ([]string, error) {
	rows, err := d.Reader.Query(ctx, fmt.Sprintf("SELECT hostname FROM servers WHERE last_seen < %d", cutoff))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			names = append(names, row[0])
		}
	}
	return names, nil
}

func (d *Detector) scalarInt(ctx context.Context, sql string) (int, error) {
	v, ok := d.Reader.Scalar(ctx, sql)
	if !ok {
		return 0, fmt.Errorf("no rows for %q", sql)
	}
	return strconv.Atoi(v)
}
