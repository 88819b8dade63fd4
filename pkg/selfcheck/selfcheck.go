// Package selfcheck verifies the store's own service unit and query path
// are alive, restarting the unit once if necessary. Grounded on the
// teacher's os/exec subprocess idiom (pkg/health/exec.go), adapted from a
// container health check to a host-service check.
package selfcheck

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/acidtib/jiji/pkg/store"
)

const (
	restartSettle    = 5 * time.Second
	heartbeatStaleMs = 120_000
)

// Checker runs the store self-check against one systemd unit.
type Checker struct {
	Unit   string
	Reader store.Reader
	Logger zerolog.Logger
}

// New builds a Checker for the given systemd unit name.
func New(unit string, r store.Reader, logger zerolog.Logger) *Checker {
	return &Checker{Unit: unit, Reader: r, Logger: logger}
}

// Run performs the three steps of spec §4.J in order, returning early
// (logging, not erroring) at the first step that cannot be confirmed.
func (c *Checker) Run(ctx context.Context, selfID string) {
	if !c.unitActive(ctx) {
		c.Logger.Warn().Str("unit", c.Unit).Msg("store unit not active, attempting restart")
		if err := c.restart(ctx); err != nil {
			c.Logger.Error().Err(err).Msg("store unit restart failed")
			return
		}
		time.Sleep(restartSettle)
		if !c.unitActive(ctx) {
			c.Logger.Error().Msg("store unit still not active after restart")
			return
		}
	}

	if _, ok := c.Reader.Scalar(ctx, "SELECT 1"); !ok {
		c.Logger.Error().Msg("store self-check query failed")
		return
	}

	lastSeen, ok := c.Reader.Scalar(ctx, fmt.Sprintf("SELECT last_seen FROM servers WHERE id = '%s'", selfID))
	if !ok {
		return
	}
	ms, err := strconv.ParseInt(lastSeen, 10, 64)
	if err != nil {
		return
	}
	if age := time.Now().UnixMilli() - ms; age > heartbeatStaleMs {
		c.Logger.Warn().Int64("age_ms", age).Msg("own heartbeat is stale")
	}
}

func (c *Checker) unitActive(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, "systemctl", "is-active", "--quiet", c.Unit)
	return cmd.Run() == nil
}

func (c *Checker) restart(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "systemctl", "restart", c.Unit)
	return cmd.Run()
}
