// Package daemon runs the single-threaded cooperative reconciliation
// loop: one tick per iteration, suspending only at I/O points, with
// recover-and-log guarding each tick so a panic never brings the process
// down. Grounded on the teacher's ticker/select/stopCh reconciler loop
// (pkg/reconciler/reconciler.go), generalized from a 10-second fixed
// ticker to the spec's configurable loop_interval with panic recovery
// added at the tick boundary.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/acidtib/jiji/pkg/config"
	"github.com/acidtib/jiji/pkg/discovery"
	"github.com/acidtib/jiji/pkg/errkind"
	"github.com/acidtib/jiji/pkg/gc"
	"github.com/acidtib/jiji/pkg/health"
	"github.com/acidtib/jiji/pkg/log"
	"github.com/acidtib/jiji/pkg/mesh"
	"github.com/acidtib/jiji/pkg/metrics"
	"github.com/acidtib/jiji/pkg/partition"
	"github.com/acidtib/jiji/pkg/reconciler"
	"github.com/acidtib/jiji/pkg/selfcheck"
	"github.com/acidtib/jiji/pkg/store"
	"github.com/acidtib/jiji/pkg/validate"
)

const (
	slowTickWarn    = 15 * time.Second
	gcEveryN        = 10
	coarseEveryN    = 20
	milestoneEveryN = 100
)

// Daemon owns one node's reconciliation loop.
type Daemon struct {
	cfg    *config.Config
	logger zerolog.Logger

	// newTickLogger builds the per-tick correlation logger. Production
	// wiring (New) sets this to log.WithTick; tests leave it nil and fall
	// back to tagging d.logger directly, since they construct a Daemon
	// without going through pkg/log's global state.
	newTickLogger func(tickID string) zerolog.Logger

	reader store.Reader
	writer store.Writer

	reconciler *reconciler.Reconciler
	health     *health.Syncer
	discoverer *discovery.Discoverer
	gc         *gc.Collector
	partition  *partition.Detector
	flag       *partition.Flag
	selfcheck  *selfcheck.Checker

	storeUnit string

	shutdown chan struct{}
}

// New wires every component listed in spec §4 together for one node. It
// assumes log.Init has already run: every component logger is derived from
// pkg/log's global, component-tagged loggers.
func New(cfg *config.Config, prober health.Prober, storeUnit string) *Daemon {
	reader := store.NewCLIReader(cfg.CorrosionDir)
	writer := store.NewHTTPWriter(cfg.CorrosionAPI)
	meshCtl := mesh.NewController(cfg.Interface)
	flag := &partition.Flag{}

	return &Daemon{
		cfg:           cfg,
		logger:        log.WithComponent("daemon"),
		newTickLogger: log.WithTick,
		reader:        reader,
		writer:        writer,
		reconciler:    reconciler.New(cfg.ServerID, reader, writer, meshCtl, log.WithComponent("reconciler")),
		health:        health.NewSyncer(prober, log.WithComponent("health")),
		discoverer:    discovery.New(nil, log.WithComponent("discovery")),
		gc:            gc.New(cfg.ServerID, reader, writer, log.WithComponent("gc")),
		partition:     partition.New(reader, flag, log.WithComponent("partition")),
		flag:          flag,
		selfcheck:     selfcheck.New(storeUnit, reader, log.WithComponent("selfcheck")),
		storeUnit:     storeUnit,
		shutdown:      make(chan struct{}),
	}
}

func (d *Daemon) tickLogger(tickID string) zerolog.Logger {
	if d.newTickLogger != nil {
		return d.newTickLogger(tickID)
	}
	return d.logger.With().Str("tick_id", tickID).Logger()
}

// Run executes the reconciliation loop until ctx is cancelled or a
// termination signal arrives. It always attempts one final heartbeat
// write before returning.
func (d *Daemon) Run(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-sigCh:
			d.logger.Info().Msg("shutdown signal received")
			close(d.shutdown)
			cancel()
		case <-ctx.Done():
		}
	}()

	iteration := 0
	for {
		select {
		case <-d.shutdown:
			d.finalHeartbeat(context.Background())
			return nil
		case <-ctx.Done():
			d.finalHeartbeat(context.Background())
			return nil
		default:
		}

		iteration++
		d.tick(ctx, iteration)

		if iteration%milestoneEveryN == 0 {
			d.logger.Info().Int("iteration", iteration).Msg("reconciliation milestone")
		}

		select {
		case <-d.shutdown:
			d.finalHeartbeat(context.Background())
			return nil
		case <-ctx.Done():
			d.finalHeartbeat(context.Background())
			return nil
		case <-time.After(time.Duration(d.cfg.LoopInterval) * time.Second):
		}
	}
}

func (d *Daemon) tick(ctx context.Context, iteration int) {
	start := time.Now()
	timer := metrics.NewTimer()
	tickLogger := d.tickLogger(uuid.NewString())

	func() {
		defer func() {
			if r := recover(); r != nil {
				tickLogger.Error().Interface("panic", r).Int("iteration", iteration).Msg("tick panicked, recovered")
			}
		}()
		d.runTick(ctx, iteration)
	}()

	timer.ObserveDuration(metrics.TickDuration)
	metrics.TicksTotal.Inc()

	if elapsed := time.Since(start); elapsed > slowTickWarn {
		metrics.TickSlowTotal.Inc()
		tickLogger.Warn().Dur("elapsed", elapsed).Int("iteration", iteration).Msg("slow tick")
	}
}

func (d *Daemon) runTick(ctx context.Context, iteration int) {
	d.writeHeartbeat(ctx)

	if err := d.reconciler.ReconcilePeers(ctx); err != nil {
		d.logger.Error().Err(err).Str("error_kind", string(errkind.Mesh)).Msg("peer reconciliation failed")
	}
	if err := d.reconciler.MonitorPeers(ctx); err != nil {
		d.logger.Error().Err(err).Str("error_kind", string(errkind.Mesh)).Msg("peer monitoring failed")
	}

	d.syncContainerHealth(ctx)

	if iteration%gcEveryN == 0 {
		if err := d.gc.Run(ctx, d.flag.IsSet()); err != nil {
			d.logger.Error().Err(err).Str("error_kind", string(errkind.StoreQuery)).Msg("garbage collection failed")
		}
	}

	if iteration%coarseEveryN == 0 {
		d.runCoarseChecks(ctx)
	}
}

func (d *Daemon) runCoarseChecks(ctx context.Context) {
	current, _ := d.reader.Scalar(ctx, fmt.Sprintf("SELECT endpoints FROM servers WHERE id = '%s'", validate.QuoteSQL(d.cfg.ServerID)))
	if err := discovery.UpdateIfChanged(ctx, d.discoverer, d.reader, d.writer, d.cfg.ServerID, current); err != nil {
		d.logger.Error().Err(err).Str("error_kind", string(errkind.Transport)).Msg("public ip discovery failed")
	}

	d.selfcheck.Run(ctx, d.cfg.ServerID)

	if err := d.partition.Check(ctx); err != nil {
		d.logger.Error().Err(err).Str("error_kind", string(errkind.StoreQuery)).Msg("partition detection failed")
	}
}

func (d *Daemon) writeHeartbeat(ctx context.Context) {
	nowMs := time.Now().UnixMilli()
	sql := fmt.Sprintf("UPDATE servers SET last_seen = %d WHERE id = '%s'", nowMs, validate.QuoteSQL(d.cfg.ServerID))
	if _, err := d.writer.Exec(ctx, sql); err != nil {
		d.logger.Error().Err(err).Str("error_kind", string(errkind.StoreQuery)).Msg("heartbeat write failed")
	}
}

func (d *Daemon) finalHeartbeat(ctx context.Context) {
	d.writeHeartbeat(ctx)
	d.logger.Info().Msg("daemon shut down cleanly")
}

func (d *Daemon) syncContainerHealth(ctx context.Context) {
	rows, err := d.reader.Query(ctx, fmt.Sprintf(
		"SELECT id, private_ip, health_port, health_status, consecutive_failures, started_at FROM containers WHERE server_id = '%s'",
		validate.QuoteSQL(d.cfg.ServerID)))
	if err != nil {
		d.logger.Error().Err(err).Str("error_kind", string(errkind.StoreQuery)).Msg("container health query failed")
		return
	}

	containers := rowsToContainers(rows, d.cfg.ServerID)
	changed := d.health.Sync(ctx, containers)
	reportContainerStatusCounts(containers, changed)
	if len(changed) == 0 {
		return
	}

	statements := make([]string, 0, len(changed))
	for _, c := range changed {
		if !validate.ContainerID(c.ID) {
			d.logger.Warn().Str("container_id", c.ID).Str("error_kind", string(errkind.Validation)).Msg("health sync skipped write: invalid container id")
			continue
		}
		statements = append(statements, fmt.Sprintf(
			"UPDATE containers SET health_status = '%s', last_health_check = %d, consecutive_failures = %d WHERE id = '%s'",
			validate.QuoteSQL(string(c.HealthStatus)), c.LastHealthCheckMs, c.ConsecutiveFailures, validate.QuoteSQL(c.ID)))
	}
	if len(statements) == 0 {
		return
	}
	if _, err := d.writer.Exec(ctx, statements...); err != nil {
		d.logger.Error().Err(err).Str("error_kind", string(errkind.StoreQuery)).Msg("container health write-back failed")
	}
}
