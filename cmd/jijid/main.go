package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/acidtib/jiji/pkg/config"
	"github.com/acidtib/jiji/pkg/daemon"
	"github.com/acidtib/jiji/pkg/health"
	"github.com/acidtib/jiji/pkg/log"
	"github.com/acidtib/jiji/pkg/metrics"
	"github.com/acidtib/jiji/pkg/store"
)

// storeUnit is the replicated store's systemd service name. Spec §4.J
// treats it as a fixed string, not an environment-configurable value.
const storeUnit = "corrosion.service"

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "jijid",
	Short:   "jijid reconciles one node's mesh peers, container health, and store membership",
	Version: Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("jijid version %s\ncommit: %s\n", Version, Commit))
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(healthcheckCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reconciliation daemon in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Probe the local store and exit 0 if it answers, 1 otherwise",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHealthcheck()
	},
}

func runDaemon() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log.Init(log.Config{Level: log.Level(cfg.LogLevel), ServerID: cfg.ServerID})

	prober, closeProber, err := buildProber(cfg)
	if err != nil {
		return fmt.Errorf("build health prober: %w", err)
	}
	if closeProber != nil {
		defer closeProber()
	}

	d := daemon.New(cfg, prober, storeUnit)

	go serveMetrics(cfg.MetricsAddr)

	return d.Run(context.Background())
}

func buildProber(cfg *config.Config) (health.Prober, func() error, error) {
	switch cfg.Engine {
	case config.EngineContainerd:
		prober, err := health.NewContainerdProber(cfg.ContainerdSock)
		if err != nil {
			return nil, nil, err
		}
		return prober, prober.Close, nil
	default:
		return health.NewCLIProber(string(cfg.Engine)), nil, nil
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Logger.Error().Err(err).Str("addr", addr).Msg("metrics listener exited")
	}
}

func runHealthcheck() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	reader := store.NewCLIReader(cfg.CorrosionDir)
	if _, ok := reader.Scalar(context.Background(), "SELECT 1"); !ok {
		os.Exit(1)
	}
	return nil
}
