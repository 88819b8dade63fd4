package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jiji_tick_duration_seconds",
			Help:    "Duration of one reconciliation tick",
			Buckets: prometheus.DefBuckets,
		},
	)

	TicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jiji_ticks_total",
			Help: "Total number of reconciliation ticks run",
		},
	)

	TickSlowTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jiji_tick_slow_total",
			Help: "Total number of ticks that exceeded the slow-tick threshold",
		},
	)

	PeersAddedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jiji_peers_added_total",
			Help: "Total number of mesh peers added by the reconciler",
		},
	)

	PeersRemovedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jiji_peers_removed_total",
			Help: "Total number of mesh peers removed by the reconciler",
		},
	)

	PeersRotatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jiji_peers_rotated_total",
			Help: "Total number of peer endpoint rotations performed by the monitor",
		},
	)

	ContainersByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jiji_containers_by_status",
			Help: "Number of local containers by health status",
		},
		[]string{"status"},
	)

	GCDeletedContainersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jiji_gc_deleted_containers_total",
			Help: "Total number of container rows deleted by garbage collection",
		},
	)

	GCSkippedPartitionTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jiji_gc_skipped_partition_total",
			Help: "Total number of garbage-collection passes skipped due to split-brain",
		},
	)

	SplitBrain = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "jiji_split_brain",
			Help: "1 if the partition detector has set the split-brain flag, else 0",
		},
	)

	ActiveServerPct = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "jiji_active_server_pct",
			Help: "Percentage of known servers considered active by the partition detector",
		},
	)
)

func init() {
	prometheus.MustRegister(
		TickDuration,
		TicksTotal,
		TickSlowTotal,
		PeersAddedTotal,
		PeersRemovedTotal,
		PeersRotatedTotal,
		ContainersByStatus,
		GCDeletedContainersTotal,
		GCSkippedPartitionTotal,
		SplitBrain,
		ActiveServerPct,
	)
}

// Handler returns the HTTP handler that serves the Prometheus exposition
// format for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures an elapsed duration for a histogram observation.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time since NewTimer into h.
func (t *Timer) ObserveDuration(h prometheus.Histogram) {
	h.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time since NewTimer into one
// label combination of a HistogramVec.
func (t *Timer) ObserveDurationVec(h *prometheus.HistogramVec, labelValues ...string) {
	h.WithLabelValues(labelValues...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since NewTimer without recording it.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
