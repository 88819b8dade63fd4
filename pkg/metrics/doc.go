/*
Package metrics defines and registers this daemon's Prometheus metrics and
exposes them for scraping.

	┌────────── METRICS ──────────┐
	│  jiji_tick_duration_seconds  │
	│  jiji_ticks_total            │
	│  jiji_tick_slow_total        │
	│  jiji_peers_{added,removed,  │
	│    rotated}_total            │
	│  jiji_containers_by_status   │
	│  jiji_gc_deleted_containers_ │
	│    total                     │
	│  jiji_split_brain            │
	│  jiji_active_server_pct      │
	└──────────────────────────────┘

Handler() serves the standard Prometheus exposition format; cmd/jijid
mounts it on JIJI_METRICS_ADDR (loopback by default). An empty value falls
back to that default; the endpoint cannot be switched off by configuration.
*/
package metrics
