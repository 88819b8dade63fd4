/*
Package health classifies each local container's liveness with hysteresis.

	not-running     3rd fail        1st fail
	──────────▶ unhealthy ◀───── degraded ◀───── healthy
	                               ▲  │              │
	                               └──┴── probe-ok ───┘

Every tick probes process liveness first (CLIProber for docker/podman,
ContainerdProber when JIJI_ENGINE=containerd); only a running container
with a configured health port gets the second-stage TCP probe. Probing
runs concurrently across containers via golang.org/x/sync/errgroup — the
one deliberate deviation from this daemon's otherwise single-threaded
cooperative scheduler (see pkg/daemon).
*/
package health
