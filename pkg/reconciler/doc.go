/*
Package reconciler drives the two peer-facing operations of one tick:
reconciling the mesh's peer set against active servers, and rotating peers
whose handshake has gone quiet.

	┌─────────────┐      ┌──────────────┐
	│ store reader │ ──▶ │ active servers│
	└─────────────┘      └──────┬───────┘
	                            ▼
	┌─────────────┐      ┌──────────────┐
	│  wg dump    │ ──▶ │  symmetric   │ ──▶ add / remove peers
	│             │      │  difference  │
	└─────────────┘      └──────────────┘

ReconcilePeers always runs before MonitorPeers within a tick (see
pkg/daemon), so a peer added this tick is never immediately judged silent
and rotated.
*/
package reconciler
