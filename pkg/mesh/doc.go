/*
Package mesh is the only part of this daemon that talks to the encrypted
tunnel. It shells out to `wg` rather than linking wgctrl or netlink — see
DESIGN.md for why.

	┌──────────── wg dump line ────────────┐
	│ pubkey  psk  endpoint  allowed-ips   │
	│ latest_handshake  rx  tx  keepalive  │
	└────────────────────────────────────────┘

Every method here is a single subprocess invocation; none retries. Callers
(pkg/reconciler) treat a failed invocation as a mesh-kind error and move on
to the next peer rather than aborting the tick.
*/
package mesh
