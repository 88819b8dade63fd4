/*
Package selfcheck verifies the local store is serviceable before a tick
trusts its reads.

	is-active? ──no──▶ restart ──▶ wait 5s ──▶ still down? log, return
	   │yes
	   ▼
	SELECT 1 ──fail──▶ log, return
	   │ok
	   ▼
	own last_seen stale > 120s? ──▶ warn

Every step is best-effort: a failure anywhere logs and returns rather than
propagating an error, since this check never blocks the rest of the tick.
*/
package selfcheck
