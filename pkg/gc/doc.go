/*
Package gc deletes container rows nothing will ever resurrect: containers
unhealthy past their grace window, and containers belonging to a server
that has gone dark.

	pass 1: health_status != healthy AND started_at older than STALE+SKEW
	pass 2: containers.server_id IN (servers older than OFFLINE)

Both passes are skipped entirely when pkg/partition reports a suspected
split-brain, so no container row is deleted while that flag is set.
*/
package gc
