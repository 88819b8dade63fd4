package store

import (
	"context"
	"strconv"
)

// NowMillis asks the store for its own notion of the current time in
// milliseconds since epoch. Every comparison against a server's last_seen
// column must use this instead of the local clock, so that local clock
// drift never causes a server to be wrongly judged active or stale
// (spec §4.D step 1).
func NowMillis(ctx context.Context, r Reader) (int64, error) {
	v, ok := r.Scalar(ctx, "SELECT unixepoch('now') * 1000")
	if !ok {
		return 0, errNoClock
	}
	return strconv.ParseInt(v, 10, 64)
}

var errNoClock = &clockError{}

type clockError struct{}

func (*clockError) Error() string { return "store clock query returned no rows" }
