package health

import (
	"context"
	"fmt"
	"net"
	"time"
)

const tcpProbeTimeout = 2 * time.Second

// ProbeTCP attempts a TCP connect to ip:port with a 2-second deadline
// (spec §5 suspension-point defaults). A successful connect is
// immediately closed; it proves reachability, nothing more.
func ProbeTCP(ctx context.Context, ip string, port int) bool {
	dialCtx, cancel := context.WithTimeout(ctx, tcpProbeTimeout)
	defer cancel()

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(dialCtx, "tcp", fmt.Sprintf("%s:%d", ip, port))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
