// Package mesh wraps the four `wg` subcommands this daemon needs: dumping
// the current peer table, upserting a peer, removing a peer, and updating
// only a peer's endpoint. It never links against a netlink/wgctrl client —
// the external interface is the `wg` binary itself (spec §6), invoked as a
// subprocess exactly as the daemon's teacher wraps other host tools via
// os/exec.
package mesh

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/acidtib/jiji/pkg/types"
)

// Controller runs `wg` against a single interface.
type Controller struct {
	Interface string
	Binary    string // defaults to "wg" when empty
}

// NewController builds a Controller for the named WireGuard interface.
func NewController(iface string) *Controller {
	return &Controller{Interface: iface, Binary: "wg"}
}

func (c *Controller) bin() string {
	if c.Binary == "" {
		return "wg"
	}
	return c.Binary
}

func (c *Controller) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, c.bin(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("wg %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// DumpPeers lists the current peer table. The first output line is the
// interface's own header (private key, public key, listen port, fwmark)
// and is skipped.
func (c *Controller) DumpPeers(ctx context.Context) ([]types.Peer, error) {
	cmd := exec.CommandContext(ctx, c.bin(), "show", c.Interface, "dump")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("wg show %s dump: %w: %s", c.Interface, err, strings.TrimSpace(stderr.String()))
	}

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	if len(lines) <= 1 {
		return []types.Peer{}, nil
	}

	peers := make([]types.Peer, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 8 {
			continue
		}
		peer := types.Peer{
			PublicKey:    fields[0],
			PresharedKey: fields[1],
			Endpoint:     fields[2],
			AllowedIPs:   splitAllowedIPs(fields[3]),
		}
		peer.LatestHandshake, _ = strconv.ParseInt(fields[4], 10, 64)
		peer.RxBytes, _ = strconv.ParseInt(fields[5], 10, 64)
		peer.TxBytes, _ = strconv.ParseInt(fields[6], 10, 64)
		if fields[7] == "off" {
			peer.PersistentKeepalive = 0
		} else {
			peer.PersistentKeepalive, _ = strconv.Atoi(fields[7])
		}
		peers = append(peers, peer)
	}
	return peers, nil
}

func splitAllowedIPs(raw string) []string {
	if raw == "" || raw == "(none)" {
		return nil
	}
	return strings.Split(raw, ",")
}

// SetPeer creates or updates a peer. keepalive of 0 means "use the default
// 25s"; a caller wanting to disable keepalive explicitly is out of scope —
// this daemon always runs peers with keepalive.
func (c *Controller) SetPeer(ctx context.Context, publicKey string, allowedIPs []string, endpoint string, keepalive int) error {
	if keepalive <= 0 {
		keepalive = 25
	}
	args := []string{
		"set", c.Interface,
		"peer", publicKey,
		"allowed-ips", strings.Join(allowedIPs, ","),
		"endpoint", endpoint,
		"persistent-keepalive", strconv.Itoa(keepalive),
	}
	return c.run(ctx, args...)
}

// RemovePeer deletes a peer by public key. Removing an unknown key is not
// an error on the `wg` side; callers rely on this for idempotent retries.
func (c *Controller) RemovePeer(ctx context.Context, publicKey string) error {
	return c.run(ctx, "set", c.Interface, "peer", publicKey, "remove")
}

// UpdateEndpoint changes only the endpoint of an existing peer.
func (c *Controller) UpdateEndpoint(ctx context.Context, publicKey, endpoint string) error {
	return c.run(ctx, "set", c.Interface, "peer", publicKey, "endpoint", endpoint)
}

// HandshakeAge reports how long ago a peer's latest handshake occurred,
// given the Unix-second timestamp and the current time. A latestHandshake
// of 0 means the peer has never connected; callers must check for that
// before calling this.
func HandshakeAge(latestHandshake int64, now time.Time) time.Duration {
	return now.Sub(time.Unix(latestHandshake, 0))
}
