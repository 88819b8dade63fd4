// Package reconciler computes the symmetric difference between active
// servers in the store and the mesh's current peer table, applies it
// through pkg/mesh, and rotates peers whose handshake has gone silent. It
// is grounded on the teacher's pkg/reconciler ticker/select reconciliation
// shape, generalized from node/container reconciliation to peer
// reconciliation.
package reconciler

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/acidtib/jiji/pkg/mesh"
	"github.com/acidtib/jiji/pkg/metrics"
	"github.com/acidtib/jiji/pkg/store"
	"github.com/acidtib/jiji/pkg/types"
	"github.com/acidtib/jiji/pkg/validate"
)

const (
	activeWindowMs   = 5 * 60 * 1000
	handshakeStaleS  = 275
	defaultKeepalive = 25
)

// Reconciler owns the peer-reconciliation and peer-monitoring operations
// for one node's mesh interface.
type Reconciler struct {
	SelfID string
	Reader store.Reader
	Writer store.Writer
	Mesh   *mesh.Controller
	Logger zerolog.Logger
}

// New builds a Reconciler.
func New(selfID string, r store.Reader, w store.Writer, m *mesh.Controller, logger zerolog.Logger) *Reconciler {
	return &Reconciler{SelfID: selfID, Reader: r, Writer: w, Mesh: m, Logger: logger}
}

// ReconcilePeers adds peers for every active server missing from the mesh
// and removes mesh peers with no corresponding active server row (spec
// §4.D). It never partially applies a peer: any invalid field skips that
// server entirely.
func (rc *Reconciler) ReconcilePeers(ctx context.Context) error {
	now, err := store.NowMillis(ctx, rc.Reader)
	if err != nil {
		return fmt.Errorf("reconcile peers: read store clock: %w", err)
	}

	servers, err := rc.activeServers(ctx, now)
	if err != nil {
		return fmt.Errorf("reconcile peers: query active servers: %w", err)
	}

	peers, err := rc.Mesh.DumpPeers(ctx)
	if err != nil {
		return fmt.Errorf("reconcile peers: dump mesh peers: %w", err)
	}

	currentPeers := make(map[string]bool, len(peers))
	for _, p := range peers {
		currentPeers[p.PublicKey] = true
	}

	activeKeys := make(map[string]bool, len(servers))
	for _, srv := range servers {
		if srv.ID == rc.SelfID {
			continue
		}
		activeKeys[srv.PublicKey] = true

		if currentPeers[srv.PublicKey] {
			continue
		}
		rc.addPeer(ctx, srv)
	}

	for _, p := range peers {
		if activeKeys[p.PublicKey] {
			continue
		}
		if err := rc.Mesh.RemovePeer(ctx, p.PublicKey); err != nil {
			rc.Logger.Error().Err(err).Str("public_key", p.PublicKey).Msg("remove stale peer failed")
			continue
		}
		metrics.PeersRemovedTotal.Inc()
		rc.Logger.Info().Str("public_key", p.PublicKey).Msg("removed orphan peer")
	}

	return nil
}

func (rc *Reconciler) addPeer(ctx context.Context, srv types.Server) {
	if !validate.PublicKey(srv.PublicKey) {
		rc.Logger.Warn().Str("server_id", srv.ID).Msg("skipping peer add: invalid public key")
		return
	}
	if !validate.CIDR(srv.Subnet) {
		rc.Logger.Warn().Str("server_id", srv.ID).Msg("skipping peer add: invalid subnet")
		return
	}
	if !validate.IPv6(srv.ManagementIP) {
		rc.Logger.Warn().Str("server_id", srv.ID).Msg("skipping peer add: invalid management ip")
		return
	}
	if len(srv.Endpoints) == 0 {
		rc.Logger.Warn().Str("server_id", srv.ID).Msg("skipping peer add: no endpoints")
		return
	}
	firstEndpoint := srv.Endpoints[0]
	if !validate.Endpoint(firstEndpoint) {
		rc.Logger.Warn().Str("server_id", srv.ID).Msg("skipping peer add: invalid endpoint")
		return
	}

	allowedIPs := []string{srv.Subnet, srv.ManagementIP + "/128"}
	if err := rc.Mesh.SetPeer(ctx, srv.PublicKey, allowedIPs, firstEndpoint, defaultKeepalive); err != nil {
		rc.Logger.Error().Str("server_id", srv.ID).Err(err).Msg("set peer failed")
		return
	}
	metrics.PeersAddedTotal.Inc()
	rc.Logger.Info().Str("server_id", srv.ID).Str("endpoint", firstEndpoint).Msg("added peer")
}

// MonitorPeers rotates any peer whose handshake has gone silent for more
// than 275 seconds (the kernel's own rekey-attempt ceiling) to the next
// endpoint in its server's ordered endpoint list (spec §4.E). It never
// touches a peer that has not completed its first handshake yet.
func (rc *Reconciler) MonitorPeers(ctx context.Context) error {
	peers, err := rc.Mesh.DumpPeers(ctx)
	if err != nil {
		return fmt.Errorf("monitor peers: dump mesh peers: %w", err)
	}

	now := time.Now()
	for _, p := range peers {
		if p.LatestHandshake == 0 {
			continue
		}
		age := mesh.HandshakeAge(p.LatestHandshake, now)
		if age <= handshakeStaleS*time.Second {
			continue
		}
		rc.rotate(ctx, p)
	}
	return nil
}

func (rc *Reconciler) rotate(ctx context.Context, p types.Peer) {
	srv, err := rc.serverByPublicKey(ctx, p.PublicKey)
	if err != nil {
		rc.Logger.Warn().Str("public_key", p.PublicKey).Err(err).Msg("rotate aborted: server lookup failed")
		return
	}
	if len(srv.Endpoints) < 2 {
		return
	}

	idx := -1
	for i, ep := range srv.Endpoints {
		if ep == p.Endpoint {
			idx = i
			break
		}
	}
	next := srv.Endpoints[(idx+1)%len(srv.Endpoints)]
	if idx >= 0 && next == p.Endpoint {
		return
	}
	if !validate.Endpoint(next) {
		rc.Logger.Warn().Str("public_key", p.PublicKey).Str("endpoint", next).Msg("rotate aborted: invalid next endpoint")
		return
	}

	if err := rc.Mesh.UpdateEndpoint(ctx, p.PublicKey, next); err != nil {
		rc.Logger.Error().Str("public_key", p.PublicKey).Err(err).Msg("update endpoint failed")
		return
	}
	metrics.PeersRotatedTotal.Inc()
	rc.Logger.Info().Str("public_key", p.PublicKey).Str("endpoint", next).Msg("rotated stale peer")
}

func (rc *Reconciler) activeServers(ctx context.Context, now int64) ([]types.Server, error) {
	cutoff := now - activeWindowMs
	sql := fmt.Sprintf("SELECT id, public_key, subnet, management_ip, endpoints, last_seen, hostname FROM servers WHERE last_seen >= %d", cutoff)
	rows, err := rc.Reader.Query(ctx, sql)
	if err != nil {
		return nil, err
	}

	servers := make([]types.Server, 0, len(rows))
	for _, row := range rows {
		if len(row) < 7 {
			continue
		}
		lastSeen, _ := strconv.ParseInt(row[5], 10, 64)
		servers = append(servers, types.Server{
			ID:           row[0],
			PublicKey:    row[1],
			Subnet:       row[2],
			ManagementIP: row[3],
			Endpoints:    parseEndpoints(row[4]),
			LastSeenMs:   lastSeen,
			Hostname:     row[6],
		})
	}
	return servers, nil
}

func (rc *Reconciler) serverByPublicKey(ctx context.Context, publicKey string) (types.Server, error) {
	if !validate.PublicKey(publicKey) {
		return types.Server{}, fmt.Errorf("invalid public key")
	}
	sql := fmt.Sprintf("SELECT id, public_key, subnet, management_ip, endpoints, last_seen, hostname FROM servers WHERE public_key = '%s'", validate.QuoteSQL(publicKey))
	rows, err := rc.Reader.Query(ctx, sql)
	if err != nil {
		return types.Server{}, err
	}
	if len(rows) == 0 || len(rows[0]) < 7 {
		return types.Server{}, fmt.Errorf("no server row for public key")
	}
	row := rows[0]
	lastSeen, _ := strconv.ParseInt(row[5], 10, 64)
	return types.Server{
		ID:           row[0],
		PublicKey:    row[1],
		Subnet:       row[2],
		ManagementIP: row[3],
		Endpoints:    parseEndpoints(row[4]),
		LastSeenMs:   lastSeen,
		Hostname:     row[6],
	}, nil
}

// parseEndpoints decodes the store's JSON string-array encoding of a
// server's endpoint list. Malformed JSON yields an empty list; non-string
// elements are silently dropped rather than aborting the whole decode.
func parseEndpoints(raw string) []string {
	var generic []interface{}
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(generic))
	for _, v := range generic {
		s, ok := v.(string)
		if !ok {
			continue
		}
		out = append(out, s)
	}
	return out
}
