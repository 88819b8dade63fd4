// Package discovery resolves this server's public IP from a small ordered
// list of external HTTP services and, when it has changed, republishes it
// as this server's sole mesh endpoint. It is grounded on the teacher's
// http.Client-with-deadline idiom (pkg/health/http.go), generalized from a
// health probe to a one-shot external lookup.
package discovery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/acidtib/jiji/pkg/store"
	"github.com/acidtib/jiji/pkg/validate"
)

const (
	perRequestTimeout = 5 * time.Second
	wgPort            = 31820
)

// DefaultServices is the ordered list of plain-text IP-echo services tried
// in order; the first one to return a well-formed IPv4 literal wins.
var DefaultServices = []string{
	"https://ifconfig.me/ip",
	"https://icanhazip.com",
	"https://ipinfo.io/ip",
}

// Discoverer resolves the public IP and writes it back when it changes.
type Discoverer struct {
	Services []string
	Client   *http.Client
	Logger   zerolog.Logger
}

// New builds a Discoverer. An empty services slice uses DefaultServices.
func New(services []string, logger zerolog.Logger) *Discoverer {
	if len(services) == 0 {
		services = DefaultServices
	}
	return &Discoverer{
		Services: services,
		Client:   &http.Client{Timeout: perRequestTimeout},
		Logger:   logger,
	}
}

// Resolve tries each service in order and returns the first strict-IPv4
// response body. It returns ok=false if every service failed or returned
// something that doesn't parse as an IPv4 literal.
func (d *Discoverer) Resolve(ctx context.Context) (ip string, ok bool) {
	for _, svc := range d.Services {
		reqCtx, cancel := context.WithTimeout(ctx, perRequestTimeout)
		candidate, err := d.fetch(reqCtx, svc)
		cancel()
		if err != nil {
			d.Logger.Warn().Str("service", svc).Err(err).Msg("ip discovery request failed")
			continue
		}
		if validate.IPv4(candidate) {
			return candidate, true
		}
		d.Logger.Warn().Str("service", svc).Str("body", candidate).Msg("ip discovery returned non-IPv4 body")
	}
	return "", false
}

func (d *Discoverer) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// UpdateIfChanged resolves the public IP and, if it is not already
// substring-present in the server's stored endpoints, overwrites it with
// a single-element endpoint list at the daemon's well-known tunnel port
// (spec §4.G). A resolution failure is a no-op, not an error.
func UpdateIfChanged(ctx context.Context, d *Discoverer, reader store.Reader, writer store.Writer, selfID, currentEndpoints string) error {
	ip, ok := d.Resolve(ctx)
	if !ok {
		d.Logger.Warn().Msg("public ip discovery exhausted all services")
		return nil
	}

	if strings.Contains(currentEndpoints, ip) {
		return nil
	}

	endpoint := fmt.Sprintf("%s:%d", ip, wgPort)
	sql := fmt.Sprintf(`UPDATE servers SET endpoints = '["%s"]' WHERE id = '%s'`,
		validate.QuoteSQL(endpoint), validate.QuoteSQL(selfID))

	if _, err := writer.Exec(ctx, sql); err != nil {
		return fmt.Errorf("update endpoints: %w", err)
	}
	d.Logger.Info().Str("ip", ip).Msg("updated public endpoint")
	return nil
}
