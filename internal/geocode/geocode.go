// Package geocode resolves street addresses to comunas as a last
// resort when extraction finds an address but no comuna. The only real
// implementation talks to a Nominatim endpoint; a noop resolver stands
// in when geocoding is disabled.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/legaltech-cl/extracto/internal/comuna"
)

// Resolver maps a street address to a comuna name with a confidence
// in [0,1].
type Resolver interface {
	ResolveComuna(ctx context.Context, address string) (string, float64, error)
}

// Noop always answers "not found". Used when geocoding is disabled.
type Noop struct{}

// ResolveComuna implements Resolver.
func (Noop) ResolveComuna(context.Context, string) (string, float64, error) {
	return "", 0, nil
}

const (
	// DefaultEndpoint is the public Nominatim search API.
	DefaultEndpoint = "https://nominatim.openstreetmap.org/search"
	// DefaultUserAgent identifies this tool per the Nominatim usage
	// policy.
	DefaultUserAgent = "extracto/1.0 (document processing)"
	// DefaultDelay is the minimum spacing between requests the public
	// endpoint tolerates.
	DefaultDelay = time.Second
)

// Nominatim resolves addresses against a Nominatim endpoint, enforcing
// a minimum delay between calls.
type Nominatim struct {
	Endpoint  string
	UserAgent string
	Delay     time.Duration
	Client    *http.Client

	mu       sync.Mutex
	lastCall time.Time
}

// NewNominatim returns a resolver for the given endpoint; empty
// arguments take the package defaults.
func NewNominatim(endpoint, userAgent string, delay time.Duration) *Nominatim {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Nominatim{
		Endpoint:  endpoint,
		UserAgent: userAgent,
		Delay:     delay,
		Client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type nominatimResult struct {
	Importance float64 `json:"importance"`
	Address    struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Municipality string `json:"municipality"`
		County       string `json:"county"`
	} `json:"address"`
}

// ResolveComuna implements Resolver. The first result whose city, town,
// municipality or county names a known comuna wins; the result's
// importance becomes the confidence.
func (n *Nominatim) ResolveComuna(ctx context.Context, address string) (string, float64, error) {
	if address == "" {
		return "", 0, nil
	}
	if err := n.throttle(ctx); err != nil {
		return "", 0, err
	}

	q := url.Values{}
	q.Set("q", address+", Chile")
	q.Set("format", "json")
	q.Set("addressdetails", "1")
	q.Set("limit", "3")
	q.Set("countrycodes", "cl")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", 0, fmt.Errorf("building geocode request: %w", err)
	}
	req.Header.Set("User-Agent", n.UserAgent)

	resp, err := n.Client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("geocode request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("geocode request: unexpected status %s", resp.Status)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", 0, fmt.Errorf("decoding geocode response: %w", err)
	}

	for _, r := range results {
		for _, cand := range []string{
			r.Address.City, r.Address.Town, r.Address.Municipality, r.Address.County,
		} {
			if cand == "" {
				continue
			}
			if fixed, ok := comuna.Fix(cand); ok {
				conf := r.Importance
				if conf > 1 {
					conf = 1
				}
				return fixed, conf, nil
			}
		}
	}
	return "", 0, nil
}

// throttle enforces the inter-request delay.
func (n *Nominatim) throttle(ctx context.Context) error {
	n.mu.Lock()
	wait := n.Delay - time.Since(n.lastCall)
	n.lastCall = time.Now().Add(wait)
	n.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
