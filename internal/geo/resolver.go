package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ResolutionError indicates that an IP address could not be resolved to a
// location. Callers must not substitute a zero coordinate for a failed
// resolution; the error is surfaced so scoring can isolate the account.
type ResolutionError struct {
	IP  string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve location for %s: %v", e.IP, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Resolver maps an IP address to a geographic location.
type Resolver interface {
	ResolveLocation(ctx context.Context, ip string) (Point, error)
}

// HTTPResolver resolves locations through an ipgeolocation-style REST API.
// Transient failures are retried with backoff before a ResolutionError is
// returned.
type HTTPResolver struct {
	baseURL string
	apiKey  string
	client  *retryablehttp.Client
}

// NewHTTPResolver creates an HTTPResolver against the given API base URL.
func NewHTTPResolver(baseURL, apiKey string) *HTTPResolver {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil
	return &HTTPResolver{baseURL: baseURL, apiKey: apiKey, client: client}
}

// geoResponse mirrors the service's response body. The service returns
// coordinates as strings, not numbers.
type geoResponse struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// ResolveLocation implements Resolver.
func (r *HTTPResolver) ResolveLocation(ctx context.Context, ip string) (Point, error) {
	q := url.Values{}
	q.Set("apiKey", r.apiKey)
	q.Set("ip", ip)
	q.Set("fields", "latitude,longitude")

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Point{}, &ResolutionError{IP: ip, Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Point{}, &ResolutionError{IP: ip, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Point{}, &ResolutionError{IP: ip, Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}

	var gr geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return Point{}, &ResolutionError{IP: ip, Err: fmt.Errorf("decode response: %w", err)}
	}

	lat, err := strconv.ParseFloat(gr.Latitude, 64)
	if err != nil {
		return Point{}, &ResolutionError{IP: ip, Err: fmt.Errorf("parse latitude %q: %w", gr.Latitude, err)}
	}
	long, err := strconv.ParseFloat(gr.Longitude, 64)
	if err != nil {
		return Point{}, &ResolutionError{IP: ip, Err: fmt.Errorf("parse longitude %q: %w", gr.Longitude, err)}
	}

	return Point{Lat: lat, Long: long}, nil
}

// StaticResolver resolves from a fixed IP→Point table. Useful for tests and
// for deployments without a geolocation API key.
type StaticResolver struct {
	table map[string]Point
}

// NewStaticResolver creates a StaticResolver over the given table. The table
// is not copied; callers should not mutate it afterwards.
func NewStaticResolver(table map[string]Point) *StaticResolver {
	if table == nil {
		table = make(map[string]Point)
	}
	return &StaticResolver{table: table}
}

// ResolveLocation implements Resolver. Unknown IPs produce a ResolutionError.
func (r *StaticResolver) ResolveLocation(_ context.Context, ip string) (Point, error) {
	p, ok := r.table[ip]
	if !ok {
		return Point{}, &ResolutionError{IP: ip, Err: fmt.Errorf("no entry for ip")}
	}
	return p, nil
}
