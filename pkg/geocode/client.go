package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/foodbridge/donations-backend/pkg/errors"
	"github.com/foodbridge/donations-backend/pkg/geo"
)

const (
	defaultBaseURL              = "https://nominatim.openstreetmap.org"
	responseBodyReadLimit int64 = 1024
)

// ErrNotFound is returned when the provider has no match for the address.
var ErrNotFound = errors.New("geocode: address not found")

// Geocoder resolves a free-text address into coordinates. The donation
// creation path depends on this interface, not the HTTP client.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geo.Point, error)
}

// Client calls a Nominatim-compatible search endpoint.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	userAgent     string
	countrySuffix string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured search base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithCountrySuffix appends a country hint to the first lookup attempt.
func WithCountrySuffix(suffix string) Option {
	return func(c *Client) {
		c.countrySuffix = strings.TrimSpace(suffix)
	}
}

// NewClient builds the geocoding client.
func NewClient(userAgent string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(userAgent)
	if trimmed == "" {
		return nil, errors.New("geocode: user agent is required")
	}

	client := &Client{
		userAgent:  trimmed,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	return client, nil
}

// Geocode resolves the address, trying a country-suffixed query first and
// falling back to the bare text when nothing matches.
func (c *Client) Geocode(ctx context.Context, address string) (geo.Point, error) {
	if c == nil {
		return geo.Point{}, pkgerrors.New(pkgerrors.CodeDependency, "geocoder not configured")
	}
	query := strings.TrimSpace(address)
	if query == "" {
		return geo.Point{}, pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}

	if c.countrySuffix != "" {
		point, err := c.search(ctx, query+", "+c.countrySuffix)
		if err == nil {
			return point, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return geo.Point{}, err
		}
	}
	return c.search(ctx, query)
}

func (c *Client) search(ctx context.Context, query string) (geo.Point, error) {
	endpoint := fmt.Sprintf("%s/search?%s", strings.TrimRight(c.baseURL, "/"), url.Values{
		"q":      []string{query},
		"format": []string{"json"},
		"limit":  []string{"1"},
	}.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return geo.Point{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build geocode request")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return geo.Point{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return geo.Point{}, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "geocode request failed")
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return geo.Point{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode geocode response")
	}
	if len(results) == 0 {
		return geo.Point{}, ErrNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return geo.Point{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse geocode latitude")
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return geo.Point{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse geocode longitude")
	}
	return geo.Point{Lat: lat, Lon: lon}, nil
}
