package geocode

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestClientGeocodeAppendsCountrySuffix(t *testing.T) {
	var capturedQueries []string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedQueries = append(capturedQueries, req.URL.Query().Get("q"))
		if req.Header.Get("User-Agent") != "test-agent" {
			t.Fatalf("user agent header missing")
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`[{"lat":"12.9716","lon":"77.5946"}]`)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-agent",
		WithBaseURL("http://geo.test"),
		WithHTTPClient(&http.Client{Transport: rt}),
		WithCountrySuffix("India"),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	point, err := client.Geocode(context.Background(), "MG Road, Bangalore")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if len(capturedQueries) != 1 || capturedQueries[0] != "MG Road, Bangalore, India" {
		t.Fatalf("unexpected queries %v", capturedQueries)
	}
	if point.Lat != 12.9716 || point.Lon != 77.5946 {
		t.Fatalf("unexpected point %+v", point)
	}
}

func TestClientGeocodeFallsBackToBareQuery(t *testing.T) {
	var capturedQueries []string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedQueries = append(capturedQueries, req.URL.Query().Get("q"))
		body := `[]`
		if len(capturedQueries) == 2 {
			body = `[{"lat":"1.5","lon":"-2.25"}]`
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-agent",
		WithBaseURL("http://geo.test"),
		WithHTTPClient(&http.Client{Transport: rt}),
		WithCountrySuffix("India"),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	point, err := client.Geocode(context.Background(), "Some Landmark")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if len(capturedQueries) != 2 {
		t.Fatalf("expected suffixed then bare query, got %v", capturedQueries)
	}
	if capturedQueries[1] != "Some Landmark" {
		t.Fatalf("expected bare fallback query, got %q", capturedQueries[1])
	}
	if point.Lat != 1.5 || point.Lon != -2.25 {
		t.Fatalf("unexpected point %+v", point)
	}
}

func TestClientGeocodeNotFound(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`[]`)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-agent",
		WithBaseURL("http://geo.test"),
		WithHTTPClient(&http.Client{Transport: rt}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.Geocode(context.Background(), "nowhere at all"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientGeocodeEmptyAddress(t *testing.T) {
	client, err := NewClient("test-agent")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Geocode(context.Background(), "   "); err == nil {
		t.Fatal("expected validation error for empty address")
	}
}
