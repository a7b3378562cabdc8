package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/foodbridge/donations-backend/pkg/errors"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		want    time.Duration
		ok      bool
	}{
		{"accept", http.MethodPost, "/api/v1/donations/{donationID}/accept", criticalIdempotencyTTL, true},
		{"cancel acceptance", http.MethodPost, "/api/v1/donations/{donationID}/cancel-acceptance", criticalIdempotencyTTL, true},
		{"cancel", http.MethodPost, "/api/v1/donations/{donationID}/cancel", criticalIdempotencyTTL, true},
		{"pickup", http.MethodPost, "/api/v1/donations/{donationID}/pickup", defaultIdempotencyTTL, true},
		{"create donation", http.MethodPost, "/api/v1/donations", defaultIdempotencyTTL, true},
		{"mark seen", http.MethodPost, "/api/v1/notifications/seen", defaultIdempotencyTTL, true},
		{"nearby listing", http.MethodGet, "/api/v1/donations/nearby", 0, false},
	}

	for _, tt := range tests {
		ttl, ok := routeTTL(tt.method, tt.pattern)
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if ok && ttl != tt.want {
			t.Fatalf("%s: expected ttl=%v got %v", tt.name, tt.want, ttl)
		}
	}
}

func TestIdempotencyMiddlewareRequiresHeader(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusCreated)
	})

	req := requestWithPattern(http.MethodPost, "/api/v1/donations", "/api/v1/donations", strings.NewReader(`{"title":"bread"}`))
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if handlerCalled {
		t.Fatalf("handler should not run without idempotency key")
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	req := requestWithPattern(http.MethodPost, "/api/v1/donations", "/api/v1/donations", strings.NewReader(`{"title":"bread"}`))
	req.Header.Set("Idempotency-Key", "abc")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected first response 202 got %d", resp.Code)
	}

	replay := requestWithPattern(http.MethodPost, "/api/v1/donations", "/api/v1/donations", strings.NewReader(`{"title":"bread"}`))
	replay.Header.Set("Idempotency-Key", "abc")
	replayResp := httptest.NewRecorder()
	mw(handler).ServeHTTP(replayResp, replay)

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if replayResp.Code != http.StatusAccepted {
		t.Fatalf("expected replayed 202 got %d", replayResp.Code)
	}
	if replayResp.Body.String() != `{"ok":true}` {
		t.Fatalf("unexpected replayed body: %s", replayResp.Body.String())
	}
}

func TestIdempotencyMiddlewareRejectsMismatchedBody(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	first := requestWithPattern(http.MethodPost, "/api/v1/donations", "/api/v1/donations", strings.NewReader(`{"title":"bread"}`))
	first.Header.Set("Idempotency-Key", "abc")
	mw(handler).ServeHTTP(httptest.NewRecorder(), first)

	second := requestWithPattern(http.MethodPost, "/api/v1/donations", "/api/v1/donations", strings.NewReader(`{"title":"rice"}`))
	second.Header.Set("Idempotency-Key", "abc")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, second)

	if resp.Code != pkgerrors.MetadataFor(pkgerrors.CodeIdempotency).HTTPStatus {
		t.Fatalf("expected idempotency conflict status got %d", resp.Code)
	}
}

func TestIdempotencyMiddlewareSkipsUnlistedRoutes(t *testing.T) {
	store := newFakeStore()
	mw := Idempotency(store, nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	req := requestWithPattern(http.MethodGet, "/api/v1/donations/nearby", "/api/v1/donations/nearby", nil)
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	mw(handler).ServeHTTP(httptest.NewRecorder(), requestWithPattern(http.MethodGet, "/api/v1/donations/nearby", "/api/v1/donations/nearby", nil))

	if calls != 2 {
		t.Fatalf("expected handler to run for every request, ran %d times", calls)
	}
}
