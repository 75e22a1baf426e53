package esi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://esi.test.local/latest", "test-agent")

		if c.baseURL != "https://esi.test.local/latest" {
			t.Errorf("baseURL = %q, want %q", c.baseURL, "https://esi.test.local/latest")
		}
		if c.userAgent != "test-agent" {
			t.Errorf("userAgent = %q, want %q", c.userAgent, "test-agent")
		}
		if c.httpClient.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 30*time.Second)
		}
		if c.maxRetries != 3 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 3)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with options", func(t *testing.T) {
		c := NewClient("https://esi.test.local", "",
			WithTimeout(5*time.Second),
			WithRetries(5, 2*time.Second),
		)
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 5*time.Second)
		}
		if c.maxRetries != 5 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 5)
		}
		if c.retryBackoff != 2*time.Second {
			t.Errorf("retryBackoff = %v, want %v", c.retryBackoff, 2*time.Second)
		}
	})
}

func TestDoWithRetry_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "", WithRetries(3, time.Millisecond))

	p, err := c.doWithRetry(context.Background(), "/markets/1/types/", nil)
	if err != nil {
		t.Fatalf("doWithRetry failed: %v", err)
	}
	if string(p.body) != "[]" {
		t.Errorf("body = %q, want []", p.body)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestDoWithRetry_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", WithRetries(3, time.Millisecond))

	_, err := c.doWithRetry(context.Background(), "/markets/1/orders/", nil)
	if err == nil {
		t.Fatal("doWithRetry should fail on 400")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retries)", calls.Load())
	}
}

func TestAPIError_IsRetryable(t *testing.T) {
	cases := []struct {
		status int
		want   bool
	}{
		{400, false},
		{404, false},
		{420, true},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tc := range cases {
		e := &APIError{StatusCode: tc.status}
		if got := e.IsRetryable(); got != tc.want {
			t.Errorf("IsRetryable(%d) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

// fakeCache is an in-memory ResponseCache for tests.
type fakeCache struct {
	entries map[string]page
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]page)}
}

func (f *fakeCache) Get(_ context.Context, key string) (page, bool) {
	p, ok := f.entries[key]
	return p, ok
}

func (f *fakeCache) Set(_ context.Context, key string, p page) {
	f.entries[key] = p
	f.sets++
}

func TestGetPage_CacheHitSkipsUpstream(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[34]`))
	}))
	defer server.Close()

	cache := newFakeCache()
	c := NewClient(server.URL, "", WithCache(cache))

	if _, err := c.getPage(context.Background(), "/markets/1/types/", nil, false); err != nil {
		t.Fatalf("first getPage failed: %v", err)
	}
	if _, err := c.getPage(context.Background(), "/markets/1/types/", nil, false); err != nil {
		t.Fatalf("second getPage failed: %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("upstream calls = %d, want 1 (second served from cache)", calls.Load())
	}
}

func TestGetPage_ForceRefreshBypassesCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[34]`))
	}))
	defer server.Close()

	cache := newFakeCache()
	c := NewClient(server.URL, "", WithCache(cache))

	if _, err := c.getPage(context.Background(), "/markets/1/types/", nil, false); err != nil {
		t.Fatalf("first getPage failed: %v", err)
	}
	if _, err := c.getPage(context.Background(), "/markets/1/types/", nil, true); err != nil {
		t.Fatalf("forced getPage failed: %v", err)
	}

	if calls.Load() != 2 {
		t.Errorf("upstream calls = %d, want 2 (force refresh bypasses cache)", calls.Load())
	}
	if cache.sets != 2 {
		t.Errorf("cache sets = %d, want 2 (forced response overwrites entry)", cache.sets)
	}
}
