package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeolocation(t *testing.T, handler http.HandlerFunc) (*GeolocationService, *atomic.Int32, *testClock) {
	t.Helper()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	clock := newTestClock()
	svc := &GeolocationService{}
	require.NoError(t, svc.init(server.URL, "tok", time.Second, 24*time.Hour, 100))
	svc.now = clock.Now
	t.Cleanup(svc.Shutdown)
	return svc, &hits, clock
}

func TestGeolocation_LocalAddresses(t *testing.T) {
	svc, hits, _ := newTestGeolocation(t, func(w http.ResponseWriter, r *http.Request) {})

	for _, ip := range []string{"127.0.0.1", "::1", "unknown", ""} {
		location := svc.Lookup(context.Background(), ip)
		assert.Equal(t, "Local", location.Country)
		assert.Equal(t, "Localhost", location.City)
	}
	assert.Equal(t, int32(0), hits.Load())
}

func TestGeolocation_FetchesAndCaches(t *testing.T) {
	svc, hits, clock := newTestGeolocation(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/203.0.113.7/json", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ip":"203.0.113.7","country":"NL","region":"North Holland","city":""}`))
	})
	ctx := context.Background()

	location := svc.Lookup(ctx, "203.0.113.7")
	assert.Equal(t, "NL", location.Country)
	assert.Equal(t, "North Holland", location.Region)
	assert.Equal(t, "Unknown", location.City)

	svc.Lookup(ctx, "203.0.113.7")
	assert.Equal(t, int32(1), hits.Load())

	clock.Advance(25 * time.Hour)
	svc.Lookup(ctx, "203.0.113.7")
	assert.Equal(t, int32(2), hits.Load())
}

func TestGeolocation_FailuresAreCachedAsUnknown(t *testing.T) {
	svc, hits, _ := newTestGeolocation(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	ctx := context.Background()

	location := svc.Lookup(ctx, "198.51.100.2")
	assert.Equal(t, "Unknown", location.Country)

	svc.Lookup(ctx, "198.51.100.2")
	assert.Equal(t, int32(1), hits.Load())
}

func TestGeolocation_SweepExpired(t *testing.T) {
	svc, _, clock := newTestGeolocation(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"country":"NL"}`))
	})
	svc.Lookup(context.Background(), "203.0.113.7")

	assert.Equal(t, 0, svc.SweepExpired(clock.Now()))
	assert.Equal(t, 1, svc.SweepExpired(clock.Now().Add(25*time.Hour)))
}
