package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVisits(t *testing.T, store *StoreService) *VisitService {
	t.Helper()

	return &VisitService{
		store:    store,
		maxVisit: maxVisitsStored,
		now:      newTestClock().Now,
	}
}

func TestVisit_UniqueTracking(t *testing.T) {
	ctx := context.Background()
	svc := newTestVisits(t, newTestStore(t))

	first, err := svc.LogVisit(ctx, "203.0.113.7", "Mozilla/5.0", "https://example.com")
	require.NoError(t, err)
	assert.True(t, first.IsUniqueVisit)
	assert.Equal(t, 1, first.TotalVisits)
	assert.Equal(t, 1, first.UniqueVisits)

	again, err := svc.LogVisit(ctx, "203.0.113.7", "Mozilla/5.0", "")
	require.NoError(t, err)
	assert.False(t, again.IsUniqueVisit)
	assert.Equal(t, 2, again.TotalVisits)
	assert.Equal(t, 1, again.UniqueVisits)

	other, err := svc.LogVisit(ctx, "198.51.100.2", "curl/8", "")
	require.NoError(t, err)
	assert.True(t, other.IsUniqueVisit)
	assert.Equal(t, 3, other.TotalVisits)
	assert.Equal(t, 2, other.UniqueVisits)
}

func TestVisit_CapKeepsUniqueSet(t *testing.T) {
	ctx := context.Background()
	svc := newTestVisits(t, newTestStore(t))
	svc.maxVisit = 3

	for i := 0; i < 5; i++ {
		_, err := svc.LogVisit(ctx, fmt.Sprintf("198.51.100.%d", i), "ua", "")
		require.NoError(t, err)
	}

	stats := svc.Stats(ctx)
	assert.Equal(t, 3, stats.TotalVisits)
	assert.Equal(t, 5, stats.UniqueVisits)
	require.Len(t, stats.RecentVisits, 3)
	assert.Equal(t, "198.51.100.2", stats.RecentVisits[0].IP)

	again, err := svc.LogVisit(ctx, "198.51.100.0", "ua", "")
	require.NoError(t, err)
	assert.False(t, again.IsUniqueVisit, "evicted visits still count as seen")
}

func TestVisit_StatsShowsLastTen(t *testing.T) {
	ctx := context.Background()
	svc := newTestVisits(t, newTestStore(t))

	for i := 0; i < 12; i++ {
		_, err := svc.LogVisit(ctx, fmt.Sprintf("198.51.100.%d", i), "ua", "")
		require.NoError(t, err)
	}

	stats := svc.Stats(ctx)
	assert.Equal(t, 12, stats.TotalVisits)
	require.Len(t, stats.RecentVisits, 10)
	assert.Equal(t, "198.51.100.2", stats.RecentVisits[0].IP)
	assert.Equal(t, "198.51.100.11", stats.RecentVisits[9].IP)
}

func TestVisit_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := newTestVisits(t, store).LogVisit(ctx, "203.0.113.7", "ua", "")
	require.NoError(t, err)

	result, err := newTestVisits(t, store).LogVisit(ctx, "203.0.113.7", "ua", "")
	require.NoError(t, err)
	assert.False(t, result.IsUniqueVisit)
	assert.Equal(t, 2, result.TotalVisits)
}

func TestVisit_CorruptDocumentReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	backend, err := newFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "visits.json"), []byte("{not json"), 0o644))

	svc := newTestVisits(t, &StoreService{backend: backend})

	stats := svc.Stats(ctx)
	assert.Equal(t, 0, stats.TotalVisits)
	assert.Empty(t, stats.RecentVisits)

	result, err := svc.LogVisit(ctx, "203.0.113.7", "ua", "")
	require.NoError(t, err)
	assert.True(t, result.IsUniqueVisit)
	assert.Equal(t, 1, result.TotalVisits)
}

func TestVisit_RecordsLocation(t *testing.T) {
	ctx := context.Background()
	svc := newTestVisits(t, newTestStore(t))
	svc.locator = &fakeLocator{}

	_, err := svc.LogVisit(ctx, "203.0.113.7", "ua", "https://example.com/about")
	require.NoError(t, err)

	recent := svc.Stats(ctx).RecentVisits
	require.Len(t, recent, 1)
	require.NotNil(t, recent[0].Location)
	assert.Equal(t, "Sample City", recent[0].Location.City)
	assert.Equal(t, "https://example.com/about", recent[0].Referer)
}
