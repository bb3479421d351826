package services

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/lac-hong-legacy/portfolio_api/model"
	"github.com/lac-hong-legacy/portfolio_api/shared"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, time.May, 14, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) *StoreService {
	t.Helper()

	backend, err := newFileBackend(t.TempDir())
	require.NoError(t, err)
	return &StoreService{backend: backend, driver: "file"}
}

type fakeLocator struct {
	calls []string
}

func (f *fakeLocator) Lookup(_ context.Context, ip string) *model.Location {
	f.calls = append(f.calls, ip)
	return &model.Location{Country: "Testland", City: "Sample City"}
}

func requireAppError(t *testing.T, err error, status int) *shared.AppError {
	t.Helper()

	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok, "expected *shared.AppError, got %T", err)
	require.Equal(t, status, appErr.StatusCode)
	return appErr
}

func decodeResponse(t *testing.T, resp *http.Response) shared.Response {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body shared.Response
	require.NoError(t, shared.JSON().Unmarshal(raw, &body))
	return body
}
