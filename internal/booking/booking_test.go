package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClient struct {
	calls int
	slots []Slot
	err   error
}

func (c *countingClient) Slots(context.Context, string, time.Time) ([]Slot, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.slots, nil
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestCachedClient_ServesFromCache(t *testing.T) {
	inner := &countingClient{slots: []Slot{{Seats: 4, Available: true}}}
	c := NewCachedClient(inner, 16, time.Minute)

	ctx := context.Background()
	date := day(t, "2026-09-01")

	first, err := c.Slots(ctx, "arbat", date)
	require.NoError(t, err)
	second, err := c.Slots(ctx, "arbat", date)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedClient_KeyedByRestaurantAndDate(t *testing.T) {
	inner := &countingClient{slots: []Slot{}}
	c := NewCachedClient(inner, 16, time.Minute)
	ctx := context.Background()

	_, err := c.Slots(ctx, "arbat", day(t, "2026-09-01"))
	require.NoError(t, err)
	_, err = c.Slots(ctx, "arbat", day(t, "2026-09-02"))
	require.NoError(t, err)
	_, err = c.Slots(ctx, "tverskaya", day(t, "2026-09-01"))
	require.NoError(t, err)

	assert.Equal(t, 3, inner.calls)
}

func TestCachedClient_ErrorsNotCached(t *testing.T) {
	inner := &countingClient{err: errors.New("remarked down")}
	c := NewCachedClient(inner, 16, time.Minute)
	ctx := context.Background()
	date := day(t, "2026-09-01")

	_, err := c.Slots(ctx, "arbat", date)
	require.Error(t, err)

	inner.err = nil
	inner.slots = []Slot{{Available: true}}

	slots, err := c.Slots(ctx, "arbat", date)
	require.NoError(t, err)
	assert.Len(t, slots, 1)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedClient_TTLExpiry(t *testing.T) {
	inner := &countingClient{slots: []Slot{}}
	c := NewCachedClient(inner, 16, 30*time.Millisecond)
	ctx := context.Background()
	date := day(t, "2026-09-01")

	_, err := c.Slots(ctx, "arbat", date)
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	_, err = c.Slots(ctx, "arbat", date)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestRemarkedClient_Slots(t *testing.T) {
	start := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/slots", r.URL.Path)
		require.Equal(t, "arbat", r.URL.Query().Get("restaurant"))
		require.Equal(t, "2026-09-01", r.URL.Query().Get("date"))
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"slots": []Slot{
				{StartTime: start, EndTime: start.Add(time.Hour), Seats: 4, Available: true},
			},
		})
	}))
	defer srv.Close()

	c := NewRemarkedClient(srv.URL, "secret")
	slots, err := c.Slots(context.Background(), "arbat", day(t, "2026-09-01"))

	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.True(t, slots[0].Available)
	assert.Equal(t, 4, slots[0].Seats)
}

func TestRemarkedClient_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewRemarkedClient(srv.URL, "secret")
	_, err := c.Slots(context.Background(), "arbat", day(t, "2026-09-01"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http=429")
}
