package provider_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripplanner/internal/provider"
)

// fetcherFunc adapts a function to provider.ForecastFetcher.
type fetcherFunc func(ctx context.Context, destination string) ([]provider.DailyForecast, error)

func (f fetcherFunc) DailyForecasts(ctx context.Context, destination string) ([]provider.DailyForecast, error) {
	return f(ctx, destination)
}

func day(temp int) []provider.DailyForecast {
	return []provider.DailyForecast{{Date: "2024-07-01", Temp: temp}}
}

func TestLatest(t *testing.T) {
	l := provider.NewLatest()
	first := l.Issue("goa")
	other := l.Issue("paris")
	assert.True(t, l.IsLatest(first))

	second := l.Issue("goa")
	assert.False(t, l.IsLatest(first))
	assert.True(t, l.IsLatest(second))
	assert.True(t, l.IsLatest(other), "keys are independent")

	ran := false
	assert.False(t, l.Commit(first, func() { ran = true }))
	assert.False(t, ran)
	assert.True(t, l.Commit(second, func() { ran = true }))
	assert.True(t, ran)
}

func TestWeatherCache_ServesWithinTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	calls := 0
	c := provider.NewWeatherCache(fetcherFunc(func(context.Context, string) ([]provider.DailyForecast, error) {
		calls++
		return day(20 + calls), nil
	}), clock, time.Minute)

	got, err := c.DailyForecasts(context.Background(), "Goa")
	require.NoError(t, err)
	assert.Equal(t, day(21), got)

	clock.Advance(30 * time.Second)
	got, err = c.DailyForecasts(context.Background(), " goa ")
	require.NoError(t, err)
	assert.Equal(t, day(21), got, "destination key is case and space insensitive")
	assert.Equal(t, 1, calls)

	clock.Advance(time.Minute)
	got, err = c.DailyForecasts(context.Background(), "Goa")
	require.NoError(t, err)
	assert.Equal(t, day(22), got)
	assert.Equal(t, 2, calls)
}

func TestWeatherCache_ErrorsAreNotCached(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	c := provider.NewWeatherCache(fetcherFunc(func(context.Context, string) ([]provider.DailyForecast, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return day(25), nil
	}), clockwork.NewFakeClock(), 0)

	_, err := c.DailyForecasts(context.Background(), "Goa")
	assert.ErrorIs(t, err, boom)

	got, err := c.DailyForecasts(context.Background(), "Goa")
	require.NoError(t, err)
	assert.Equal(t, day(25), got)
	assert.Equal(t, 2, calls)
}

func TestWeatherCache_StaleResponseIsNotCached(t *testing.T) {
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	var mu sync.Mutex
	calls := 0

	c := provider.NewWeatherCache(fetcherFunc(func(context.Context, string) ([]provider.DailyForecast, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(slowStarted)
			<-releaseSlow
			return day(1), nil
		}
		return day(2), nil
	}), clockwork.NewFakeClock(), time.Hour)

	slow := make(chan []provider.DailyForecast)
	go func() {
		got, _ := c.DailyForecasts(context.Background(), "Goa")
		slow <- got
	}()
	<-slowStarted

	fresh, err := c.DailyForecasts(context.Background(), "Goa")
	require.NoError(t, err)
	assert.Equal(t, day(2), fresh)

	close(releaseSlow)
	assert.Equal(t, day(1), <-slow, "the superseded caller still gets its own response")

	cached, err := c.DailyForecasts(context.Background(), "Goa")
	require.NoError(t, err)
	assert.Equal(t, day(2), cached, "the late response did not overwrite the newer one")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}

func TestWeatherCache_DropsExpiredEntriesOnWrite(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := provider.NewWeatherCache(fetcherFunc(func(context.Context, string) ([]provider.DailyForecast, error) {
		return day(30), nil
	}), clock, time.Minute)
	ctx := context.Background()

	for _, dest := range []string{"Goa", "Pune", "Leh"} {
		_, err := c.DailyForecasts(ctx, dest)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, c.Len())

	clock.Advance(2 * time.Minute)
	_, err := c.DailyForecasts(ctx, "Kochi")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len(), "only the forecast just stored is still fresh")
}

func TestLatest_SettledKeysAreForgotten(t *testing.T) {
	l := provider.NewLatest()

	ok := l.Commit(l.Issue("goa"), func() {})
	require.True(t, ok)
	l.Release(l.Issue("pune"))
	assert.Zero(t, l.Pending())

	stale := l.Issue("leh")
	fresh := l.Issue("leh")
	require.True(t, l.Commit(fresh, func() {}))
	assert.False(t, l.Commit(stale, func() {}), "a token from before the key was settled never commits")
	assert.Zero(t, l.Pending())
}
