package provider

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultWeatherTTL is how long a cached forecast is served before refetching.
const DefaultWeatherTTL = 10 * time.Minute

// ForecastFetcher fetches daily forecasts for a destination. *Weather satisfies it.
type ForecastFetcher interface {
	DailyForecasts(ctx context.Context, destination string) ([]DailyForecast, error)
}

type cachedForecast struct {
	days      []DailyForecast
	fetchedAt time.Time
}

// WeatherCache memoises forecasts per destination. Concurrent fetches for the
// same destination may overlap; only the most recently started one is stored.
// Expired entries are dropped whenever a new forecast is stored.
type WeatherCache struct {
	fetch  ForecastFetcher
	clock  clockwork.Clock
	ttl    time.Duration
	latest *Latest

	mu      sync.RWMutex
	entries map[string]cachedForecast
}

// NewWeatherCache wraps fetch. A zero ttl selects DefaultWeatherTTL and a nil
// clock the real clock.
func NewWeatherCache(fetch ForecastFetcher, clock clockwork.Clock, ttl time.Duration) *WeatherCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultWeatherTTL
	}
	return &WeatherCache{
		fetch:   fetch,
		clock:   clock,
		ttl:     ttl,
		latest:  NewLatest(),
		entries: make(map[string]cachedForecast),
	}
}

// DailyForecasts returns a fresh cached forecast or fetches a new one.
// The fetched result is always returned to its caller, even when a newer
// request has superseded it and it is not cached.
func (c *WeatherCache) DailyForecasts(ctx context.Context, destination string) ([]DailyForecast, error) {
	key := strings.ToLower(strings.TrimSpace(destination))

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.clock.Since(e.fetchedAt) < c.ttl {
		return e.days, nil
	}

	token := c.latest.Issue(key)
	days, err := c.fetch.DailyForecasts(ctx, destination)
	if err != nil {
		c.latest.Release(token)
		return nil, err
	}
	c.latest.Commit(token, func() {
		now := c.clock.Now()
		c.mu.Lock()
		defer c.mu.Unlock()
		for k, e := range c.entries {
			if now.Sub(e.fetchedAt) >= c.ttl {
				delete(c.entries, k)
			}
		}
		c.entries[key] = cachedForecast{days: days, fetchedAt: now}
	})
	return days, nil
}

// Len reports how many destinations are cached, expired or not.
func (c *WeatherCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
