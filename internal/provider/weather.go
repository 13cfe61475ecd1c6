package provider

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"
)

const (
	openWeatherBase = "https://api.openweathermap.org"

	// The forecast API returns 3-hour steps; every 8th entry is one per day.
	forecastStride  = 8
	forecastMaxDays = 5
	weatherIconURL  = "https://openweathermap.org/img/wn/%s@2x.png"
)

// Coordinates is a point on the globe.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ForecastEntry is one 3-hour step of the OpenWeather forecast.
type ForecastEntry struct {
	Time        time.Time
	Temp        float64
	TempMin     float64
	TempMax     float64
	Humidity    int
	WindSpeed   float64 // metres per second
	Description string
	Icon        string
}

// DailyForecast is the per-day summary shown to the user.
type DailyForecast struct {
	Date        string `json:"date"`
	Weekday     string `json:"weekday"`
	Temp        int    `json:"temp"`
	TempMin     int    `json:"tempMin"`
	TempMax     int    `json:"tempMax"`
	Humidity    int    `json:"humidity"`
	WindKPH     int    `json:"windKph"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
}

// Weather is an OpenWeather client.
type Weather struct {
	c caller
}

// NewWeather returns an OpenWeather client.
func NewWeather(o Options) *Weather {
	return &Weather{c: newCaller("openweather", openWeatherBase, o)}
}

// Geocode resolves a free-text destination to coordinates.
func (w *Weather) Geocode(ctx context.Context, destination string) (Coordinates, error) {
	if err := w.c.requireKey("geocode", "OPENWEATHER_API_KEY"); err != nil {
		return Coordinates{}, err
	}
	q := url.Values{}
	q.Set("q", destination)
	q.Set("limit", "1")
	q.Set("appid", w.c.key)

	var out []Coordinates
	if err := w.c.getJSON(ctx, "geocode", "/geo/1.0/direct", q, nil, &out); err != nil {
		return Coordinates{}, err
	}
	if len(out) == 0 {
		e := w.c.fail("geocode", 0, fmt.Sprintf("location %q not found", destination), nil)
		e.Hints = []string{`Try a more specific location (e.g., "London, UK").`}
		return Coordinates{}, e
	}
	return out[0], nil
}

// Forecast fetches the 3-hour forecast for coordinates, in metric units.
func (w *Weather) Forecast(ctx context.Context, at Coordinates) ([]ForecastEntry, error) {
	if err := w.c.requireKey("forecast", "OPENWEATHER_API_KEY"); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(at.Lon, 'f', -1, 64))
	q.Set("appid", w.c.key)
	q.Set("units", "metric")

	var body struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp     float64 `json:"temp"`
				TempMin  float64 `json:"temp_min"`
				TempMax  float64 `json:"temp_max"`
				Humidity int     `json:"humidity"`
			} `json:"main"`
			Weather []struct {
				Description string `json:"description"`
				Icon        string `json:"icon"`
			} `json:"weather"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
		} `json:"list"`
	}
	if err := w.c.getJSON(ctx, "forecast", "/data/2.5/forecast", q, nil, &body); err != nil {
		return nil, err
	}
	if len(body.List) == 0 {
		return nil, w.c.fail("forecast", 0, "forecast is empty", nil)
	}

	entries := make([]ForecastEntry, 0, len(body.List))
	for _, l := range body.List {
		e := ForecastEntry{
			Time:      time.Unix(l.Dt, 0).UTC(),
			Temp:      l.Main.Temp,
			TempMin:   l.Main.TempMin,
			TempMax:   l.Main.TempMax,
			Humidity:  l.Main.Humidity,
			WindSpeed: l.Wind.Speed,
		}
		if len(l.Weather) > 0 {
			e.Description = l.Weather[0].Description
			e.Icon = l.Weather[0].Icon
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// DailyForecasts geocodes destination and returns up to five daily samples.
func (w *Weather) DailyForecasts(ctx context.Context, destination string) ([]DailyForecast, error) {
	at, err := w.Geocode(ctx, destination)
	if err != nil {
		return nil, err
	}
	entries, err := w.Forecast(ctx, at)
	if err != nil {
		return nil, err
	}
	return SampleDaily(entries), nil
}

// SampleDaily keeps one entry per 24 hours (every 8th 3-hour step), for at
// most five days, and rounds the values for display.
func SampleDaily(entries []ForecastEntry) []DailyForecast {
	out := []DailyForecast{}
	for i := 0; i < len(entries) && len(out) < forecastMaxDays; i += forecastStride {
		e := entries[i]
		d := DailyForecast{
			Date:        e.Time.Format(time.DateOnly),
			Weekday:     e.Time.Format("Mon"),
			Temp:        round(e.Temp),
			TempMin:     round(e.TempMin),
			TempMax:     round(e.TempMax),
			Humidity:    e.Humidity,
			WindKPH:     round(e.WindSpeed * 3.6),
			Description: e.Description,
		}
		if e.Icon != "" {
			d.IconURL = fmt.Sprintf(weatherIconURL, e.Icon)
		}
		out = append(out, d)
	}
	return out
}

func round(v float64) int { return int(math.Round(v)) }
