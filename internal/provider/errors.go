// Package provider talks to the third-party services the trip planner relies
// on: OpenWeather for forecasts, Foursquare for places search and Google Maps
// for geocoding and directions. Every failure is reported as *Error, which
// matches domain.ErrProvider and carries remediation hints for the user.
package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkordes/tripplanner/internal/domain"
)

// Error describes a failed provider call.
type Error struct {
	Provider string // "openweather", "foursquare", "google-maps"
	Op       string // e.g. "geocode", "forecast"
	Status   int    // HTTP status, 0 when no response was received
	Message  string // provider-supplied message, if any
	Hints    []string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Provider, e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes domain.ErrProvider and the underlying cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrProvider}
	}
	return []error{domain.ErrProvider, e.Err}
}

// Hints returns the remediation hints attached anywhere in err's chain.
func Hints(err error) []string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Hints
	}
	return nil
}

// withHints appends hints to err when it is an *Error.
func withHints(err error, hints ...string) error {
	var pe *Error
	if errors.As(err, &pe) {
		pe.Hints = append(pe.Hints, hints...)
	}
	return err
}

func statusHints(status int) []string {
	switch {
	case status == 401 || status == 403:
		return []string{"Check that the API key is set and valid."}
	case status == 429:
		return []string{"The service is rate limiting requests. Try again in a minute."}
	case status >= 500 || status == 0:
		return []string{"The service may be temporarily unavailable. Try again later."}
	}
	return nil
}
