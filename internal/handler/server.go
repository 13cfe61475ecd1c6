// Package handler implements the HTTP API of the trip planner on a chi router.
// All handlers are methods on Server. They are split into domain-specific
// files (trip.go, packing.go, ...) but share the same Server struct so they
// can reach its dependencies.
package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/events"
	"github.com/pkordes/tripplanner/internal/provider"
	"github.com/pkordes/tripplanner/internal/view"
)

// TripStore is the trip collection the handlers read and mutate.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching storage. *service.TripStore satisfies it.
type TripStore interface {
	List() []domain.Trip
	FindByID(id uuid.UUID) (domain.Trip, error)
	Add(ctx context.Context, draft domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Now() time.Time
}

// PackingStore is satisfied by *service.PackingService.
type PackingStore interface {
	Load(ctx context.Context, tripID uuid.UUID) ([]domain.PackingItem, error)
	Add(ctx context.Context, tripID uuid.UUID, draft domain.PackingItem) (domain.PackingItem, error)
	TogglePacked(ctx context.Context, tripID, itemID uuid.UUID) (domain.PackingItem, error)
	Delete(ctx context.Context, tripID, itemID uuid.UUID) error
}

// TimelineStore is satisfied by *service.TimelineService.
type TimelineStore interface {
	Load(ctx context.Context, tripID uuid.UUID) ([]domain.TimelineEvent, error)
	Add(ctx context.Context, tripID uuid.UUID, draft domain.TimelineEvent) (domain.TimelineEvent, error)
	Delete(ctx context.Context, tripID, eventID uuid.UUID) error
}

// Exporter is satisfied by *service.ExportService.
type Exporter interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// WeatherSource is satisfied by *provider.Weather and *provider.WeatherCache.
type WeatherSource interface {
	DailyForecasts(ctx context.Context, destination string) ([]provider.DailyForecast, error)
}

// PlaceSearcher is satisfied by *provider.Places.
type PlaceSearcher interface {
	Search(ctx context.Context, query string, bias *provider.LatLng) ([]provider.Place, error)
}

// Mapper is satisfied by *provider.Maps.
type Mapper interface {
	Geocode(ctx context.Context, address string) (provider.GeocodeResult, error)
	Directions(ctx context.Context, waypoints []provider.LatLng) (provider.Route, error)
}

// CurrencyFormatter formats budget amounts. view.Money satisfies it.
type CurrencyFormatter interface {
	view.MoneyFormatter
	Currency() string
}

// Subscriber hands out change-event subscriptions. *events.Broker satisfies it.
type Subscriber interface {
	Subscribe() *events.Subscription
}

// Deps are the Server's collaborators. Trips is required; a nil optional
// dependency makes its routes answer 503.
type Deps struct {
	Trips    TripStore
	Packing  PackingStore
	Timeline TimelineStore
	Export   Exporter

	Weather WeatherSource
	Places  PlaceSearcher
	Maps    Mapper

	Money CurrencyFormatter

	// Live feeds the WebSocket view. Clock and CountdownInterval drive its
	// countdown; zero values select the real clock and the default interval.
	Live              Subscriber
	Clock             clockwork.Clock
	CountdownInterval time.Duration
	// AllowedOrigins lists the origins allowed to open the WebSocket. Empty
	// allows same-origin requests only.
	AllowedOrigins []string

	Logger *slog.Logger
}

// Server serves every API endpoint.
type Server struct {
	d      Deps
	logger *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	return &Server{d: d, logger: logger}
}

// Routes registers every endpoint on a fresh router. Cross-cutting middleware
// (request IDs, logging, CORS, body limits) is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)
		r.Get("/upcoming", s.GetUpcomingTrip)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Delete("/", s.DeleteTrip)
			r.Get("/countdown", s.GetTripCountdown)
			r.Get("/days", s.GetTripDays)
			r.Get("/weather", s.GetTripWeather)

			r.Get("/timeline", s.GetTimeline)
			r.Post("/timeline", s.CreateTimelineEvent)
			r.Get("/timeline/days/{day}", s.GetTimelineDay)
			r.Delete("/timeline/{eventId}", s.DeleteTimelineEvent)

			r.Get("/packing", s.GetPackingList)
			r.Post("/packing", s.CreatePackingItem)
			r.Post("/packing/{itemId}/toggle", s.TogglePackingItem)
			r.Delete("/packing/{itemId}", s.DeletePackingItem)
		})
	})

	r.Post("/budget", s.PostBudget)
	r.Get("/places", s.SearchPlaces)
	r.Get("/geocode", s.Geocode)
	r.Post("/directions", s.PostDirections)
	r.Get("/export", s.GetExport)
	r.Get("/ws/live", s.Live)

	return r
}
