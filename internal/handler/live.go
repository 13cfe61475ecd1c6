package handler

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pkordes/tripplanner/internal/countdown"
	"github.com/pkordes/tripplanner/internal/events"
	"github.com/pkordes/tripplanner/internal/view"
)

const (
	liveWriteWait  = 10 * time.Second
	livePingPeriod = 10 * time.Second
)

// Live frame types.
const (
	FrameCountdown = "countdown"
	FrameTripEvent = "trip_event"
)

// LiveFrame is one JSON message on /ws/live. A countdown frame without a trip
// means there is no upcoming trip.
type LiveFrame struct {
	Type  string        `json:"type"`
	Trip  *Trip         `json:"trip,omitempty"`
	Label string        `json:"label,omitempty"`
	Event *events.Event `json:"event,omitempty"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	u := &websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024}
	if len(s.d.AllowedOrigins) > 0 {
		u.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(s.d.AllowedOrigins, origin)
		}
	}
	return u
}

// Live handles GET /ws/live. It pushes the countdown to the nearest upcoming
// trip once on connect, on every countdown interval, and after every trip
// change, which is itself forwarded as a trip_event frame. Everything the
// connection started stops when the client goes away.
func (s *Server) Live(w http.ResponseWriter, r *http.Request) {
	if s.d.Live == nil {
		unavailable(w, "live view")
		return
	}
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		return
	}
	defer conn.Close()

	sub := s.d.Live.Subscribe()
	defer sub.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client sends nothing we need, but reading is what notices a close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var mu sync.Mutex
	write := func(f LiveFrame) error {
		mu.Lock()
		defer mu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		return conn.WriteJSON(f)
	}

	refresh := make(chan struct{}, 1)
	go func() {
		defer cancel()
		ping := time.NewTicker(livePingPeriod)
		defer ping.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ping.C:
				mu.Lock()
				err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait))
				mu.Unlock()
				if err != nil {
					return
				}
			case e, ok := <-sub.C():
				if !ok {
					return
				}
				if err := write(LiveFrame{Type: FrameTripEvent, Event: &e}); err != nil {
					return
				}
				select {
				case refresh <- struct{}{}:
				default:
				}
			}
		}
	}()

	err = countdown.Watch(ctx, s.d.Clock, s.d.CountdownInterval, s.countdownFrame, write, refresh)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.DebugContext(r.Context(), "live view closed", "error", err)
	}
}

func (s *Server) countdownFrame(now time.Time) LiveFrame {
	t, ok := view.NearestUpcomingTrip(s.d.Trips.List(), now)
	if !ok {
		return LiveFrame{Type: FrameCountdown}
	}
	resp := tripToResponse(t)
	return LiveFrame{Type: FrameCountdown, Trip: &resp, Label: view.CountdownLabel(t.StartDate, now)}
}
