package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkordes/tripplanner/internal/domain"
)

const (
	foursquareBase = "https://api.foursquare.com"
	placesLimit    = 10
	photoSize      = "300x300"
)

// LatLng is a point used for search bias, geocoding results and routing.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p LatLng) String() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

// Place is one places-search result.
type Place struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Categories     []string `json:"categories"`
	Address        string   `json:"address,omitempty"`
	DistanceMeters int      `json:"distanceMeters,omitempty"`
	PhotoURL       string   `json:"photoUrl,omitempty"`
}

// Places is a Foursquare Places v3 client.
type Places struct {
	c caller
}

// NewPlaces returns a Foursquare client.
func NewPlaces(o Options) *Places {
	return &Places{c: newCaller("foursquare", foursquareBase, o)}
}

// Search returns up to ten places matching query, ranked by the provider.
// A nil bias searches without a location hint.
func (p *Places) Search(ctx context.Context, query string, bias *LatLng) ([]Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", domain.ErrValidation)
	}
	if err := p.c.requireKey("search", "FOURSQUARE_API_KEY"); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("limit", strconv.Itoa(placesLimit))
	if bias != nil {
		q.Set("ll", bias.String())
	}
	header := http.Header{}
	header.Set("Authorization", p.c.key)

	var body struct {
		Results []struct {
			FsqID      string `json:"fsq_id"`
			Name       string `json:"name"`
			Categories []struct {
				Name string `json:"name"`
			} `json:"categories"`
			Location struct {
				Address          string `json:"address"`
				FormattedAddress string `json:"formatted_address"`
			} `json:"location"`
			Distance int `json:"distance"`
			Photos   []struct {
				Prefix string `json:"prefix"`
				Suffix string `json:"suffix"`
			} `json:"photos"`
		} `json:"results"`
	}
	if err := p.c.getJSON(ctx, "search", "/v3/places/search", q, header, &body); err != nil {
		return nil, withHints(err, "Failed to fetch places. Please try again later.")
	}
	if len(body.Results) == 0 {
		e := p.c.fail("search", 0, fmt.Sprintf("no places match %q", query), nil)
		e.Hints = []string{"Try a broader search term."}
		if bias == nil {
			e.Hints = append(e.Hints, "Share your location to search nearby.")
		}
		return nil, e
	}

	places := make([]Place, 0, len(body.Results))
	for _, r := range body.Results {
		pl := Place{
			ID:             r.FsqID,
			Name:           r.Name,
			Categories:     make([]string, 0, len(r.Categories)),
			Address:        r.Location.Address,
			DistanceMeters: r.Distance,
		}
		if pl.Address == "" {
			pl.Address = r.Location.FormattedAddress
		}
		for _, c := range r.Categories {
			pl.Categories = append(pl.Categories, c.Name)
		}
		if len(r.Photos) > 0 {
			pl.PhotoURL = r.Photos[0].Prefix + photoSize + r.Photos[0].Suffix
		}
		places = append(places, pl)
	}
	return places, nil
}
