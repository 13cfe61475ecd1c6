package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/service"
)

// PackingItemRequest is the body of POST /trips/{id}/packing.
type PackingItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// PackingItem is the API representation of domain.PackingItem.
type PackingItem struct {
	ID       uuid.UUID `json:"id"`
	TripID   uuid.UUID `json:"tripId"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Packed   bool      `json:"packed"`
}

// PackingGroup is one category section of the packing list.
type PackingGroup struct {
	Category string        `json:"category"`
	Label    string        `json:"label"`
	Items    []PackingItem `json:"items"`
}

// PackingList is the body of GET /trips/{id}/packing.
type PackingList struct {
	Items    []PackingItem `json:"items"`
	Progress struct {
		Packed int `json:"packed"`
		Total  int `json:"total"`
	} `json:"progress"`
	Groups []PackingGroup `json:"groups"`
}

// GetPackingList handles GET /trips/{id}/packing.
func (s *Server) GetPackingList(w http.ResponseWriter, r *http.Request) {
	if s.d.Packing == nil {
		unavailable(w, "packing list")
		return
	}
	t, ok := s.trip(w, r)
	if !ok {
		return
	}
	items, err := s.d.Packing.Load(r.Context(), t.ID)
	if err != nil {
		s.fail(w, r, err, "trip not found")
		return
	}

	var out PackingList
	out.Items = packingItemsToResponse(items)
	p := service.Progress(items)
	out.Progress.Packed, out.Progress.Total = p.Packed, p.Total
	out.Groups = []PackingGroup{}
	for _, g := range service.GroupByCategory(items) {
		out.Groups = append(out.Groups, PackingGroup{
			Category: string(g.Category),
			Label:    g.Label,
			Items:    packingItemsToResponse(g.Items),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// CreatePackingItem handles POST /trips/{id}/packing.
func (s *Server) CreatePackingItem(w http.ResponseWriter, r *http.Request) {
	if s.d.Packing == nil {
		unavailable(w, "packing list")
		return
	}
	tripID, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var body PackingItemRequest
	if !decodeBody(w, r, &body) {
		return
	}

	item, err := s.d.Packing.Add(r.Context(), tripID, domain.PackingItem{
		Name:     body.Name,
		Category: domain.PackingCategory(body.Category),
	})
	if err != nil {
		s.fail(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, packingItemToResponse(item))
}

// TogglePackingItem handles POST /trips/{id}/packing/{itemId}/toggle.
func (s *Server) TogglePackingItem(w http.ResponseWriter, r *http.Request) {
	if s.d.Packing == nil {
		unavailable(w, "packing list")
		return
	}
	t, ok := s.trip(w, r)
	if !ok {
		return
	}
	itemID, err := pathID(r, "itemId")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	item, err := s.d.Packing.TogglePacked(r.Context(), t.ID, itemID)
	if err != nil {
		s.fail(w, r, err, "packing item not found")
		return
	}
	writeJSON(w, http.StatusOK, packingItemToResponse(item))
}

// DeletePackingItem handles DELETE /trips/{id}/packing/{itemId}.
func (s *Server) DeletePackingItem(w http.ResponseWriter, r *http.Request) {
	if s.d.Packing == nil {
		unavailable(w, "packing list")
		return
	}
	tripID, itemID, ok := tripAndChild(w, r, "itemId")
	if !ok {
		return
	}
	if err := s.d.Packing.Delete(r.Context(), tripID, itemID); err != nil {
		s.fail(w, r, err, "packing item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// tripAndChild parses the {id} parameter and the child id parameter name.
func tripAndChild(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, uuid.UUID, bool) {
	tripID, err := pathID(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return uuid.Nil, uuid.Nil, false
	}
	childID, err := pathID(r, name)
	if err != nil {
		requestError(w, err.Error())
		return uuid.Nil, uuid.Nil, false
	}
	return tripID, childID, true
}

func packingItemToResponse(it domain.PackingItem) PackingItem {
	return PackingItem{
		ID:       it.ID,
		TripID:   it.TripID,
		Name:     it.Name,
		Category: string(it.Category),
		Packed:   it.Packed,
	}
}

func packingItemsToResponse(items []domain.PackingItem) []PackingItem {
	out := make([]PackingItem, 0, len(items))
	for _, it := range items {
		out = append(out, packingItemToResponse(it))
	}
	return out
}
