package domain

import (
	"strings"

	"github.com/google/uuid"
)

// PackingItem is one entry in a trip's packing list.
// Items are owned by exactly one trip; the relation exists only through the
// storage key namespace ("packing-list-{tripId}").
type PackingItem struct {
	ID       uuid.UUID
	TripID   uuid.UUID
	Name     string
	Category PackingCategory
	Packed   bool
}

// PackingCategory groups packing items for display.
type PackingCategory string

const (
	PackingClothing    PackingCategory = "clothing"
	PackingElectronics PackingCategory = "electronics"
	PackingToiletries  PackingCategory = "toiletries"
	PackingDocuments   PackingCategory = "documents"
	PackingOther       PackingCategory = "other"
)

// PackingCategories lists the categories in display order.
var PackingCategories = []PackingCategory{
	PackingClothing,
	PackingElectronics,
	PackingToiletries,
	PackingDocuments,
	PackingOther,
}

// ParsePackingCategory defaults blank input to clothing and maps unknown
// categories to other.
func ParsePackingCategory(s string) PackingCategory {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PackingClothing
	}
	for _, c := range PackingCategories {
		if string(c) == s {
			return c
		}
	}
	return PackingOther
}
