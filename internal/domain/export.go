package domain

// ExportRow is a single row in the full-data export.
// It is a flat, denormalized view: one row per packing item, with trip fields
// repeated for every item on that trip. Trips with no items yield one row with
// zero values for all item fields.
type ExportRow struct {
	// Trip fields, repeated for every item on the trip.
	TripID        string
	TripTitle     string
	Destination   string
	TripStartDate string // "2006-01-02" formatted date
	TripEndDate   string // "2006-01-02" formatted date
	Accommodation string

	// Item fields, zero values when the trip has no packing items.
	ItemName     string
	ItemCategory string
	ItemPacked   bool
}
