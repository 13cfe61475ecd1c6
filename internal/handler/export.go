package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/pkordes/tripplanner/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "trip_title", "destination", "trip_start_date", "trip_end_date",
	"accommodation", "item_name", "item_category", "item_packed",
}

// ExportRow is one row of the JSON export.
type ExportRow struct {
	TripID        string `json:"tripId"`
	TripTitle     string `json:"tripTitle"`
	Destination   string `json:"destination"`
	TripStartDate string `json:"tripStartDate"`
	TripEndDate   string `json:"tripEndDate"`
	Accommodation string `json:"accommodation,omitempty"`
	ItemName      string `json:"itemName,omitempty"`
	ItemCategory  string `json:"itemCategory,omitempty"`
	ItemPacked    bool   `json:"itemPacked"`
}

// GetExport handles GET /export.
// It returns one row per packing item with its trip's fields repeated.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	if s.d.Export == nil {
		unavailable(w, "export")
		return
	}
	rows, err := s.d.Export.Export(r.Context())
	if err != nil {
		s.fail(w, r, err, "nothing to export")
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, rows)
		return
	}
	out := make([]ExportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, ExportRow(row))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV buffers the whole table so that Content-Length is exact.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func domainRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.TripID,
		r.TripTitle,
		r.Destination,
		r.TripStartDate,
		r.TripEndDate,
		r.Accommodation,
		r.ItemName,
		r.ItemCategory,
		strconv.FormatBool(r.ItemPacked),
	}
}
