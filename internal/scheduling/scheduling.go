// Package scheduling defines the shared shapes for the two availability
// backends (routing engine and public booking) so the matcher can treat
// them uniformly.
package scheduling

import "context"

// Slot is a normalized, display-ready appointment-time suggestion.
type Slot struct {
	ISO     string `json:"iso"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Display string `json:"display"`
}

// RawSlot is a single suggestion as returned by either backend. The routing
// engine uses SuggestedStartISO; the public backend uses ISO, sometimes with
// only Date/Time populated.
type RawSlot struct {
	ISO               string `json:"iso,omitempty"`
	SuggestedStartISO string `json:"suggestedStartIso,omitempty"`
	Date              string `json:"date,omitempty"`
	Time              string `json:"time,omitempty"`
	Display           string `json:"display,omitempty"`
}

// Start returns whichever ISO field the backend populated.
func (s RawSlot) Start() string {
	if s.ISO != "" {
		return s.ISO
	}
	return s.SuggestedStartISO
}

// Response is the union of the two backend response shapes. The public
// backend fills Slots; the routing engine fills Winner and Alternates. A
// mixed response can carry both, in which case Slots wins.
type Response struct {
	Slots      []RawSlot `json:"slots,omitempty"`
	Winner     *RawSlot  `json:"winner,omitempty"`
	Alternates []RawSlot `json:"alternates,omitempty"`
}

// Query carries everything a backend needs to compute availability.
// Coordinates are optional; when absent the backend falls back to the
// free-text address.
type Query struct {
	PracticeID        string
	DoctorID          string
	StartDate         string // YYYY-MM-DD
	NumDays           int
	ServiceMinutes    int
	Address           string
	Lat               *float64
	Lon               *float64
	AllowOtherDoctors bool
}

// SlotSource is implemented by both availability backends.
type SlotSource interface {
	// Name returns the backend identifier (e.g. "routing", "publicbook").
	Name() string

	// FindSlots queries the backend for appointment suggestions.
	FindSlots(ctx context.Context, q Query) (*Response, error)
}
