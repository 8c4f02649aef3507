package reservations

import (
	"fmt"
	"time"
)

// Party size bounds for a single reservation.
const (
	MinPartySize = 1
	MaxPartySize = 20
)

// Reservation represents a booked table.
type Reservation struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Guests    int       `json:"guests"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary renders the reservation as the single line used in CRM notes.
func (r *Reservation) Summary() string {
	s := fmt.Sprintf("#%d: %s, %s at %s, %d guests", r.ID, r.Name, r.Date, r.Time, r.Guests)
	if r.Phone != "" {
		s += ", phone " + r.Phone
	}
	return s
}

// Patch carries the optional fields of an update. Nil means "leave as is".
type Patch struct {
	Name      *string
	Date      *string
	Time      *string
	PartySize *int
	Phone     *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Date == nil && p.Time == nil && p.PartySize == nil && p.Phone == nil
}
