package reservations

import "errors"

var (
	// ErrEmptyName is returned when a booking has no guest name
	ErrEmptyName = errors.New("name is required")

	// ErrInvalidPartySize is returned when the party size is outside [1,20]
	ErrInvalidPartySize = errors.New("party size must be between 1 and 20")

	// ErrPastDate is returned when the requested date is before today
	ErrPastDate = errors.New("date is in the past")

	// ErrInvalidID is returned when the reservation id is missing or not positive
	ErrInvalidID = errors.New("valid reservation id is required")

	// ErrNotFound is returned when no reservation has the given id
	ErrNotFound = errors.New("reservation not found")

	// ErrNoChanges is returned when an update supplies no fields
	ErrNoChanges = errors.New("no changes provided")

	// ErrStoreUnavailable is returned when the backing store cannot be reached
	ErrStoreUnavailable = errors.New("reservation store unavailable")
)
