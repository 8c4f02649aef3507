package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hostwise-ai/hostwise/internal/nlp"
	"github.com/hostwise-ai/hostwise/internal/observability/metrics"
	"github.com/hostwise-ai/hostwise/pkg/logging"
)

// Confirmation is the outcome of a manager operation. Message is the
// human-readable text handed back to the assistant.
type Confirmation struct {
	Reservation *Reservation
	Message     string
	// Booked is false when create was rejected by the availability check.
	Booked bool
}

// Manager validates and executes reservation operations.
type Manager struct {
	repo    Repository
	checker *Checker
	logger  *logging.Logger
	metrics *metrics.ChatMetrics
	now     func() time.Time
}

// NewManager creates a reservation manager. metrics may be nil.
func NewManager(repo Repository, checker *Checker, logger *logging.Logger, m *metrics.ChatMetrics) *Manager {
	return &Manager{
		repo:    repo,
		checker: checker,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Create validates a booking request, checks capacity, and inserts the
// reservation. When the slot is unavailable it returns the checker's
// rejection message with Booked=false and no error.
func (m *Manager) Create(ctx context.Context, name, dateRaw, timeRaw string, partySize int, phone string) (*Confirmation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		m.metrics.ObserveBookingOutcome("create", "invalid")
		return nil, ErrEmptyName
	}
	if partySize < MinPartySize || partySize > MaxPartySize {
		m.metrics.ObserveBookingOutcome("create", "invalid")
		return nil, ErrInvalidPartySize
	}

	date, err := nlp.NormalizeDate(dateRaw, m.now())
	if err != nil {
		m.metrics.ObserveBookingOutcome("create", "invalid")
		return nil, err
	}
	if date < m.today() {
		m.metrics.ObserveBookingOutcome("create", "invalid")
		return nil, ErrPastDate
	}

	timeSlot, err := nlp.ParseTime(timeRaw)
	if err != nil {
		m.metrics.ObserveBookingOutcome("create", "invalid")
		return nil, err
	}

	availability := m.checker.Check(ctx, date, timeSlot, partySize)
	if !availability.Available {
		m.metrics.ObserveBookingOutcome("create", "unavailable")
		return &Confirmation{Message: availability.Message, Booked: false}, nil
	}

	res, err := m.repo.Insert(ctx, &Reservation{
		Name:   name,
		Date:   date,
		Time:   timeSlot,
		Guests: partySize,
		Phone:  strings.TrimSpace(phone),
	})
	if err != nil {
		m.metrics.ObserveBookingOutcome("create", "error")
		return nil, fmt.Errorf("reservations: create: %w", err)
	}
	m.metrics.ObserveBookingOutcome("create", "confirmed")
	m.logger.Info("reservation created",
		"id", res.ID, "date", res.Date, "time", res.Time, "guests", res.Guests)

	var b strings.Builder
	b.WriteString("✅ Table successfully booked!\n")
	b.WriteString("Reservation Details:\n")
	fmt.Fprintf(&b, "• Name: %s\n", res.Name)
	fmt.Fprintf(&b, "• Date: %s\n", displayDate(res.Date))
	fmt.Fprintf(&b, "• Time: %s\n", res.Time)
	fmt.Fprintf(&b, "• Party Size: %d people\n", res.Guests)
	if res.Phone != "" {
		fmt.Fprintf(&b, "• Phone: %s\n", res.Phone)
	}
	fmt.Fprintf(&b, "• Reservation ID: %d\n", res.ID)
	b.WriteString("• Status: Confirmed\n\n")
	b.WriteString("Please arrive 15 minutes before your reservation time. " +
		"If you need to cancel or modify your reservation, please contact us with your reservation ID.")

	return &Confirmation{Reservation: res, Message: b.String(), Booked: true}, nil
}

// Update applies a partial modification. Only supplied fields are validated
// and changed; the confirmation lists an old → new line per change.
func (m *Manager) Update(ctx context.Context, id int64, name, dateRaw, timeRaw *string, partySize *int) (*Confirmation, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	current, err := m.repo.GetByID(ctx, id)
	if err != nil {
		m.metrics.ObserveBookingOutcome("update", outcomeFromErr(err))
		return nil, err
	}

	var patch Patch
	var changes []string

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, ErrEmptyName
		}
		patch.Name = &trimmed
		changes = append(changes, fmt.Sprintf("Name: %s → %s", current.Name, trimmed))
	}
	if dateRaw != nil {
		date, err := nlp.NormalizeDate(*dateRaw, m.now())
		if err != nil {
			return nil, err
		}
		if date < m.today() {
			return nil, ErrPastDate
		}
		patch.Date = &date
		changes = append(changes, fmt.Sprintf("Date: %s → %s", displayDate(current.Date), displayDate(date)))
	}
	if timeRaw != nil {
		timeSlot, err := nlp.ParseTime(*timeRaw)
		if err != nil {
			return nil, err
		}
		patch.Time = &timeSlot
		changes = append(changes, fmt.Sprintf("Time: %s → %s", current.Time, timeSlot))
	}
	if partySize != nil {
		if *partySize < MinPartySize || *partySize > MaxPartySize {
			return nil, ErrInvalidPartySize
		}
		patch.PartySize = partySize
		changes = append(changes, fmt.Sprintf("Party Size: %d → %d people", current.Guests, *partySize))
	}

	if patch.Empty() {
		return nil, ErrNoChanges
	}

	updated, err := m.repo.Update(ctx, id, patch)
	if err != nil {
		m.metrics.ObserveBookingOutcome("update", outcomeFromErr(err))
		return nil, fmt.Errorf("reservations: update: %w", err)
	}
	m.metrics.ObserveBookingOutcome("update", "confirmed")
	m.logger.Info("reservation updated", "id", id, "changes", len(changes))

	var b strings.Builder
	b.WriteString("✅ Reservation successfully modified!\n\n")
	b.WriteString("Updated Reservation Details:\n")
	fmt.Fprintf(&b, "• Reservation ID: %d\n", updated.ID)
	fmt.Fprintf(&b, "• Name: %s\n", updated.Name)
	fmt.Fprintf(&b, "• Date: %s\n", updated.Date)
	fmt.Fprintf(&b, "• Time: %s\n", updated.Time)
	fmt.Fprintf(&b, "• Party Size: %d people\n\n", updated.Guests)
	b.WriteString("Changes Made:\n")
	for _, change := range changes {
		fmt.Fprintf(&b, "• %s\n", change)
	}
	b.WriteString("\nPlease arrive 15 minutes before your reservation time. " +
		"If you need to make further changes, please contact us with your reservation ID.")

	return &Confirmation{Reservation: updated, Message: b.String(), Booked: true}, nil
}

// Cancel hard-deletes the reservation and echoes its fields. reason is kept
// in the logs only; there is no retained audit row.
func (m *Manager) Cancel(ctx context.Context, id int64, reason string) (*Confirmation, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	deleted, err := m.repo.Delete(ctx, id)
	if err != nil {
		m.metrics.ObserveBookingOutcome("cancel", outcomeFromErr(err))
		return nil, err
	}
	m.metrics.ObserveBookingOutcome("cancel", "confirmed")
	m.logger.Info("reservation cancelled", "id", id, "reason", reason)

	var b strings.Builder
	b.WriteString("✅ Reservation successfully cancelled!\n\n")
	b.WriteString("Cancelled Reservation Details:\n")
	fmt.Fprintf(&b, "• Reservation ID: %d\n", deleted.ID)
	fmt.Fprintf(&b, "• Name: %s\n", deleted.Name)
	fmt.Fprintf(&b, "• Date: %s\n", deleted.Date)
	fmt.Fprintf(&b, "• Time: %s\n", deleted.Time)
	fmt.Fprintf(&b, "• Party Size: %d people\n", deleted.Guests)
	b.WriteString("• Status: Cancelled and Removed\n")
	fmt.Fprintf(&b, "• Cancelled at: %s\n\n", m.now().Format("2006-01-02 15:04:05"))
	b.WriteString("Your reservation has been cancelled and removed from our system. " +
		"The table is now available for other guests. " +
		"We're sorry to see you go! If you'd like to make a new reservation in the future, " +
		"please don't hesitate to contact us.")

	return &Confirmation{Reservation: deleted, Message: b.String()}, nil
}

// View renders one reservation.
func (m *Manager) View(ctx context.Context, id int64) (*Confirmation, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	res, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("📋 Reservation Details\n\n")
	fmt.Fprintf(&b, "• Reservation ID: %d\n", res.ID)
	fmt.Fprintf(&b, "• Name: %s\n", res.Name)
	fmt.Fprintf(&b, "• Date: %s\n", res.Date)
	fmt.Fprintf(&b, "• Time: %s\n", res.Time)
	fmt.Fprintf(&b, "• Party Size: %d people\n", res.Guests)
	b.WriteString("• Status: ✅ Confirmed\n")
	fmt.Fprintf(&b, "• Created: %s\n\n", res.CreatedAt.Format(time.RFC3339))
	b.WriteString("💡 You can modify or cancel this reservation if needed.")

	return &Confirmation{Reservation: res, Message: b.String()}, nil
}

func (m *Manager) today() string {
	return m.now().Format("2006-01-02")
}

// displayDate renders an ISO date as "Monday, January 02, 2006". Falls back
// to the raw value if it does not parse.
func displayDate(iso string) string {
	d, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return d.Format("Monday, January 02, 2006")
}

func outcomeFromErr(err error) string {
	if errors.Is(err, ErrNotFound) {
		return "not_found"
	}
	return "error"
}
