package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hostwise-ai/hostwise/internal/crm"
	"github.com/hostwise-ai/hostwise/internal/knowledge"
	"github.com/hostwise-ai/hostwise/internal/nlp"
	"github.com/hostwise-ai/hostwise/internal/reservations"
	"github.com/hostwise-ai/hostwise/pkg/logging"
)

// ContactRecorder is the slice of the CRM store the booking tools use.
type ContactRecorder interface {
	Upsert(ctx context.Context, phone, name, interactionSummary string) (*crm.Contact, error)
	AddNote(ctx context.Context, phone, note string) (*crm.Contact, error)
}

// BookingToolset wires the reservation, availability, knowledge, and CRM
// surfaces into the tool registry.
type BookingToolset struct {
	manager  *reservations.Manager
	checker  *reservations.Checker
	faq      *knowledge.FAQSearcher
	menu     *knowledge.MenuSearcher
	contacts ContactRecorder
	logger   *logging.Logger
}

// NewBookingToolset creates the tool set. faq, menu, and contacts may be nil.
func NewBookingToolset(
	manager *reservations.Manager,
	checker *reservations.Checker,
	faq *knowledge.FAQSearcher,
	menu *knowledge.MenuSearcher,
	contacts ContactRecorder,
	logger *logging.Logger,
) *BookingToolset {
	return &BookingToolset{
		manager:  manager,
		checker:  checker,
		faq:      faq,
		menu:     menu,
		contacts: contacts,
		logger:   logger,
	}
}

// RegisterAll adds every tool to the registry.
func (t *BookingToolset) RegisterAll(r *Registry) {
	r.Register(Definition{
		Name: "book_table",
		Description: "Book a table at the restaurant. Accepts natural language dates like " +
			"'tomorrow', 'next Friday', 'August 15', or YYYY-MM-DD. Time must be 24-hour HH:MM.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Name of the guest"},
				"date": {"type": "string", "description": "Reservation date, natural language or YYYY-MM-DD"},
				"time": {"type": "string", "description": "Reservation time in HH:MM (24-hour)"},
				"party_size": {"type": "integer", "description": "Number of people (1-20)"},
				"phone": {"type": "string", "description": "Optional contact phone number"}
			},
			"required": ["name", "date", "time", "party_size"]
		}`),
	}, t.bookTable)

	r.Register(Definition{
		Name: "modify_reservation",
		Description: "Modify an existing reservation. Only the supplied fields are changed. " +
			"Requires the reservation ID.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"reservation_id": {"type": "integer", "description": "ID of the reservation to modify"},
				"name": {"type": "string", "description": "New name"},
				"date": {"type": "string", "description": "New date, natural language or YYYY-MM-DD"},
				"time": {"type": "string", "description": "New time in HH:MM (24-hour)"},
				"party_size": {"type": "integer", "description": "New party size (1-20)"}
			},
			"required": ["reservation_id"]
		}`),
	}, t.modifyReservation)

	r.Register(Definition{
		Name:        "cancel_reservation",
		Description: "Cancel an existing reservation by ID. The reservation is removed permanently.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"reservation_id": {"type": "integer", "description": "ID of the reservation to cancel"},
				"reason": {"type": "string", "description": "Optional cancellation reason"}
			},
			"required": ["reservation_id"]
		}`),
	}, t.cancelReservation)

	r.Register(Definition{
		Name:        "view_reservation",
		Description: "View the details of an existing reservation by ID.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"reservation_id": {"type": "integer", "description": "ID of the reservation to view"}
			},
			"required": ["reservation_id"]
		}`),
	}, t.viewReservation)

	r.Register(Definition{
		Name: "check_table_availability",
		Description: "Check table availability for a date, optionally at a specific time and party size. " +
			"Without a time it returns an hour-by-hour overview of the day.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"date": {"type": "string", "description": "Date to check, natural language or YYYY-MM-DD"},
				"time": {"type": "string", "description": "Optional time in HH:MM (24-hour)"},
				"party_size": {"type": "integer", "description": "Optional number of people"}
			},
			"required": ["date"]
		}`),
	}, t.checkAvailability)

	if t.faq != nil {
		r.Register(Definition{
			Name: "restaurant_faq",
			Description: "Answer questions about the restaurant: hours, policies, location, " +
				"dress code, payment, contact info, and special events.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"question": {"type": "string", "description": "The guest's question"}
				},
				"required": ["question"]
			}`),
		}, t.restaurantFAQ)
	}

	if t.menu != nil {
		r.Register(Definition{
			Name: "menu_search",
			Description: "Search the menu by dish name, ingredients, dietary preferences, or cuisine type.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {"type": "string", "description": "Search query, e.g. 'vegetarian options' or 'seafood'"}
				},
				"required": ["query"]
			}`),
		}, t.menuSearch)
	}
}

type bookTableArgs struct {
	Name      string `json:"name"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	PartySize int    `json:"party_size"`
	Phone     string `json:"phone"`
}

func (t *BookingToolset) bookTable(ctx context.Context, args json.RawMessage) (string, error) {
	var a bookTableArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", usererr(err, "Invalid arguments for book_table.")
	}

	conf, err := t.manager.Create(ctx, a.Name, a.Date, a.Time, a.PartySize, a.Phone)
	if err != nil {
		return "", bookingError("book", 0, err)
	}
	if conf.Booked && a.Phone != "" && t.contacts != nil {
		summary := "Booked table " + conf.Reservation.Summary()
		if _, err := t.contacts.Upsert(ctx, a.Phone, a.Name, summary); err != nil {
			t.logger.Warn("crm upsert after booking failed", "error", err)
		}
	}
	return conf.Message, nil
}

type modifyReservationArgs struct {
	ReservationID int64   `json:"reservation_id"`
	Name          *string `json:"name"`
	Date          *string `json:"date"`
	Time          *string `json:"time"`
	PartySize     *int    `json:"party_size"`
}

func (t *BookingToolset) modifyReservation(ctx context.Context, args json.RawMessage) (string, error) {
	var a modifyReservationArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", usererr(err, "Invalid arguments for modify_reservation.")
	}

	conf, err := t.manager.Update(ctx, a.ReservationID, a.Name, a.Date, a.Time, a.PartySize)
	if err != nil {
		return "", bookingError("modify", a.ReservationID, err)
	}
	return conf.Message, nil
}

type cancelReservationArgs struct {
	ReservationID int64  `json:"reservation_id"`
	Reason        string `json:"reason"`
}

func (t *BookingToolset) cancelReservation(ctx context.Context, args json.RawMessage) (string, error) {
	var a cancelReservationArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", usererr(err, "Invalid arguments for cancel_reservation.")
	}

	conf, err := t.manager.Cancel(ctx, a.ReservationID, a.Reason)
	if err != nil {
		return "", bookingError("cancel", a.ReservationID, err)
	}
	if conf.Reservation != nil && conf.Reservation.Phone != "" && t.contacts != nil {
		summary := "Cancelled reservation " + conf.Reservation.Summary()
		if a.Reason != "" {
			summary += " (reason: " + a.Reason + ")"
		}
		if _, err := t.contacts.AddNote(ctx, conf.Reservation.Phone, summary); err != nil {
			t.logger.Warn("crm note after cancellation failed", "error", err)
		}
	}
	return conf.Message, nil
}

type viewReservationArgs struct {
	ReservationID int64 `json:"reservation_id"`
}

func (t *BookingToolset) viewReservation(ctx context.Context, args json.RawMessage) (string, error) {
	var a viewReservationArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", usererr(err, "Invalid arguments for view_reservation.")
	}

	conf, err := t.manager.View(ctx, a.ReservationID)
	if err != nil {
		return "", bookingError("view", a.ReservationID, err)
	}
	return conf.Message, nil
}

type checkAvailabilityArgs struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	PartySize int    `json:"party_size"`
}

func (t *BookingToolset) checkAvailability(ctx context.Context, args json.RawMessage) (string, error) {
	var a checkAvailabilityArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", usererr(err, "Invalid arguments for check_table_availability.")
	}

	date, timeSlot, err := t.checker.ValidateQuery(a.Date, a.Time)
	if err != nil {
		return "", bookingError("check", 0, err)
	}

	var out string
	if timeSlot != "" {
		out, err = t.checker.ReportSpecificTime(ctx, date, timeSlot, a.PartySize)
	} else {
		out, err = t.checker.ReportDaily(ctx, date, a.PartySize)
	}
	if err != nil {
		return "", usererr(err, "Unable to connect to the database. Please try again later.")
	}
	return out, nil
}

type faqArgs struct {
	Question string `json:"question"`
}

func (t *BookingToolset) restaurantFAQ(ctx context.Context, args json.RawMessage) (string, error) {
	var a faqArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", usererr(err, "Invalid arguments for restaurant_faq.")
	}
	return t.faq.Answer(ctx, a.Question), nil
}

type menuSearchArgs struct {
	Query string `json:"query"`
}

func (t *BookingToolset) menuSearch(ctx context.Context, args json.RawMessage) (string, error) {
	var a menuSearchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return "", usererr(err, "Invalid arguments for menu_search.")
	}
	return t.menu.Search(ctx, a.Query), nil
}

// bookingError translates manager errors into the guest-facing phrasing for
// each operation.
func bookingError(op string, id int64, err error) error {
	var unparsable *nlp.UnparsableDateError
	switch {
	case errors.Is(err, reservations.ErrEmptyName):
		return usererr(err, "Name is required and cannot be empty.")
	case errors.Is(err, reservations.ErrInvalidPartySize):
		return usererr(err, "Party size must be between 1 and 20 people. Please contact us directly for larger groups.")
	case errors.As(err, &unparsable):
		return usererr(err, "Unable to parse date: '%s'. Please try formats like 'tomorrow', 'next Friday', 'August 15', or 'YYYY-MM-DD'.", unparsable.Input)
	case errors.Is(err, reservations.ErrPastDate):
		switch op {
		case "modify":
			return usererr(err, "Cannot modify reservation to a past date.")
		case "check":
			return usererr(err, "Cannot check availability for a past date.")
		default:
			return usererr(err, "Cannot book a table for a past date.")
		}
	case errors.Is(err, nlp.ErrInvalidTimeFormat):
		return usererr(err, "Invalid time format. Please use HH:MM format (24-hour).")
	case errors.Is(err, nlp.ErrOutOfHours):
		return usererr(err, "Restaurant is open from 10:00 AM to 11:00 PM. Please choose a time within these hours.")
	case errors.Is(err, reservations.ErrInvalidID):
		return usererr(err, "Valid reservation ID is required.")
	case errors.Is(err, reservations.ErrNotFound):
		return usererr(err, "No reservation found with ID %d.", id)
	case errors.Is(err, reservations.ErrNoChanges):
		return usererr(err, "No changes provided. Please specify what you'd like to modify (name, date, time, or party_size).")
	case errors.Is(err, reservations.ErrStoreUnavailable):
		return usererr(err, "The reservation system is temporarily unavailable. Please try again in a moment.")
	default:
		return err
	}
}
