package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hostwise-ai/hostwise/internal/crm"
	"github.com/hostwise-ai/hostwise/internal/knowledge"
	"github.com/hostwise-ai/hostwise/internal/reservations"
	"github.com/hostwise-ai/hostwise/pkg/logging"
)

var testNow = time.Date(2026, time.March, 6, 12, 0, 0, 0, time.UTC)

type recordedContact struct {
	phone, name, summary string
}

type stubContacts struct {
	records []recordedContact
}

func (s *stubContacts) Upsert(_ context.Context, phone, name, summary string) (*crm.Contact, error) {
	s.records = append(s.records, recordedContact{phone: phone, name: name, summary: summary})
	return &crm.Contact{Phone: phone, Name: name}, nil
}

func (s *stubContacts) AddNote(_ context.Context, phone, note string) (*crm.Contact, error) {
	s.records = append(s.records, recordedContact{phone: phone, summary: note})
	return &crm.Contact{Phone: phone}, nil
}

func newTestRegistry(t *testing.T) (*Registry, *stubContacts, *reservations.InMemoryRepository) {
	t.Helper()
	logger := logging.New("error")
	repo := reservations.NewInMemoryRepository()
	clock := func() time.Time { return testNow }
	checker := reservations.NewChecker(repo, logger, nil, 10, 50).WithClock(clock)
	manager := reservations.NewManager(repo, checker, logger, nil).WithClock(clock)
	contacts := &stubContacts{}

	toolset := NewBookingToolset(
		manager,
		checker,
		knowledge.NewFAQSearcher(nil, logger),
		knowledge.NewMenuSearcher(nil, logger),
		contacts,
		logger,
	)
	reg := NewRegistry(logger, nil)
	toolset.RegisterAll(reg)
	return reg, contacts, repo
}

func dispatch(t *testing.T, reg *Registry, tool, args string) string {
	t.Helper()
	return reg.Dispatch(context.Background(), tool, json.RawMessage(args))
}

func TestRegistryDefinitionsOrder(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	defs := reg.Definitions()
	want := []string{
		"book_table", "modify_reservation", "cancel_reservation",
		"view_reservation", "check_table_availability", "restaurant_faq", "menu_search",
	}
	if len(defs) != len(want) {
		t.Fatalf("got %d tools, want %d", len(defs), len(want))
	}
	for i, name := range want {
		if defs[i].Name != name {
			t.Errorf("defs[%d] = %q, want %q", i, defs[i].Name, name)
		}
	}
	for _, def := range defs {
		if !json.Valid(def.InputSchema) {
			t.Errorf("tool %q has invalid schema", def.Name)
		}
	}
}

func TestBookTableTool(t *testing.T) {
	reg, contacts, _ := newTestRegistry(t)

	out := dispatch(t, reg, "book_table",
		`{"name":"Dan","date":"tomorrow","time":"19:00","party_size":4,"phone":"555-123-4567"}`)
	if !strings.Contains(out, "✅ Table successfully booked!") {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "Reservation ID: 1") {
		t.Errorf("missing reservation id: %q", out)
	}
	if len(contacts.records) != 1 {
		t.Fatalf("expected crm upsert, got %d", len(contacts.records))
	}
	if contacts.records[0].phone != "555-123-4567" || contacts.records[0].name != "Dan" {
		t.Errorf("unexpected crm record: %+v", contacts.records[0])
	}
	if !strings.Contains(contacts.records[0].summary, "Booked table #1: Dan, 2026-03-07 at 19:00, 4 guests") {
		t.Errorf("unexpected crm summary: %q", contacts.records[0].summary)
	}
}

// downRepo simulates a lost database connection: reads fail (the availability
// check stays fail-open) and writes surface ErrStoreUnavailable.
type downRepo struct {
	reservations.Repository
}

func (downRepo) Insert(context.Context, *reservations.Reservation) (*reservations.Reservation, error) {
	return nil, fmt.Errorf("reservations: insert failed: %w: dial tcp: connection refused", reservations.ErrStoreUnavailable)
}

func (downRepo) ListBySlot(context.Context, string, []string) ([]*reservations.Reservation, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestBookTableToolStoreUnavailable(t *testing.T) {
	logger := logging.New("error")
	repo := downRepo{}
	clock := func() time.Time { return testNow }
	checker := reservations.NewChecker(repo, logger, nil, 10, 50).WithClock(clock)
	manager := reservations.NewManager(repo, checker, logger, nil).WithClock(clock)
	toolset := NewBookingToolset(manager, checker, nil, nil, nil, logger)
	reg := NewRegistry(logger, nil)
	toolset.RegisterAll(reg)

	out := dispatch(t, reg, "book_table",
		`{"name":"Dan","date":"tomorrow","time":"19:00","party_size":4}`)
	want := "Error: The reservation system is temporarily unavailable. Please try again in a moment."
	if out != want {
		t.Errorf("out = %q, want %q", out, want)
	}
}

func TestBookTableToolValidationErrors(t *testing.T) {
	reg, contacts, _ := newTestRegistry(t)

	tests := []struct {
		name string
		args string
		want string
	}{
		{
			"empty name",
			`{"name":" ","date":"tomorrow","time":"19:00","party_size":4}`,
			"Error: Name is required and cannot be empty.",
		},
		{
			"party too large",
			`{"name":"Dan","date":"tomorrow","time":"19:00","party_size":21}`,
			"Error: Party size must be between 1 and 20 people. Please contact us directly for larger groups.",
		},
		{
			"unparsable date",
			`{"name":"Dan","date":"whenever","time":"19:00","party_size":4}`,
			"Error: Unable to parse date: 'whenever'. Please try formats like 'tomorrow', 'next Friday', 'August 15', or 'YYYY-MM-DD'.",
		},
		{
			"past date",
			`{"name":"Dan","date":"2026-01-01","time":"19:00","party_size":4}`,
			"Error: Cannot book a table for a past date.",
		},
		{
			"bad time",
			`{"name":"Dan","date":"tomorrow","time":"7pm","party_size":4}`,
			"Error: Invalid time format. Please use HH:MM format (24-hour).",
		},
		{
			"out of hours",
			`{"name":"Dan","date":"tomorrow","time":"08:00","party_size":4}`,
			"Error: Restaurant is open from 10:00 AM to 11:00 PM. Please choose a time within these hours.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := dispatch(t, reg, "book_table", tt.args)
			if out != tt.want {
				t.Errorf("got %q, want %q", out, tt.want)
			}
		})
	}
	if len(contacts.records) != 0 {
		t.Errorf("validation failures must not reach the crm: %+v", contacts.records)
	}
}

func TestModifyAndViewAndCancelTools(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	dispatch(t, reg, "book_table", `{"name":"Dan","date":"tomorrow","time":"19:00","party_size":4}`)

	out := dispatch(t, reg, "modify_reservation", `{"reservation_id":1,"party_size":6}`)
	if !strings.Contains(out, "Party Size: 4 → 6 people") {
		t.Errorf("missing diff: %q", out)
	}

	out = dispatch(t, reg, "modify_reservation", `{"reservation_id":1}`)
	if out != "Error: No changes provided. Please specify what you'd like to modify (name, date, time, or party_size)." {
		t.Errorf("unexpected: %q", out)
	}

	out = dispatch(t, reg, "modify_reservation", `{"reservation_id":99,"party_size":2}`)
	if out != "Error: No reservation found with ID 99." {
		t.Errorf("unexpected: %q", out)
	}

	out = dispatch(t, reg, "view_reservation", `{"reservation_id":1}`)
	if !strings.Contains(out, "📋 Reservation Details") {
		t.Errorf("unexpected: %q", out)
	}

	out = dispatch(t, reg, "cancel_reservation", `{"reservation_id":1,"reason":"sick"}`)
	if !strings.Contains(out, "✅ Reservation successfully cancelled!") {
		t.Errorf("unexpected: %q", out)
	}

	out = dispatch(t, reg, "view_reservation", `{"reservation_id":1}`)
	if out != "Error: No reservation found with ID 1." {
		t.Errorf("unexpected: %q", out)
	}
}

func TestCancelRecordsContactNote(t *testing.T) {
	reg, contacts, _ := newTestRegistry(t)

	dispatch(t, reg, "book_table",
		`{"name":"Dan","date":"tomorrow","time":"19:00","party_size":4,"phone":"555-123-4567"}`)
	dispatch(t, reg, "cancel_reservation", `{"reservation_id":1,"reason":"change of plans"}`)

	if len(contacts.records) != 2 {
		t.Fatalf("expected booking + cancellation records, got %d", len(contacts.records))
	}
	got := contacts.records[1].summary
	if !strings.Contains(got, "Cancelled reservation #1") || !strings.Contains(got, "change of plans") {
		t.Errorf("unexpected cancellation summary: %q", got)
	}
}

func TestCheckAvailabilityTool(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	out := dispatch(t, reg, "check_table_availability", `{"date":"tomorrow"}`)
	if !strings.Contains(out, "Daily Availability Overview for 2026-03-07") {
		t.Errorf("unexpected: %q", out)
	}

	out = dispatch(t, reg, "check_table_availability", `{"date":"tomorrow","time":"19:00","party_size":4}`)
	if !strings.Contains(out, "Availability for 2026-03-07 at 19:00") {
		t.Errorf("unexpected: %q", out)
	}

	out = dispatch(t, reg, "check_table_availability", `{"date":"2026-01-01"}`)
	if out != "Error: Cannot check availability for a past date." {
		t.Errorf("unexpected: %q", out)
	}
}

func TestKnowledgeTools(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	out := dispatch(t, reg, "restaurant_faq", `{"question":"what are your hours?"}`)
	if !strings.Contains(out, "Restaurant Hours") {
		t.Errorf("unexpected: %q", out)
	}

	out = dispatch(t, reg, "menu_search", `{"query":"vegan"}`)
	if !strings.Contains(out, "Vegetarian & Vegan Options") {
		t.Errorf("unexpected: %q", out)
	}
}

func TestDispatchUnknownToolAndBadArgs(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	out := dispatch(t, reg, "teleport_guest", `{}`)
	if out != `Error: Unknown tool "teleport_guest".` {
		t.Errorf("unexpected: %q", out)
	}

	out = dispatch(t, reg, "book_table", `{"name":`)
	if out != "Error: Invalid arguments for book_table." {
		t.Errorf("unexpected: %q", out)
	}
}
