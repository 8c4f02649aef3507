package crm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/hostwise-ai/hostwise/pkg/logging"
)

var contactCols = []string{"phone", "name", "last_interaction", "created_at", "updated_at"}

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	store := NewStore(mock, logging.New("error")).
		WithClock(func() time.Time { return time.Date(2026, time.March, 6, 18, 30, 0, 0, time.UTC) })
	return mock, store
}

func TestUpsertCreatesNewContact(t *testing.T) {
	mock, store := newMockStore(t)
	ts := time.Date(2026, time.March, 6, 18, 30, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT phone, name, last_interaction").
		WithArgs("+15551234567").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("INSERT INTO crm_contacts").
		WithArgs("+15551234567", "Dan", "[2026-03-06 18:30] Booked table for 4").
		WillReturnRows(pgxmock.NewRows(contactCols).
			AddRow("+15551234567", "Dan", "[2026-03-06 18:30] Booked table for 4", ts, ts))

	c, err := store.Upsert(context.Background(), "555-123-4567", "Dan", "Booked table for 4")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if c.Phone != "+15551234567" || c.Name != "Dan" {
		t.Errorf("unexpected contact: %+v", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsertAppendsInteraction(t *testing.T) {
	mock, store := newMockStore(t)
	ts := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	prior := "[2026-03-01 12:00] Initial contact"
	appended := prior + "\n[2026-03-06 18:30] Asked about vegan menu"

	mock.ExpectQuery("SELECT phone, name, last_interaction").
		WithArgs("+15551234567").
		WillReturnRows(pgxmock.NewRows(contactCols).
			AddRow("+15551234567", "Dan", prior, ts, ts))
	mock.ExpectQuery("UPDATE crm_contacts").
		WithArgs("+15551234567", "Dan", appended).
		WillReturnRows(pgxmock.NewRows(contactCols).
			AddRow("+15551234567", "Dan", appended, ts, ts))

	c, err := store.Upsert(context.Background(), "+15551234567", "", "Asked about vegan menu")
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if c.LastInteraction != appended {
		t.Errorf("interaction log = %q, want %q", c.LastInteraction, appended)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsertRequiresPhone(t *testing.T) {
	_, store := newMockStore(t)
	if _, err := store.Upsert(context.Background(), "", "Dan", "note"); !errors.Is(err, ErrPhoneRequired) {
		t.Errorf("err = %v, want ErrPhoneRequired", err)
	}
}

func TestAddNoteAutoCreates(t *testing.T) {
	mock, store := newMockStore(t)
	ts := time.Date(2026, time.March, 6, 18, 30, 0, 0, time.UTC)
	autoEntry := "[2026-03-06 18:30] Auto-created to store interaction note"
	withNote := autoEntry + "\n[2026-03-06 18:30] Prefers window seat"

	mock.ExpectQuery("SELECT phone, name, last_interaction").
		WithArgs("+15551234567").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("INSERT INTO crm_contacts").
		WithArgs("+15551234567", "", autoEntry).
		WillReturnRows(pgxmock.NewRows(contactCols).
			AddRow("+15551234567", "", autoEntry, ts, ts))
	mock.ExpectQuery("SELECT phone, name, last_interaction").
		WithArgs("+15551234567").
		WillReturnRows(pgxmock.NewRows(contactCols).
			AddRow("+15551234567", "", autoEntry, ts, ts))
	mock.ExpectQuery("UPDATE crm_contacts").
		WithArgs("+15551234567", "", withNote).
		WillReturnRows(pgxmock.NewRows(contactCols).
			AddRow("+15551234567", "", withNote, ts, ts))

	c, err := store.AddNote(context.Background(), "5551234567", "Prefers window seat")
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if c.LastInteraction != withNote {
		t.Errorf("interaction log = %q, want %q", c.LastInteraction, withNote)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetByPhoneNotFound(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery("SELECT phone, name, last_interaction").
		WithArgs("+15551234567").
		WillReturnError(pgx.ErrNoRows)

	if _, err := store.GetByPhone(context.Background(), "+15551234567"); !errors.Is(err, ErrContactNotFound) {
		t.Errorf("err = %v, want ErrContactNotFound", err)
	}
}

func TestSearch(t *testing.T) {
	mock, store := newMockStore(t)
	ts := time.Date(2026, time.March, 6, 18, 30, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT phone, name, last_interaction").
		WithArgs("%Dan%").
		WillReturnRows(pgxmock.NewRows(contactCols).
			AddRow("+15551234567", "Dan", "", ts, ts))

	out, err := store.Search(context.Background(), "Dan")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(out) != 1 || out[0].Name != "Dan" {
		t.Errorf("unexpected results: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
