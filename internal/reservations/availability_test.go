package reservations

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hostwise-ai/hostwise/pkg/logging"
)

func testChecker(repo Repository) *Checker {
	return NewChecker(repo, logging.New("error"), nil, 10, 50)
}

func seed(t *testing.T, repo Repository, date, timeSlot string, guests int) {
	t.Helper()
	_, err := repo.Insert(context.Background(), &Reservation{
		Name: "Seed", Date: date, Time: timeSlot, Guests: guests,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestCheckEmptySlotAvailable(t *testing.T) {
	c := testChecker(NewInMemoryRepository())
	res := c.Check(context.Background(), "2026-03-10", "19:00", 4)
	if !res.Available {
		t.Fatalf("expected available, got %q", res.Message)
	}
	if !strings.Contains(res.Message, "Table available for 4 people at 19:00 on 2026-03-10") {
		t.Errorf("unexpected message: %q", res.Message)
	}
	if len(res.Suggestions) != 0 {
		t.Errorf("expected no suggestions, got %v", res.Suggestions)
	}
}

func TestCheckCapacityBoundary(t *testing.T) {
	repo := NewInMemoryRepository()
	c := testChecker(repo)
	ctx := context.Background()

	// 45 guests booked leaves exactly room for 5.
	seed(t, repo, "2026-03-10", "19:00", 25)
	seed(t, repo, "2026-03-10", "19:00", 20)

	res := c.Check(ctx, "2026-03-10", "19:00", 5)
	if !res.Available {
		t.Fatalf("exact fit should be available, got %q", res.Message)
	}

	res = c.Check(ctx, "2026-03-10", "19:00", 6)
	if res.Available {
		t.Fatal("over-capacity party should be rejected")
	}
	if !strings.Contains(res.Message, "We currently have 45 guests booked") {
		t.Errorf("unexpected message: %q", res.Message)
	}
	if len(res.Suggestions) == 0 || len(res.Suggestions) > 3 {
		t.Fatalf("expected 1-3 suggestions, got %d", len(res.Suggestions))
	}
	seen := map[string]bool{}
	for _, s := range res.Suggestions {
		fields := strings.Fields(s)
		if len(fields) < 2 {
			t.Fatalf("malformed suggestion: %q", s)
		}
		hour := fields[1]
		if hour < "10:00" || hour > "22:00" {
			t.Errorf("suggestion outside operating hours: %q", s)
		}
		if seen[hour] {
			t.Errorf("duplicate suggested hour: %q", s)
		}
		seen[hour] = true
	}
}

func TestCheckTableLimit(t *testing.T) {
	repo := NewInMemoryRepository()
	c := testChecker(repo)

	for i := 0; i < 10; i++ {
		seed(t, repo, "2026-03-10", "18:00", 2)
	}
	res := c.Check(context.Background(), "2026-03-10", "18:00", 2)
	if res.Available {
		t.Fatal("all tables booked, expected rejection")
	}
	if !strings.Contains(res.Message, "all 10 tables are booked") {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestCheckToleratesSecondsInStoredTimes(t *testing.T) {
	repo := NewInMemoryRepository()
	c := testChecker(repo)

	seed(t, repo, "2026-03-10", "19:00", 25)
	seed(t, repo, "2026-03-10", "19:00:00", 20)

	res := c.Check(context.Background(), "2026-03-10", "19:00", 6)
	if res.Available {
		t.Fatal("expected rejection, both time representations should count")
	}
	if !strings.Contains(res.Message, "45 guests booked") {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestAlternativesNearestFirst(t *testing.T) {
	repo := NewInMemoryRepository()
	c := testChecker(repo)

	seed(t, repo, "2026-03-10", "18:00", 45)
	res := c.Check(context.Background(), "2026-03-10", "18:00", 10)
	if res.Available {
		t.Fatal("expected rejection")
	}
	want := []string{
		"• 17:00 - Available for 10 people",
		"• 19:00 - Available for 10 people",
		"• 16:00 - Available for 10 people",
	}
	if len(res.Suggestions) != len(want) {
		t.Fatalf("suggestions = %v, want %v", res.Suggestions, want)
	}
	for i := range want {
		if res.Suggestions[i] != want[i] {
			t.Errorf("suggestion[%d] = %q, want %q", i, res.Suggestions[i], want[i])
		}
	}
}

// failingRepo errors on every call.
type failingRepo struct{}

var errStore = errors.New("store down")

func (failingRepo) Insert(context.Context, *Reservation) (*Reservation, error) {
	return nil, errStore
}
func (failingRepo) GetByID(context.Context, int64) (*Reservation, error) { return nil, errStore }
func (failingRepo) Update(context.Context, int64, Patch) (*Reservation, error) {
	return nil, errStore
}
func (failingRepo) Delete(context.Context, int64) (*Reservation, error) { return nil, errStore }
func (failingRepo) ListBySlot(context.Context, string, []string) ([]*Reservation, error) {
	return nil, errStore
}
func (failingRepo) ListByDate(context.Context, string) ([]*Reservation, error) {
	return nil, errStore
}
func (failingRepo) Count(context.Context) (int, error) { return 0, errStore }

func TestCheckFailsOpenOnStoreError(t *testing.T) {
	c := testChecker(failingRepo{})
	res := c.Check(context.Background(), "2026-03-10", "19:00", 4)
	if !res.Available {
		t.Fatal("store errors must fail open")
	}
	if !strings.Contains(res.Message, "Unable to verify availability") {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestReportDailyEmptyDate(t *testing.T) {
	c := testChecker(NewInMemoryRepository())
	out, err := c.ReportDaily(context.Background(), "2026-03-10", 0)
	if err != nil {
		t.Fatalf("ReportDaily: %v", err)
	}
	if !strings.Contains(out, "10:00 - Fully available (10 tables, 50 people capacity)") {
		t.Errorf("missing open slot line: %q", out)
	}
	if !strings.Contains(out, "22:00") {
		t.Errorf("last seating hour missing: %q", out)
	}
	if strings.Contains(out, "23:00") {
		t.Errorf("report should stop at 22:00: %q", out)
	}
}

func TestReportSpecificTime(t *testing.T) {
	repo := NewInMemoryRepository()
	c := testChecker(repo)
	seed(t, repo, "2026-03-10", "19:00", 48)

	out, err := c.ReportSpecificTime(context.Background(), "2026-03-10", "19:00", 4)
	if err != nil {
		t.Fatalf("ReportSpecificTime: %v", err)
	}
	if !strings.Contains(out, "❌ Not available for 4 people.") {
		t.Errorf("expected rejection line: %q", out)
	}
	if !strings.Contains(out, "48/50 guests, 1/10 tables booked") {
		t.Errorf("expected status line: %q", out)
	}

	out, err = c.ReportSpecificTime(context.Background(), "2026-03-10", "18:00", 4)
	if err != nil {
		t.Fatalf("ReportSpecificTime: %v", err)
	}
	if !strings.Contains(out, "✅ Available! We can accommodate your party of 4 people.") {
		t.Errorf("expected acceptance line: %q", out)
	}
}
