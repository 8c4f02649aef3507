package reservations

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hostwise-ai/hostwise/internal/nlp"
	"github.com/hostwise-ai/hostwise/internal/observability/metrics"
	"github.com/hostwise-ai/hostwise/pkg/logging"
)

// AvailabilityResult is the outcome of a capacity check for one slot.
type AvailabilityResult struct {
	Available   bool     `json:"available"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// Checker applies capacity rules against existing reservations.
type Checker struct {
	repo        Repository
	logger      *logging.Logger
	metrics     *metrics.ChatMetrics
	maxTables   int
	maxCapacity int
	now         func() time.Time
}

// NewChecker creates a capacity checker. metrics may be nil.
func NewChecker(repo Repository, logger *logging.Logger, m *metrics.ChatMetrics, maxTables, maxCapacity int) *Checker {
	return &Checker{
		repo:        repo,
		logger:      logger,
		metrics:     m,
		maxTables:   maxTables,
		maxCapacity: maxCapacity,
		now:         time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (c *Checker) WithClock(now func() time.Time) *Checker {
	c.now = now
	return c
}

// ValidateQuery normalizes an availability query's date and optional time.
// Returns the ISO date and the validated HH:MM time ("" when not supplied).
func (c *Checker) ValidateQuery(dateRaw, timeRaw string) (string, string, error) {
	date, err := nlp.NormalizeDate(dateRaw, c.now())
	if err != nil {
		return "", "", err
	}
	if date < c.now().Format("2006-01-02") {
		return "", "", ErrPastDate
	}
	if timeRaw == "" {
		return date, "", nil
	}
	timeSlot, err := nlp.ParseTime(timeRaw)
	if err != nil {
		return "", "", err
	}
	return date, timeSlot, nil
}

// slotPatterns returns the on-disk time representations for a HH:MM slot.
// Older rows carry seconds.
func slotPatterns(t string) []string {
	return []string{t, t + ":00"}
}

// Check decides whether a party fits in the slot. It never returns an error:
// when the store cannot be reached it fails open and lets the booking
// proceed, trading possible overbooking for availability.
func (c *Checker) Check(ctx context.Context, date, timeSlot string, partySize int) AvailabilityResult {
	rows, err := c.repo.ListBySlot(ctx, date, slotPatterns(timeSlot))
	if err != nil {
		c.logger.Warn("availability check failed open",
			"date", date, "time", timeSlot, "error", err)
		c.metrics.ObserveAvailabilityFailOpen()
		return AvailabilityResult{
			Available:   true,
			Message:     "⚠️ Unable to verify availability, but proceeding with booking.",
			Suggestions: []string{},
		}
	}
	rows = dedupeByID(rows)

	totalGuests := 0
	for _, r := range rows {
		totalGuests += r.Guests
	}
	tablesBooked := len(rows)

	if totalGuests+partySize > c.maxCapacity {
		suggestions := c.alternativeTimes(ctx, date, timeSlot, partySize)
		return AvailabilityResult{
			Available: false,
			Message: fmt.Sprintf(
				"❌ Sorry, we don't have capacity for %d people at %s on %s. "+
					"We currently have %d guests booked for that time slot. "+
					"Our maximum capacity per time slot is %d guests.\n\n"+
					"📅 Available alternatives:\n%s",
				partySize, timeSlot, date, totalGuests, c.maxCapacity,
				strings.Join(suggestions, "\n")),
			Suggestions: suggestions,
		}
	}
	if tablesBooked >= c.maxTables {
		suggestions := c.alternativeTimes(ctx, date, timeSlot, partySize)
		return AvailabilityResult{
			Available: false,
			Message: fmt.Sprintf(
				"❌ Sorry, all %d tables are booked for %s on %s. "+
					"📅 Available alternatives:\n%s",
				c.maxTables, timeSlot, date,
				strings.Join(suggestions, "\n")),
			Suggestions: suggestions,
		}
	}

	return AvailabilityResult{
		Available:   true,
		Message:     fmt.Sprintf("✅ Table available for %d people at %s on %s!", partySize, timeSlot, date),
		Suggestions: []string{},
	}
}

// alternativeTimes proposes up to three hourly slots that fit the party,
// nearest to the requested hour first.
func (c *Checker) alternativeTimes(ctx context.Context, date, requested string, partySize int) []string {
	requestedHour := slotHour(requested)

	type candidate struct {
		hourDiff int
		hour     int
		text     string
	}
	var candidates []candidate

	for hour := OpenHourSlot; hour <= LastSeatingHour; hour++ {
		slot := fmt.Sprintf("%02d:00", hour)
		if slot == requested {
			continue
		}
		rows, err := c.repo.ListBySlot(ctx, date, slotPatterns(slot))
		if err != nil {
			c.logger.Warn("alternative slot lookup failed",
				"date", date, "time", slot, "error", err)
			return []string{"• Please call us at (555) 123-4567 for availability"}
		}
		rows = dedupeByID(rows)

		totalGuests := 0
		for _, r := range rows {
			totalGuests += r.Guests
		}
		if totalGuests+partySize <= c.maxCapacity && len(rows) < c.maxTables {
			diff := hour - requestedHour
			if diff < 0 {
				diff = -diff
			}
			candidates = append(candidates, candidate{
				hourDiff: diff,
				hour:     hour,
				text:     fmt.Sprintf("• %s - Available for %d people", slot, partySize),
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].hourDiff != candidates[j].hourDiff {
			return candidates[i].hourDiff < candidates[j].hourDiff
		}
		return candidates[i].hour < candidates[j].hour
	})
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}
	out := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, cand.text)
	}
	return out
}

// Hourly slot range offered for alternatives and daily overviews. The last
// bookable hour is 22:00.
const (
	OpenHourSlot    = 10
	LastSeatingHour = 22
)

func slotHour(t string) int {
	h, _, _ := strings.Cut(t, ":")
	hour, _ := strconv.Atoi(h)
	return hour
}

func dedupeByID(rows []*Reservation) []*Reservation {
	seen := make(map[int64]struct{}, len(rows))
	out := rows[:0]
	for _, r := range rows {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}
