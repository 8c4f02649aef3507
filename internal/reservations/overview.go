package reservations

import (
	"context"
	"fmt"
	"strings"
)

// ReportSpecificTime renders a human-readable availability report for one
// slot. partySize 0 means "not specified".
func (c *Checker) ReportSpecificTime(ctx context.Context, date, timeSlot string, partySize int) (string, error) {
	rows, err := c.repo.ListBySlot(ctx, date, slotPatterns(timeSlot))
	if err != nil {
		return "", fmt.Errorf("reservations: specific time report: %w", err)
	}
	rows = dedupeByID(rows)

	totalGuests := 0
	for _, r := range rows {
		totalGuests += r.Guests
	}
	tablesBooked := len(rows)
	availableCapacity := c.maxCapacity - totalGuests
	availableTables := c.maxTables - tablesBooked

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Availability for %s at %s:\n\n", date, timeSlot)

	if partySize > 0 {
		if availableCapacity >= partySize && availableTables > 0 {
			fmt.Fprintf(&b, "✅ Available! We can accommodate your party of %d people.\n", partySize)
			fmt.Fprintf(&b, "📊 Current status: %d/%d guests, %d/%d tables booked\n",
				totalGuests, c.maxCapacity, tablesBooked, c.maxTables)
		} else {
			fmt.Fprintf(&b, "❌ Not available for %d people.\n", partySize)
			fmt.Fprintf(&b, "📊 Current status: %d/%d guests, %d/%d tables booked\n",
				totalGuests, c.maxCapacity, tablesBooked, c.maxTables)
			if availableCapacity > 0 && availableTables > 0 {
				fmt.Fprintf(&b, "💡 We can accommodate up to %d people at this time.\n",
					minInt(availableCapacity, MaxPartySize))
			}
			if alternatives := c.alternativeTimes(ctx, date, timeSlot, partySize); len(alternatives) > 0 {
				fmt.Fprintf(&b, "\n📅 Alternative times available:\n%s", strings.Join(alternatives, "\n"))
			}
		}
	} else {
		if availableTables > 0 {
			fmt.Fprintf(&b, "✅ Available! We have %d tables free.\n", availableTables)
			fmt.Fprintf(&b, "📊 Current capacity: %d people available (max %d per table)\n",
				availableCapacity, minInt(availableCapacity, MaxPartySize))
		} else {
			fmt.Fprintf(&b, "❌ Fully booked at this time.\n")
			fmt.Fprintf(&b, "📊 All %d tables are reserved\n", c.maxTables)
		}
	}
	return b.String(), nil
}

// ReportDaily renders an hour-by-hour availability overview for a date.
// partySize 0 means "not specified".
func (c *Checker) ReportDaily(ctx context.Context, date string, partySize int) (string, error) {
	rows, err := c.repo.ListByDate(ctx, date)
	if err != nil {
		return "", fmt.Errorf("reservations: daily report: %w", err)
	}

	bySlot := make(map[string][]*Reservation)
	for _, r := range rows {
		bySlot[canonicalSlot(r.Time)] = append(bySlot[canonicalSlot(r.Time)], r)
	}

	var available, busy []string
	for hour := OpenHourSlot; hour <= LastSeatingHour; hour++ {
		slot := fmt.Sprintf("%02d:00", hour)
		slotRows := dedupeByID(bySlot[slot])

		totalGuests := 0
		for _, r := range slotRows {
			totalGuests += r.Guests
		}
		tablesBooked := len(slotRows)
		availableCapacity := c.maxCapacity - totalGuests
		availableTables := c.maxTables - tablesBooked

		switch {
		case partySize > 0 && availableCapacity >= partySize && availableTables > 0:
			available = append(available, fmt.Sprintf("✅ %s - Available for %d people", slot, partySize))
		case partySize > 0:
			busy = append(busy, fmt.Sprintf("❌ %s - Busy (%d/%d guests, %d/%d tables)",
				slot, totalGuests, c.maxCapacity, tablesBooked, c.maxTables))
		case availableTables > 0 && tablesBooked == 0:
			available = append(available, fmt.Sprintf("✅ %s - Fully available (%d tables, %d people capacity)",
				slot, c.maxTables, c.maxCapacity))
		case availableTables > 0:
			available = append(available, fmt.Sprintf("✅ %s - %d tables, %d people capacity",
				slot, availableTables, availableCapacity))
		default:
			busy = append(busy, fmt.Sprintf("❌ %s - Fully booked", slot))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Daily Availability Overview for %s:\n\n", date)
	if len(available) > 0 {
		b.WriteString("🟢 Available Time Slots:\n" + strings.Join(available, "\n"))
	} else {
		b.WriteString("❌ No available time slots")
	}
	if len(busy) > 0 {
		b.WriteString("\n\n🔴 Busy Time Slots:\n" + strings.Join(busy, "\n"))
	}
	fmt.Fprintf(&b, "\n\n💡 To book a table, use: 'book a table for [X] people on %s at [time] under [name]'", date)
	return b.String(), nil
}

// canonicalSlot maps a stored time (HH:MM or HH:MM:SS) onto the HH:MM form
// used for grouping.
func canonicalSlot(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
