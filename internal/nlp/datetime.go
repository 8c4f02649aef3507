package nlp

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Operating hours for reservations. The last seating is at 22:00.
const (
	OpenHour  = 10
	CloseHour = 23
)

var (
	// ErrInvalidTimeFormat is returned when a time is not 24-hour HH:MM
	ErrInvalidTimeFormat = errors.New("invalid time format, use HH:MM (24-hour)")

	// ErrOutOfHours is returned when a time falls outside operating hours
	ErrOutOfHours = errors.New("time is outside operating hours (10:00-23:00)")
)

// UnparsableDateError reports a date expression no rule could resolve.
type UnparsableDateError struct {
	Input string
}

func (e *UnparsableDateError) Error() string {
	return fmt.Sprintf("unable to parse date %q, try formats like 'tomorrow', 'next Friday', 'August 15', or YYYY-MM-DD", e.Input)
}

// Ordered so that an utterance naming several weekdays always resolves to
// the same one.
var weekdays = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

// Full names come before abbreviations so that "march" is consumed as a whole
// word before "mar" gets a chance to match.
var monthNames = []struct {
	name  string
	month time.Month
}{
	{"january", time.January}, {"jan", time.January},
	{"february", time.February}, {"feb", time.February},
	{"march", time.March}, {"mar", time.March},
	{"april", time.April}, {"apr", time.April},
	{"may", time.May},
	{"june", time.June}, {"jun", time.June},
	{"july", time.July}, {"jul", time.July},
	{"august", time.August}, {"aug", time.August},
	{"september", time.September}, {"sep", time.September},
	{"october", time.October}, {"oct", time.October},
	{"november", time.November}, {"nov", time.November},
	{"december", time.December}, {"dec", time.December},
}

var (
	dayNumberRE = regexp.MustCompile(`\b(\d{1,2})\b`)
	yearRE      = regexp.MustCompile(`\b(20\d{2})\b`)
	isoDateRE   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slashDateRE = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{4}))?$`)
	ordinalRE   = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)\b`)
	timeRE      = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)
)

// NormalizeDate resolves a natural-language date expression into an ISO
// YYYY-MM-DD date relative to ref. Rules are tried in order; dates that would
// land in the past roll forward (one year for month/day forms, one week for
// weekday forms). Returns *UnparsableDateError when nothing matches.
func NormalizeDate(input string, ref time.Time) (string, error) {
	raw := input
	input = strings.ToLower(strings.TrimSpace(input))
	today := truncateToDay(ref)

	// Relative tokens.
	switch input {
	case "today":
		return formatISO(today), nil
	case "tomorrow":
		return formatISO(today.AddDate(0, 0, 1)), nil
	case "day after tomorrow":
		return formatISO(today.AddDate(0, 0, 2)), nil
	}
	if strings.Contains(input, "next week") {
		return formatISO(today.AddDate(0, 0, 7)), nil
	}

	// "next <weekday>" before bare "<weekday>".
	for _, wd := range weekdays {
		if strings.Contains(input, "next "+wd.name) {
			ahead := int(wd.day) - int(today.Weekday())
			if ahead <= 0 {
				ahead += 7
			}
			return formatISO(today.AddDate(0, 0, ahead)), nil
		}
	}
	for _, wd := range weekdays {
		if strings.Contains(input, wd.name) {
			ahead := int(wd.day) - int(today.Weekday())
			if ahead < 0 {
				ahead += 7
			} else if ahead == 0 {
				// A bare weekday naming today means next week, never today.
				ahead = 7
			}
			return formatISO(today.AddDate(0, 0, ahead)), nil
		}
	}

	// "<month-name> <day>[, year]".
	if iso, ok := parseMonthDay(input, today); ok {
		return iso, nil
	}

	// Looser natural forms: ordinal suffixes ("august 15th"), "15 of august".
	if cleaned := loosenDateExpr(input); cleaned != input {
		if iso, ok := parseMonthDay(cleaned, today); ok {
			return iso, nil
		}
	}

	// Strict ISO passthrough.
	if isoDateRE.MatchString(input) {
		return input, nil
	}

	// MM/DD or MM/DD/YYYY.
	if m := slashDateRE.FindStringSubmatch(input); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year := today.Year()
		hasYear := m[3] != ""
		if hasYear {
			year, _ = strconv.Atoi(m[3])
		}
		if d, ok := makeDate(year, time.Month(month), day, today.Location()); ok {
			if !hasYear && d.Before(today) {
				d = d.AddDate(1, 0, 0)
			}
			return formatISO(d), nil
		}
	}

	return "", &UnparsableDateError{Input: raw}
}

// ParseTime validates a caller-supplied reservation time. It must already be
// 24-hour HH:MM; natural-language times are the extractor's problem.
func ParseTime(value string) (string, error) {
	value = strings.TrimSpace(value)
	m := timeRE.FindStringSubmatch(value)
	if m == nil {
		return "", ErrInvalidTimeFormat
	}
	hour, _ := strconv.Atoi(m[1])
	if hour < OpenHour || hour >= CloseHour {
		return "", ErrOutOfHours
	}
	return value, nil
}

func parseMonthDay(input string, today time.Time) (string, bool) {
	for _, entry := range monthNames {
		if !containsWord(input, entry.name) {
			continue
		}
		dayMatch := dayNumberRE.FindStringSubmatch(input)
		if dayMatch == nil {
			continue
		}
		day, _ := strconv.Atoi(dayMatch[1])
		year := today.Year()
		hasYear := false
		if yearMatch := yearRE.FindStringSubmatch(input); yearMatch != nil {
			year, _ = strconv.Atoi(yearMatch[1])
			hasYear = true
		}
		d, ok := makeDate(year, entry.month, day, today.Location())
		if !ok {
			// Invalid day for this month; let a later rule have a go.
			continue
		}
		if !hasYear && d.Before(today) {
			d = d.AddDate(1, 0, 0)
		}
		return formatISO(d), true
	}
	return "", false
}

// loosenDateExpr strips ordinal suffixes and "of" so that expressions like
// "the 15th of august" reduce to month/day tokens.
func loosenDateExpr(input string) string {
	cleaned := ordinalRE.ReplaceAllString(input, "$1")
	cleaned = strings.ReplaceAll(cleaned, " of ", " ")
	return cleaned
}

func containsWord(s, word string) bool {
	idx := strings.Index(s, word)
	for idx >= 0 {
		before := idx == 0 || !isLetter(s[idx-1])
		afterIdx := idx + len(word)
		after := afterIdx >= len(s) || !isLetter(s[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(s[idx+1:], word)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// makeDate builds a date and rejects day/month combinations that would
// overflow (time.Date silently normalizes Feb 30 into March).
func makeDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if day < 1 || day > 31 || month < time.January || month > time.December {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if d.Day() != day || d.Month() != month {
		return time.Time{}, false
	}
	return d, true
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func formatISO(t time.Time) string {
	return t.Format("2006-01-02")
}
