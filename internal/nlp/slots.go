package nlp

import (
	"regexp"
	"strings"
)

// Slot field names used across extraction and state tracking.
const (
	SlotName      = "name"
	SlotDate      = "date"
	SlotTime      = "time"
	SlotPartySize = "party_size"
	SlotPhone     = "phone"
)

// RequiredSlots are the fields a booking cannot be placed without. Phone is
// always optional.
var RequiredSlots = []string{SlotName, SlotDate, SlotTime, SlotPartySize}

// Slots maps a field name to the raw value captured from an utterance. A
// missing key means the field was not mentioned.
type Slots map[string]string

// Clone returns a shallow copy.
func (s Slots) Clone() Slots {
	out := make(Slots, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// slotRule is one ordered pattern for one field. The first group that
// captures non-empty text wins and stops the search for that field.
type slotRule struct {
	re *regexp.Regexp
	// transform optionally post-processes the captured value.
	transform func(string) string
	// reject optionally vetoes a match based on the captured value or on
	// what follows it. RE2 has no lookahead, so trailing-context checks
	// live here.
	reject func(value, utterance string, end int) bool
}

var nameRules = []slotRule{
	{
		re:        regexp.MustCompile(`(?:(?i:my name is|i am|i'm|this is|call me|name's))\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`),
		transform: titleCase,
	},
	// Short replies like "Dan" or "Dan for 5".
	{
		re:        regexp.MustCompile(`^\s*([A-Z][a-z]+)(?:\s+for\s+\d{1,2}\b.*)?\s*$`),
		transform: titleCase,
		reject:    bareNameIsReservedWord,
	},
}

// Capitalized words that start a short message but are never a guest name.
var reservedBareWords = map[string]struct{}{
	"today": {}, "tomorrow": {}, "tonight": {}, "yes": {}, "no": {},
	"ok": {}, "okay": {}, "thanks": {}, "hello": {}, "hi": {}, "hey": {},
	"monday": {}, "tuesday": {}, "wednesday": {}, "thursday": {},
	"friday": {}, "saturday": {}, "sunday": {},
	"january": {}, "february": {}, "march": {}, "april": {}, "may": {},
	"june": {}, "july": {}, "august": {}, "september": {}, "october": {},
	"november": {}, "december": {},
}

var dateRules = []slotRule{
	{re: regexp.MustCompile(`(?i)\b(day after tomorrow|tomorrow|today|next week)\b`)},
	{re: regexp.MustCompile(`(?i)\b(next\s+(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday))\b`)},
	{re: regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)},
	{re: regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)},
	{re: regexp.MustCompile(`\b(\d{1,2}/\d{1,2}(?:/\d{4})?)\b`)},
}

var timeRules = []slotRule{
	{re: regexp.MustCompile(`(?i)\b(\d{1,2}:\d{2}\s?(?:am|pm)?)\b`)},
	{re: regexp.MustCompile(`(?i)\b(\d{1,2}\s?(?:am|pm))\b`)},
	// "at 7" with the leading "at" stripped by the capture group.
	{re: regexp.MustCompile(`(?i)\bat\s+(\d{1,2}(?::\d{2})?\s?(?:am|pm)?)\b`)},
}

var partySizeRules = []slotRule{
	// "for 7pm" and "for 7:30" are times, not party sizes.
	{re: regexp.MustCompile(`(?i)\bfor\s+(\d{1,2})\b`), reject: followedByTimeSuffix},
	{re: regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:people|guests|persons|ppl)\b`)},
	{re: regexp.MustCompile(`(?i)\bparty\s+of\s+(\d{1,2})\b`)},
}

var phoneRules = []slotRule{
	// No leading \b: it would never match before "+".
	{
		re:        regexp.MustCompile(`(\+?\d[\d\- ]{6,}\d)\b`),
		transform: strings.TrimSpace,
	},
}

var fieldRules = map[string][]slotRule{
	SlotName:      nameRules,
	SlotDate:      dateRules,
	SlotTime:      timeRules,
	SlotPartySize: partySizeRules,
	SlotPhone:     phoneRules,
}

// ExtractSlots scans an utterance for booking fields. Fields are independent:
// any subset of the five may come back, and a miss on one field never blocks
// another.
func ExtractSlots(utterance string) Slots {
	slots := make(Slots)
	for field, rules := range fieldRules {
		for _, rule := range rules {
			idx := rule.re.FindStringSubmatchIndex(utterance)
			if idx == nil || len(idx) < 4 || idx[2] < 0 {
				continue
			}
			value := strings.TrimSpace(utterance[idx[2]:idx[3]])
			if value == "" {
				continue
			}
			if rule.reject != nil && rule.reject(value, utterance, idx[3]) {
				continue
			}
			if field == SlotPhone && digitCount(value) < 8 {
				continue
			}
			if rule.transform != nil {
				value = rule.transform(value)
			}
			slots[field] = value
			break
		}
	}
	return slots
}

func followedByTimeSuffix(_, utterance string, end int) bool {
	rest := strings.ToLower(strings.TrimLeft(utterance[end:], " "))
	return strings.HasPrefix(rest, "am") || strings.HasPrefix(rest, "pm") ||
		strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, "o'clock")
}

func bareNameIsReservedWord(value, _ string, _ int) bool {
	_, reserved := reservedBareWords[strings.ToLower(value)]
	return reserved
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
