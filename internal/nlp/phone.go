package nlp

import "strings"

// CleanPhoneNumber normalizes a phone number into E.164-ish form. US numbers
// gain a +1 prefix; longer digit runs are treated as international. Returns
// "" when the input cannot be a phone number.
func CleanPhoneNumber(phone string) string {
	if phone == "" {
		return ""
	}

	var b strings.Builder
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if strings.HasPrefix(cleaned, "+") {
		digits := len(cleaned) - 1
		if digits >= 9 && digits <= 15 {
			return cleaned
		}
		return ""
	}

	switch {
	case strings.HasPrefix(cleaned, "1") && len(cleaned) == 11:
		return "+" + cleaned
	case len(cleaned) == 10:
		return "+1" + cleaned
	case len(cleaned) >= 10 && len(cleaned) <= 15 && !strings.HasPrefix(cleaned, "1"):
		return "+" + cleaned
	}
	return ""
}
