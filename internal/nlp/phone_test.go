package nlp

import "testing"

func TestCleanPhoneNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ten digit us", "5551234567", "+15551234567"},
		{"formatted us", "(555) 123-4567", "+15551234567"},
		{"eleven digit us", "15551234567", "+15551234567"},
		{"already e164", "+15551234567", "+15551234567"},
		{"international", "+442079460958", "+442079460958"},
		{"international spaced", "+44 20 7946 0958", "+442079460958"},
		{"international without plus", "442079460958", "+442079460958"},
		{"too short", "12345", ""},
		{"way too long", "+12345678901234567890", ""},
		{"empty", "", ""},
		{"letters only", "call me maybe", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanPhoneNumber(tt.input); got != tt.want {
				t.Errorf("CleanPhoneNumber(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
