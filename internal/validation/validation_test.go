package validation

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"+1 (555) 123-4567", "+15551234567"},
		{"  +44 20 7946 0958  ", "+442079460958"},
		{"+49.151.23456789", "+4915123456789"},
		{"+15551234567", "+15551234567"},
	}

	for _, tt := range tests {
		if got := NormalizePhone(tt.input); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+15551234567", true},
		{"+1 (555) 123-4567", true},
		{"+442079460958", true},
		{"15551234567", false},   // missing plus
		{"+05551234567", false},  // leading zero
		{"+1555", false},         // too short
		{"+1234567890123456", false}, // too long
		{"+1555abc4567", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidatePhone(tt.phone); got != tt.want {
			t.Errorf("ValidatePhone(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}

func TestValidateDisplayName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Esther", true},
		{"  padded  ", true},
		{"名前", true},
		{"", false},
		{"   ", false},
		{"bad\x00name", false},
		{"line\nbreak", false},
	}

	for _, tt := range tests {
		if got := ValidateDisplayName(tt.name); got != tt.want {
			t.Errorf("ValidateDisplayName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTrimAndLimit(t *testing.T) {
	if got := TrimAndLimit("  hello  ", 100); got != "hello" {
		t.Errorf("TrimAndLimit = %q, want hello", got)
	}
	if got := TrimAndLimit("abcdef", 3); got != "abc" {
		t.Errorf("TrimAndLimit = %q, want abc", got)
	}
	if got := TrimAndLimit("abc", 0); got != "abc" {
		t.Errorf("TrimAndLimit with no limit = %q, want abc", got)
	}
}
