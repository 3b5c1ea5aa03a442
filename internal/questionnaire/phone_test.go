package questionnaire

import "testing"

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"abc", ""},
		{"5", "(5"},
		{"55", "(55"},
		{"555", "(555) "},
		{"5551", "(555) 1"},
		{"55512", "(555) 12"},
		{"555123", "(555) 123-"},
		{"5551234", "(555) 123-4"},
		{"5551234567", "(555) 123-4567"},
		{"555123456789", "(555) 123-4567"},
		{"(555) 123-4567", "(555) 123-4567"},
		{"+1 555 123 4567", "(155) 512-3456"},
		{"555-abc-1234", "(555) 123-4"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := FormatPhone(tt.raw); got != tt.want {
				t.Errorf("FormatPhone(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFormatPhone_Idempotent(t *testing.T) {
	for _, raw := range []string{"5", "555", "5551234", "5551234567"} {
		once := FormatPhone(raw)
		if twice := FormatPhone(once); twice != once {
			t.Errorf("FormatPhone(FormatPhone(%q)) = %q, want %q", raw, twice, once)
		}
	}
}
