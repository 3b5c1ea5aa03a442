package questionnaire

import "strings"

const maxPhoneDigits = 10

// FormatPhone renders the digits of raw as a US phone number while it is
// being typed: "(555", "(555) 12", "(555) 123-4567". Non-digits are dropped
// and digits beyond the tenth are ignored.
func FormatPhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == maxPhoneDigits {
				break
			}
		}
	}
	d := b.String()

	switch {
	case len(d) >= 6:
		return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
	case len(d) >= 3:
		return "(" + d[:3] + ") " + d[3:]
	case len(d) > 0:
		return "(" + d
	default:
		return ""
	}
}
