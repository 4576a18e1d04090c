package utils

import "strings"

// FormatAmount renders a decimal amount string ("12345.5") as "$12,345.50"
// for timelines and notifications.
func FormatAmount(amount string) string {
	if amount == "" {
		return ""
	}
	neg := strings.HasPrefix(amount, "-")
	amount = strings.TrimPrefix(amount, "-")

	whole, frac := amount, ""
	if i := strings.IndexByte(amount, '.'); i >= 0 {
		whole, frac = amount[:i], amount[i+1:]
	}
	switch len(frac) {
	case 0:
		frac = "00"
	case 1:
		frac += "0"
	default:
		frac = frac[:2]
	}

	var grouped strings.Builder
	for i, d := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(d)
	}

	out := "$" + grouped.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}
