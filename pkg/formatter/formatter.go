package formatter

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// FormatNumber converts an integer to a string with commas as thousands separators.
// Example: 1234567 -> "1,234,567"
func FormatNumber(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		s = s[1:]
	}

	le := len(s)
	if le <= 3 {
		if n < 0 {
			return "-" + s
		}
		return s
	}

	sepCount := (le - 1) / 3

	res := make([]byte, le+sepCount)

	j := len(res) - 1
	for i := le - 1; i >= 0; i-- {
		res[j] = s[i]
		j--
		if (le-i)%3 == 0 && i > 0 {
			res[j] = ','
			j--
		}
	}

	if n < 0 {
		return "-" + string(res)
	}
	return string(res)
}

// TimeAgo renders the distance between t and now in the short form used on feed cards.
// Example: 90 minutes ago -> "1h ago"
func TimeAgo(t, now time.Time) string {
	seconds := now.Sub(t).Seconds()

	units := []struct {
		span   float64
		suffix string
	}{
		{31536000, "y"},
		{2592000, "mo"},
		{86400, "d"},
		{3600, "h"},
		{60, "m"},
	}
	for _, u := range units {
		if interval := seconds / u.span; interval > 1 {
			return strconv.Itoa(int(interval)) + u.suffix + " ago"
		}
	}

	if seconds < 0 {
		seconds = 0
	}
	return strconv.Itoa(int(seconds)) + "s ago"
}

// Initials returns up to two upper-cased initials of a display name, "U" when empty.
func Initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "U"
	}

	var sb strings.Builder
	for _, f := range fields {
		r, _ := utf8.DecodeRuneInString(f)
		sb.WriteRune(unicode.ToUpper(r))
		if utf8.RuneCountInString(sb.String()) == 2 {
			break
		}
	}
	return sb.String()
}

// EscapeMarkdownV2 escapes special characters in Markdown V2 format
func EscapeMarkdownV2(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			sb.WriteRune('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
