package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-45210, "-45,210"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in))
	}
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "30s ago", TimeAgo(now.Add(-30*time.Second), now))
	assert.Equal(t, "5m ago", TimeAgo(now.Add(-5*time.Minute-time.Second), now))
	assert.Equal(t, "2d ago", TimeAgo(now.Add(-50*time.Hour), now))
	assert.Equal(t, "0s ago", TimeAgo(now.Add(time.Minute), now))
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "U", Initials("  "))
	assert.Equal(t, "A", Initials("ana"))
	assert.Equal(t, "AL", Initials("ana lima souza"))
}

func TestEscapeMarkdownV2(t *testing.T) {
	assert.Equal(t, `fetch\_posts failed \(503\)\.`, EscapeMarkdownV2("fetch_posts failed (503)."))
}
