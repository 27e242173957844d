package feed

import (
	"testing"
	"time"

	"github.com/orgball2608/tint-feed/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewCard(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := domain.Post{
		ID:        "p1",
		Caption:   "sunset",
		Media:     []string{"m1"},
		Likes:     domain.LikeSet{"u1", "u2"},
		CreatedAt: now.Add(-90 * time.Minute),
	}

	card := NewCard(p, &domain.User{ID: "a", Name: "ana lima"}, "u2", now)
	assert.Equal(t, "AL", card.AuthorInitials)
	assert.Equal(t, "1h ago", card.Age)
	assert.Equal(t, "2", card.Likes)
	assert.True(t, card.LikedByViewer)

	card.Media[0] = "changed"
	assert.Equal(t, "m1", p.Media[0])
}

func TestNewCard_UnknownAuthor(t *testing.T) {
	card := NewCard(domain.Post{ID: "p1"}, nil, "", time.Now())
	assert.Equal(t, "U", card.AuthorInitials)
	assert.False(t, card.LikedByViewer)
}
