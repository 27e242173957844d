package feed

import (
	"time"

	"github.com/orgball2608/tint-feed/internal/domain"
	"github.com/orgball2608/tint-feed/pkg/formatter"
)

// Card is the display form of a post in the feed list.
type Card struct {
	PostID         string   `json:"post_id"`
	AuthorName     string   `json:"author_name"`
	AuthorInitials string   `json:"author_initials"`
	Caption        string   `json:"caption"`
	Media          []string `json:"media"`
	Age            string   `json:"age"`
	Likes          string   `json:"likes"`
	LikedByViewer  bool     `json:"liked_by_viewer"`
}

// NewCard renders p for viewerID. author may be nil while the profile is loading.
func NewCard(p domain.Post, author *domain.User, viewerID string, now time.Time) Card {
	name := ""
	if author != nil {
		name = author.Name
	}

	return Card{
		PostID:         p.ID,
		AuthorName:     name,
		AuthorInitials: formatter.Initials(name),
		Caption:        p.Caption,
		Media:          append([]string(nil), p.Media...),
		Age:            formatter.TimeAgo(p.CreatedAt, now),
		Likes:          formatter.FormatNumber(len(p.Likes)),
		LikedByViewer:  viewerID != "" && p.IsLikedBy(viewerID),
	}
}
