package domain

import "time"

type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Caption   string    `json:"caption"`
	Media     []string  `json:"media"`
	Likes     LikeSet   `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a copy that shares no slices with p.
func (p Post) Clone() Post {
	out := p
	out.Media = append([]string(nil), p.Media...)
	out.Likes = append(LikeSet(nil), p.Likes...)
	return out
}

func (p Post) IsLikedBy(userID string) bool {
	return p.Likes.Has(userID)
}
