package domain

import "time"

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	ParentID  string    `json:"parent_id,omitempty"` // one level of threading
	Likes     LikeSet   `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Comment) Clone() Comment {
	out := c
	out.Likes = append(LikeSet(nil), c.Likes...)
	return out
}
