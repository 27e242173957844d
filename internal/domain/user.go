package domain

type User struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Avatar     string  `json:"avatar,omitempty"`
	OnBoarding bool    `json:"on_boarding"`
	Following  LikeSet `json:"following"`
	Followers  LikeSet `json:"followers"`
}

func (u User) Clone() User {
	out := u
	out.Following = append(LikeSet(nil), u.Following...)
	out.Followers = append(LikeSet(nil), u.Followers...)
	return out
}

func (u User) IsFollowing(userID string) bool {
	return u.Following.Has(userID)
}
