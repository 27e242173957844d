package domain

// SessionUser is the account behind the current auth session, as reported by the BaaS.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type Session struct {
	ID           string      `json:"id"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	ExpiresAt    int64       `json:"expires_at,omitempty"`
	User         SessionUser `json:"user"`
}

// StoredAuth is the blob persisted under the auth key so the app can start offline.
type StoredAuth struct {
	User         *User  `json:"user"`
	SessionID    string `json:"session_id,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

// Session rebuilds the session the blob was saved from.
func (a StoredAuth) Session() Session {
	return Session{
		ID:           a.SessionID,
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		ExpiresAt:    a.ExpiresAt,
	}
}
