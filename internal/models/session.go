package models

import (
	"time"

	"golang.org/x/oauth2"
)

// Session is a server-side browsing session.
type Session struct {
	ID         string
	Token      *oauth2.Token
	OAuthState string
	Seen       SeenSet
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ExpiresAt  time.Time

	dirty bool
}

// Authenticated reports whether the session holds a credential.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != nil && s.Token.AccessToken != ""
}

// SetToken replaces the stored credential.
func (s *Session) SetToken(t *oauth2.Token) {
	s.Token = t
	s.dirty = true
}

// SetSeen replaces the seen-set.
func (s *Session) SetSeen(seen SeenSet) {
	s.Seen = seen
	s.dirty = true
}

// ResetSeen empties the seen-set, as when a new search starts.
func (s *Session) ResetSeen() {
	s.SetSeen(SeenSet{})
}

// SetOAuthState records the state value sent with a login redirect.
func (s *Session) SetOAuthState(state string) {
	s.OAuthState = state
	s.dirty = true
}

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool { return s.dirty }

// MarkClean resets the change flag after the session is saved.
func (s *Session) MarkClean() { s.dirty = false }

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
