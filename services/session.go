package services

import "time"

// Session is the authenticated caller of a service operation. It is built by
// the auth middleware and passed explicitly; services never read identity
// from global state.
type Session struct {
	UserID   uint
	Username string
	// Now is the request time. Zero means time.Now().
	Now time.Time
}

func NewSession(userID uint, username string) Session {
	return Session{UserID: userID, Username: username, Now: time.Now()}
}

func (s Session) now() time.Time {
	if s.Now.IsZero() {
		return time.Now()
	}
	return s.Now
}
