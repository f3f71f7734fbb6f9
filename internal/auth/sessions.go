package auth

import (
	"time"

	"github.com/google/uuid"

	"fintechapi/internal/cache"
	"fintechapi/internal/core"
)

// Session is the explicit principal carried through every authenticated
// call. It holds only identity data, never the persisted user entity.
type Session struct {
	Token     string
	UserID    int64
	Email     string
	Kind      core.AccountKind
	CreatedAt time.Time
}

// SessionStore issues and resolves opaque bearer tokens. Sessions live in
// a TTL'd bounded store, so an idle session expires and memory stays flat.
type SessionStore struct {
	sessions    *cache.Store[Session]
	stopJanitor func()
}

// NewSessionStore creates a store whose sessions expire after ttl.
func NewSessionStore(maxSessions int, ttl time.Duration) *SessionStore {
	sessions := cache.New[Session](maxSessions, ttl)
	return &SessionStore{
		sessions:    sessions,
		stopJanitor: sessions.Janitor(5 * time.Minute),
	}
}

// Create issues a new session for the given user and returns it.
func (s *SessionStore) Create(userID int64, email string, kind core.AccountKind) Session {
	session := Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Email:     email,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	s.sessions.Put(session.Token, session)
	return session
}

// Resolve returns the session for a token, or ErrInvalidCredentials if the
// token is unknown or expired.
func (s *SessionStore) Resolve(token string) (Session, error) {
	session, ok := s.sessions.Get(token)
	if !ok {
		return Session{}, core.ErrInvalidCredentials
	}
	return session, nil
}

// Revoke drops a session. Unknown tokens are a no-op.
func (s *SessionStore) Revoke(token string) {
	s.sessions.Drop(token)
}

// Close stops the expiry janitor.
func (s *SessionStore) Close() {
	s.stopJanitor()
}
