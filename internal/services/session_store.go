package services

import (
	"sync"
	"time"

	"github.com/clubstride/hourtrack/internal/models"
	"github.com/google/uuid"
)

const (
	DefaultSessionIdleTimeout = 30 * time.Minute
	DefaultSessionLifetime    = 12 * time.Hour
)

type Session struct {
	Token      string
	UserID     uint
	Role       models.Role
	CreatedAt  time.Time
	LastSeenAt time.Time
}

func (session Session) Caller() Caller {
	return Caller{UserID: session.UserID, Role: session.Role}
}

// SessionStore keeps sessions in process memory. A session ends after idleTimeout without
// activity or maxLifetime after creation, whichever comes first.
type SessionStore struct {
	mu          sync.Mutex
	sessions    map[string]Session
	idleTimeout time.Duration
	maxLifetime time.Duration
}

func NewSessionStore(idleTimeout time.Duration, maxLifetime time.Duration) *SessionStore {
	if idleTimeout <= 0 {
		idleTimeout = DefaultSessionIdleTimeout
	}
	if maxLifetime <= 0 {
		maxLifetime = DefaultSessionLifetime
	}
	return &SessionStore{
		sessions:    make(map[string]Session),
		idleTimeout: idleTimeout,
		maxLifetime: maxLifetime,
	}
}

func (store *SessionStore) MaxLifetime() time.Duration {
	return store.maxLifetime
}

func (store *SessionStore) Create(user models.User, now time.Time) Session {
	session := Session{
		Token:      uuid.NewString(),
		UserID:     user.ID,
		Role:       user.Role,
		CreatedAt:  now,
		LastSeenAt: now,
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	store.sessions[session.Token] = session
	return session
}

// Touch validates a token and refreshes its idle deadline.
func (store *SessionStore) Touch(token string, now time.Time) (Session, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()

	session, ok := store.sessions[token]
	if !ok {
		return Session{}, false
	}
	if store.expiredLocked(session, now) {
		delete(store.sessions, token)
		return Session{}, false
	}

	session.LastSeenAt = now
	store.sessions[token] = session
	return session, true
}

func (store *SessionStore) Revoke(token string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.sessions, token)
}

// RevokeUser ends every session of a user and returns how many were removed.
func (store *SessionStore) RevokeUser(userID uint) int {
	store.mu.Lock()
	defer store.mu.Unlock()

	removed := 0
	for token, session := range store.sessions {
		if session.UserID == userID {
			delete(store.sessions, token)
			removed++
		}
	}
	return removed
}

func (store *SessionStore) Prune(now time.Time) int {
	store.mu.Lock()
	defer store.mu.Unlock()

	removed := 0
	for token, session := range store.sessions {
		if store.expiredLocked(session, now) {
			delete(store.sessions, token)
			removed++
		}
	}
	return removed
}

func (store *SessionStore) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.sessions)
}

func (store *SessionStore) expiredLocked(session Session, now time.Time) bool {
	if now.Sub(session.LastSeenAt) >= store.idleTimeout {
		return true
	}
	return now.Sub(session.CreatedAt) >= store.maxLifetime
}
