package wizard

import (
	"sync"
	"time"

	"github.com/owlingo/console-backend/internal/entity"
	"github.com/patrickmn/go-cache"
)

// sessionHandle wraps one session with its mutex. All orchestration runs as
// interleaved critical sections on this mutex; network calls happen outside
// it. A nil session marks a handle whose session was cancelled or saved
// while another goroutine was waiting on the lock.
type sessionHandle struct {
	mu      sync.Mutex
	session *entity.WizardSession
}

// SessionStore holds ephemeral wizard sessions with a TTL. Sessions are
// in-memory only: an abandoned wizard simply expires.
type SessionStore struct {
	cache *cache.Cache
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		cache: cache.New(ttl, ttl/2),
	}
}

// Put registers a new session.
func (s *SessionStore) Put(session *entity.WizardSession) {
	s.cache.SetDefault(session.ID, &sessionHandle{session: session})
}

// handle returns the live handle for a session ID.
func (s *SessionStore) handle(id string) (*sessionHandle, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return v.(*sessionHandle), nil
}

// Drop removes a session from the store.
func (s *SessionStore) Drop(id string) {
	s.cache.Delete(id)
}
