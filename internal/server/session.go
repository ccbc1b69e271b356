package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the immutable record of a successful Bind.
type Session struct {
	Handle    string
	Flags     uint32
	Anonymous bool
	CodePage  uint32
	Created   time.Time
}

// sessionRegistry tracks bound sessions.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*Session)}
}

func (r *sessionRegistry) add(flags uint32, anonymous bool, codePage uint32) *Session {
	sess := &Session{
		Handle:    uuid.NewString(),
		Flags:     flags,
		Anonymous: anonymous,
		CodePage:  codePage,
		Created:   time.Now(),
	}
	r.mu.Lock()
	r.sessions[sess.Handle] = sess
	r.mu.Unlock()
	return sess
}

func (r *sessionRegistry) get(handle string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[handle]
	return sess, ok
}

func (r *sessionRegistry) remove(handle string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[handle]; !ok {
		return false
	}
	delete(r.sessions, handle)
	return true
}

func (r *sessionRegistry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
