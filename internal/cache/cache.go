// Package cache holds recently ingested rows so wizard steps can resume
// without re-uploading files. Entries are advisory: expiry or a process
// restart only costs the client a re-upload.
package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/sheetsync/internal/model"
)

// Store is a concurrent-safe TTL map of wizard sessions. Stale entries are
// dropped on access and by a background janitor.
type Store struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]*entry
	stop     chan struct{}
	stopOnce sync.Once
}

type entry struct {
	files     []model.FileRows
	mode      model.WriteMode
	expiresAt time.Time
}

// New creates a store whose entries live for ttl after their last write, and
// starts the sweep goroutine. Call Stop when the store is no longer needed.
func New(ttl time.Duration) *Store {
	s := &Store{
		ttl:      ttl,
		sessions: make(map[string]*entry),
		stop:     make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Stop terminates the background janitor. Safe to call more than once.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store) janitor() {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep(time.Now())
		}
	}
}

func (s *Store) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

// Put stores a new session holding the ingested files and returns its id.
func (s *Store) Put(files []model.FileRows) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry{files: files, expiresAt: time.Now().Add(s.ttl)}
	return id
}

// Files returns the cached rows for a session.
func (s *Store) Files(id string) ([]model.FileRows, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.active(id)
	if !ok {
		return nil, false
	}
	return e.files, true
}

// SetMode records the chosen write mode on an existing session and refreshes
// its TTL. Returns false when the session is unknown or expired.
func (s *Store) SetMode(id string, mode model.WriteMode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.active(id)
	if !ok {
		return false
	}
	e.mode = mode
	e.expiresAt = time.Now().Add(s.ttl)
	return true
}

// Mode returns the write mode stored on a session. The mode is "" until the
// configure step records one.
func (s *Store) Mode(id string) (model.WriteMode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.active(id)
	if !ok {
		return "", false
	}
	return e.mode, true
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// active returns the live entry for id, deleting it when expired. Callers
// must hold mu.
func (s *Store) active(id string) (*entry, bool) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(s.sessions, id)
		return nil, false
	}
	return e, true
}
