package session

import (
	"context"
	"sync"
	"time"
)

// Store persists sessions by id.
type Store interface {
	// Load returns ErrNotFound for unknown or expired sessions.
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	// Name identifies the backend in logs and metrics.
	Name() string
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps encoded sessions in process memory. Sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (st *MemoryStore) Name() string { return "memory" }

func (st *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	st.mu.RLock()
	entry, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if st.now().After(entry.expiresAt) {
		st.mu.Lock()
		delete(st.sessions, id)
		st.mu.Unlock()
		return nil, ErrNotFound
	}
	return Decode(entry.data)
}

func (st *MemoryStore) Save(_ context.Context, s *Session, ttl time.Duration) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	st.mu.Lock()
	st.sessions[s.ID()] = memoryEntry{data: data, expiresAt: st.now().Add(ttl)}
	st.mu.Unlock()
	return nil
}

func (st *MemoryStore) Delete(_ context.Context, id string) error {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (st *MemoryStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
