package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Used in debug mode and tests.
type MemoryStore struct {
	sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, sessions: make(map[string]memoryEntry), now: time.Now}
}

func (ms *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	ms.Lock()
	defer ms.Unlock()

	e, ok := ms.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !ms.now().Before(e.expiresAt) {
		delete(ms.sessions, id)
		return nil, ErrNotFound
	}
	var s Session
	if err := json.Unmarshal(e.raw, &s); err != nil {
		return nil, errors.Wrap(err, "decoding session")
	}
	return &s, nil
}

func (ms *MemoryStore) Save(_ context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}

	ms.Lock()
	defer ms.Unlock()
	ms.sessions[s.ID] = memoryEntry{raw: raw, expiresAt: ms.now().Add(ms.ttl)}
	return nil
}

func (ms *MemoryStore) Delete(_ context.Context, id string) error {
	ms.Lock()
	defer ms.Unlock()
	delete(ms.sessions, id)
	return nil
}
