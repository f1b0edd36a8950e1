package modelstore

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	blob     []byte
	storedAt time.Time
}

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, time.Time{}, &CacheMissError{Key: key}
	}
	return append([]byte(nil), e.blob...), e.storedAt, nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, blob []byte) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memoryEntry{blob: append([]byte(nil), blob...), storedAt: s.now()}
	s.entries[key] = e
	return e.storedAt, nil
}

// PutAt stores blob with an explicit storage time
func (s *MemoryStore) PutAt(key string, blob []byte, storedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{blob: append([]byte(nil), blob...), storedAt: storedAt}
}

func (s *MemoryStore) StoredAt(ctx context.Context, key string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return time.Time{}, &CacheMissError{Key: key}
	}
	return e.storedAt, nil
}

func (s *MemoryStore) Location(key string) string {
	return "memory://" + key
}

func (s *MemoryStore) Root() string {
	return "memory://"
}

// Len returns the number of stored blobs
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) Close() error {
	return nil
}
