// Package kv provides the key-value storage seam the telemetry SDK persists
// through. Durable stores survive process restarts; session stores live only
// as long as the store instance itself.
package kv

// Store is a minimal get/set surface over a string keyspace. Implementations
// may fail on access; callers decide what the failure degrades to.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// MemoryStore is a session-scoped Store. Its contents last exactly as long as
// the instance, which makes it the natural backing for per-session state.
type MemoryStore struct {
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.values[key] = value
	return nil
}
