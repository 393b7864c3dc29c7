// Package session produces the correlation id that groups all events sent
// from one browsing session.
package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tiendaluna/telemetry/kv"
)

// Key is the well-known session storage key holding the correlation token.
const Key = "analytics_session_id"

// Identity hands out a stable per-session token backed by session-scoped
// storage. If storage is unavailable the token still gets generated and
// cached in memory, so one process never emits two different ids.
type Identity struct {
	kv     kv.Store
	mu     sync.Mutex
	cached string
}

func NewIdentity(store kv.Store) *Identity {
	return &Identity{kv: store}
}

// GetOrCreate returns the session token, generating and persisting a fresh
// one on first use. Repeated calls within a session return the same value.
func (i *Identity) GetOrCreate() string {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.cached != "" {
		return i.cached
	}

	if v, err := i.kv.Get(Key); err == nil && v != "" {
		i.cached = v
		return v
	}

	token := uuid.New().String()
	if err := i.kv.Set(Key, token); err != nil {
		log.Debug().Err(err).Msg("Session id write failed, keeping in-memory token")
	}
	i.cached = token
	return token
}
