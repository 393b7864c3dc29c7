// Package consent persists the user's tracking consent decision.
package consent

import (
	"github.com/rs/zerolog/log"

	"github.com/tiendaluna/telemetry/kv"
)

// Key is the well-known durable storage key holding the consent decision.
const Key = "analytics_consent"

const grantedSentinel = "granted"
const deniedSentinel = "denied"

// Store reads and writes the consent flag through a durable kv.Store.
// Storage failures never surface: reads default to denied, writes are
// dropped, so a broken storage backend can only ever under-report consent.
type Store struct {
	kv kv.Store
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// Read returns true only when the stored value is exactly the granted
// sentinel. Absent values, garbage, and storage errors all read as denied.
func (s *Store) Read() bool {
	v, err := s.kv.Get(Key)
	if err != nil {
		if err != kv.ErrNotFound {
			log.Debug().Err(err).Msg("Consent read failed, defaulting to denied")
		}
		return false
	}
	return v == grantedSentinel
}

// Write persists the decision. Failures are logged and swallowed.
func (s *Store) Write(granted bool) {
	v := deniedSentinel
	if granted {
		v = grantedSentinel
	}
	if err := s.kv.Set(Key, v); err != nil {
		log.Debug().Err(err).Bool("granted", granted).Msg("Consent write failed")
	}
}
