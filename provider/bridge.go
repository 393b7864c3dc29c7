// Package provider loads external measurement providers and fans events out
// to them. Providers are reached the same way a browser tag would reach
// them: fetch the vendor script once to bootstrap, then hit the vendor's
// collect endpoint per event. Delivery is fire-and-forget; no provider ever
// acknowledges an event.
package provider

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/tiendaluna/telemetry/analytics"
)

// Provider is one external measurement service.
type Provider interface {
	Name() string
	Bootstrap() error
	Send(event analytics.Event) error
}

// Bridge owns the configured providers. Initialize bootstraps each one
// asynchronously exactly once; Send skips any provider whose bootstrap has
// not completed yet, with no queuing or retry per provider.
type Bridge struct {
	providers []Provider
	ready     []atomic.Bool
	once      sync.Once
}

// NewBridge builds the bridge from the configured provider ids. A provider
// with an empty id is not constructed at all.
func NewBridge(cfg analytics.Config) *Bridge {
	var providers []Provider
	if cfg.MeasurementID != "" {
		providers = append(providers, NewGtag(cfg.MeasurementID))
	}
	if cfg.PixelID != "" {
		providers = append(providers, NewPixel(cfg.PixelID))
	}
	return NewBridgeFromProviders(providers...)
}

// NewBridgeFromProviders builds a bridge over an explicit provider set.
func NewBridgeFromProviders(providers ...Provider) *Bridge {
	return &Bridge{
		providers: providers,
		ready:     make([]atomic.Bool, len(providers)),
	}
}

// Initialize starts each provider's bootstrap in its own goroutine. Calling
// it again is a no-op; scripts already fetched are never fetched twice. A
// hanging bootstrap only affects its own provider.
func (b *Bridge) Initialize() {
	b.once.Do(func() {
		for i, p := range b.providers {
			go func(i int, p Provider) {
				if err := p.Bootstrap(); err != nil {
					log.Warn().Err(err).Str("provider", p.Name()).Msg("Provider bootstrap failed")
					return
				}
				b.ready[i].Store(true)
				log.Info().Str("provider", p.Name()).Msg("Provider initialized")
			}(i, p)
		}
	})
}

// Ready reports whether every configured provider finished bootstrapping.
func (b *Bridge) Ready() bool {
	for i := range b.ready {
		if !b.ready[i].Load() {
			return false
		}
	}
	return true
}

// Send forwards the event to every bootstrapped provider, best-effort.
func (b *Bridge) Send(event analytics.Event) {
	for i, p := range b.providers {
		if !b.ready[i].Load() {
			continue
		}
		if err := p.Send(event); err != nil {
			log.Warn().Err(err).Str("provider", p.Name()).Str("action", event.Action).Msg("Provider send failed")
		}
	}
}
