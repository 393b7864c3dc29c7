// Package analytics implements the consent-gated telemetry pipeline. Events
// are withheld until the user grants consent, queued while measurement
// providers bootstrap, and then dispatched in submission order to every
// provider and to the first-party collector. No event ever leaves the
// process before consent, and no failure in here ever reaches the caller.
package analytics

import "sync"

// Config is read once at process start and never changes afterwards. An
// empty provider id disables that provider only; Enabled=false disables the
// whole pipeline regardless of consent.
type Config struct {
	Enabled       bool   `yaml:"enabled"`
	MeasurementID string `yaml:"measurement_id"`
	PixelID       string `yaml:"pixel_id"`
	CollectURL    string `yaml:"collect_url"`
}

// ProviderBridge fans an event out to every bootstrapped measurement
// provider. Initialize must be safe to call more than once.
type ProviderBridge interface {
	Initialize()
	Send(event Event)
}

// BackendForwarder delivers an event to the first-party collection endpoint.
// Submit is fire-and-forget: it returns immediately and delivery failures
// are never reported back.
type BackendForwarder interface {
	Submit(event Event, sessionID string)
}

// ConsentStore persists the consent decision across restarts.
type ConsentStore interface {
	Read() bool
	Write(granted bool)
}

// SessionIdentity supplies the per-session correlation token.
type SessionIdentity interface {
	GetOrCreate() string
}

// Pipeline is the event gate and queue. Construct one instance per process
// and hand it to every call site; there is no package-level singleton.
//
// Lifecycle: Disabled (terminal when Config.Enabled is false) ->
// AwaitingConsent -> ConsentedQueuing -> ConsentedActive. Revoking consent
// drops back to AwaitingConsent and clears the queue, but providers stay
// bootstrapped, so a later re-grant resumes active dispatch directly.
type Pipeline struct {
	enabled   bool
	bridge    ProviderBridge
	forwarder BackendForwarder
	consent   ConsentStore
	session   SessionIdentity

	mu             sync.Mutex
	consentGranted bool
	initialized    bool
	queue          []Event
}

// NewPipeline builds a pipeline and seeds the consent flag from durable
// storage. When Enabled is false every operation is a no-op.
func NewPipeline(cfg Config, bridge ProviderBridge, forwarder BackendForwarder, consent ConsentStore, session SessionIdentity) *Pipeline {
	p := &Pipeline{
		enabled:   cfg.Enabled,
		bridge:    bridge,
		forwarder: forwarder,
		consent:   consent,
		session:   session,
	}
	p.consentGranted = cfg.Enabled && consent.Read()
	return p
}

// SetConsent records the user's decision, persists it, and either starts
// provider initialization (grant) or drops all pending events (revoke).
// Revocation does not unload providers; it only closes the gate.
func (p *Pipeline) SetConsent(granted bool) {
	p.mu.Lock()
	p.consentGranted = granted && p.enabled
	effective := p.consentGranted
	if !effective {
		p.queue = nil
	}
	p.mu.Unlock()

	p.consent.Write(effective)

	if effective {
		p.InitializeIfNeeded()
	}
}

// InitializeIfNeeded bootstraps the provider bridge exactly once, then
// flushes events queued while waiting, in insertion order. Each flushed
// event goes back through TrackEvent so the consent gate is re-applied.
func (p *Pipeline) InitializeIfNeeded() {
	p.mu.Lock()
	if p.initialized || !p.consentGranted || !p.enabled {
		p.mu.Unlock()
		return
	}
	p.bridge.Initialize()
	p.initialized = true
	pending := p.queue
	p.queue = nil
	p.mu.Unlock()

	for _, event := range pending {
		p.TrackEvent(event)
	}
}

// TrackEvent submits an event. Pre-consent it is discarded, pre-initialization
// it is queued, otherwise it is dispatched to the providers and forwarded to
// the collector. The collector delivery is detached; this call never blocks
// on the network and never returns an error.
func (p *Pipeline) TrackEvent(event Event) {
	p.mu.Lock()
	if !p.enabled || !p.consentGranted {
		p.mu.Unlock()
		return
	}
	if !p.initialized {
		p.queue = append(p.queue, event)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.bridge.Send(event)
	p.forwarder.Submit(event, p.session.GetOrCreate())
}

// TrackPageView lowers a page view into its event shape and submits it.
func (p *Pipeline) TrackPageView(pv PageView) {
	p.TrackEvent(pv.Event())
}

// ConsentGranted reports the current gate state.
func (p *Pipeline) ConsentGranted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.consentGranted
}

func (p *Pipeline) pendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}
