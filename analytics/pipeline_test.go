package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBridge struct {
	initCalls int
	sent      []Event
}

func (b *fakeBridge) Initialize() {
	b.initCalls++
}

func (b *fakeBridge) Send(event Event) {
	b.sent = append(b.sent, event)
}

type fakeForwarder struct {
	events     []Event
	sessionIDs []string
}

func (f *fakeForwarder) Submit(event Event, sessionID string) {
	f.events = append(f.events, event)
	f.sessionIDs = append(f.sessionIDs, sessionID)
}

type fakeConsent struct {
	stored bool
	writes []bool
}

func (c *fakeConsent) Read() bool {
	return c.stored
}

func (c *fakeConsent) Write(granted bool) {
	c.stored = granted
	c.writes = append(c.writes, granted)
}

type fakeSession struct{ id string }

func (s *fakeSession) GetOrCreate() string {
	return s.id
}

func newTestPipeline(enabled bool) (*Pipeline, *fakeBridge, *fakeForwarder, *fakeConsent) {
	bridge := &fakeBridge{}
	fwd := &fakeForwarder{}
	consent := &fakeConsent{}
	p := NewPipeline(Config{Enabled: enabled}, bridge, fwd, consent, &fakeSession{id: "sess-1"})
	return p, bridge, fwd, consent
}

func TestTrackEventWithoutConsentIsDiscarded(t *testing.T) {
	p, bridge, fwd, _ := newTestPipeline(true)

	p.TrackEvent(Event{Category: CategoryCart, Action: "add_to_cart"})
	p.TrackEvent(Event{Category: CategorySearch, Action: "search"})

	assert.Empty(t, bridge.sent)
	assert.Empty(t, fwd.events)
	assert.Zero(t, p.pendingCount(), "pre-consent events must not be queued")
}

func TestQueuedEventsFlushInOrder(t *testing.T) {
	bridge := &fakeBridge{}
	fwd := &fakeForwarder{}
	consent := &fakeConsent{}
	p := &Pipeline{
		enabled:        true,
		bridge:         bridge,
		forwarder:      fwd,
		consent:        consent,
		session:        &fakeSession{id: "sess-1"},
		consentGranted: true,
	}

	p.TrackEvent(Event{Category: CategoryProduct, Action: "a"})
	p.TrackEvent(Event{Category: CategoryProduct, Action: "b"})
	p.TrackEvent(Event{Category: CategoryProduct, Action: "c"})
	require.Equal(t, 3, p.pendingCount())
	require.Empty(t, bridge.sent)

	p.InitializeIfNeeded()

	require.Len(t, bridge.sent, 3)
	assert.Equal(t, "a", bridge.sent[0].Action)
	assert.Equal(t, "b", bridge.sent[1].Action)
	assert.Equal(t, "c", bridge.sent[2].Action)
	assert.Zero(t, p.pendingCount())

	require.Len(t, fwd.events, 3)
	assert.Equal(t, []string{"sess-1", "sess-1", "sess-1"}, fwd.sessionIDs)
}

func TestRevocationClearsQueueWithoutReplay(t *testing.T) {
	bridge := &fakeBridge{}
	fwd := &fakeForwarder{}
	consent := &fakeConsent{}
	p := NewPipeline(Config{Enabled: true}, bridge, fwd, consent, &fakeSession{id: "sess-1"})

	p.SetConsent(true)
	require.Equal(t, 1, bridge.initCalls)

	// Revoke, then re-grant. Nothing replays and the bridge is not
	// re-initialized.
	p.SetConsent(false)
	assert.Zero(t, p.pendingCount())
	assert.False(t, p.ConsentGranted())

	p.SetConsent(true)
	assert.Equal(t, 1, bridge.initCalls, "providers must not be re-initialized on re-grant")
	assert.Empty(t, bridge.sent)

	// Re-grant goes straight to active dispatch, no queuing phase.
	p.TrackEvent(Event{Category: CategoryCart, Action: "add_to_cart"})
	require.Len(t, bridge.sent, 1)
}

func TestRevocationDropsPendingEvents(t *testing.T) {
	bridge := &fakeBridge{}
	fwd := &fakeForwarder{}
	consent := &fakeConsent{}
	p := &Pipeline{
		enabled:        true,
		bridge:         bridge,
		forwarder:      fwd,
		consent:        consent,
		session:        &fakeSession{id: "sess-1"},
		consentGranted: true,
	}

	p.TrackEvent(Event{Category: CategoryBlog, Action: "read"})
	p.TrackEvent(Event{Category: CategoryBlog, Action: "share"})
	require.Equal(t, 2, p.pendingCount())

	p.SetConsent(false)
	assert.Zero(t, p.pendingCount())

	p.SetConsent(true)
	p.InitializeIfNeeded()
	assert.Empty(t, bridge.sent, "cleared events must not be replayed")
}

func TestDisabledPipelineIsInert(t *testing.T) {
	p, bridge, fwd, consent := newTestPipeline(false)

	p.SetConsent(true)
	p.InitializeIfNeeded()
	p.TrackEvent(Event{Category: CategoryUser, Action: "login"})
	p.TrackPageView(PageView{Path: "/", Title: "Home"})

	assert.False(t, p.ConsentGranted())
	assert.Zero(t, bridge.initCalls)
	assert.Empty(t, bridge.sent)
	assert.Empty(t, fwd.events)
	// The denied decision is still persisted.
	assert.Equal(t, []bool{false}, consent.writes)
}

func TestSetConsentPersistsDecision(t *testing.T) {
	p, _, _, consent := newTestPipeline(true)

	p.SetConsent(true)
	p.SetConsent(false)
	p.SetConsent(true)

	assert.Equal(t, []bool{true, false, true}, consent.writes)
}

func TestConsentSeededFromStorage(t *testing.T) {
	bridge := &fakeBridge{}
	consent := &fakeConsent{stored: true}
	p := NewPipeline(Config{Enabled: true}, bridge, &fakeForwarder{}, consent, &fakeSession{id: "s"})

	assert.True(t, p.ConsentGranted())

	p.TrackEvent(Event{Category: CategoryTherapy, Action: "book"})
	assert.Equal(t, 1, p.pendingCount(), "consented but uninitialized events queue")
}

func TestConsentedActiveDispatch(t *testing.T) {
	p, bridge, fwd, _ := newTestPipeline(true)

	p.SetConsent(true)
	p.TrackEvent(Event{Category: CategoryCart, Action: "add_to_cart", Label: "SKU1"})

	require.Len(t, bridge.sent, 1)
	assert.Equal(t, CategoryCart, bridge.sent[0].Category)
	assert.Equal(t, "add_to_cart", bridge.sent[0].Action)
	assert.Equal(t, "SKU1", bridge.sent[0].Label)

	require.Len(t, fwd.events, 1)
	assert.Equal(t, "SKU1", fwd.events[0].Label)
	assert.Equal(t, "sess-1", fwd.sessionIDs[0])
}

func TestTrackPageViewRoutesThroughGate(t *testing.T) {
	p, bridge, _, _ := newTestPipeline(true)

	// Denied: discarded.
	p.TrackPageView(PageView{Path: "/tienda", Title: "Tienda"})
	assert.Empty(t, bridge.sent)

	p.SetConsent(true)
	p.TrackPageView(PageView{Path: "/tienda", Title: "Tienda", Referrer: "https://x"})

	require.Len(t, bridge.sent, 1)
	assert.Equal(t, CategoryPageView, bridge.sent[0].Category)
	assert.Equal(t, "/tienda", bridge.sent[0].Label)
}
