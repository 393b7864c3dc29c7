// Package forwarder delivers events to the first-party collection endpoint.
package forwarder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tiendaluna/telemetry/analytics"
)

// collectedEvent is the wire shape of a forwarded event: the event fields
// plus the dispatch-time timestamp and the session correlation id.
type collectedEvent struct {
	Category  analytics.Category `json:"category"`
	Action    string             `json:"action"`
	Label     string             `json:"label,omitempty"`
	Value     float64            `json:"value,omitempty"`
	Metadata  map[string]any     `json:"metadata,omitempty"`
	Timestamp string             `json:"timestamp"`
	SessionID string             `json:"sessionId"`
}

// Forwarder POSTs events to the collector. Delivery is best-effort: a
// failed POST is logged and the event is lost. There is deliberately no
// retry or backoff; telemetry loss is preferable to client-side retry
// storms.
type Forwarder struct {
	collectURL string
	client     *http.Client
	inflight   sync.WaitGroup
}

func New(collectURL string) *Forwarder {
	return &Forwarder{
		collectURL: collectURL,
		client:     http.DefaultClient,
	}
}

// Submit delivers the event in a detached goroutine. The caller never
// observes completion or failure.
func (f *Forwarder) Submit(event analytics.Event, sessionID string) {
	f.inflight.Add(1)
	go func() {
		defer f.inflight.Done()
		if err := f.Send(event, sessionID); err != nil {
			log.Warn().Err(err).Str("action", event.Action).Msg("Failed to forward event to collector")
		}
	}()
}

// Send delivers the event synchronously. The timestamp is generated here,
// at send time, not when the event was created.
func (f *Forwarder) Send(event analytics.Event, sessionID string) error {
	body, err := json.Marshal(collectedEvent{
		Category:  event.Category,
		Action:    event.Action,
		Label:     event.Label,
		Value:     event.Value,
		Metadata:  event.Metadata,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		SessionID: sessionID,
	})
	if err != nil {
		return err
	}

	resp, err := f.client.Post(f.collectURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("collector: status %d", resp.StatusCode)
	}
	return nil
}

// Flush waits for all detached deliveries to finish. Used on shutdown so
// in-flight events are not cut off mid-request.
func (f *Forwarder) Flush() {
	f.inflight.Wait()
}
