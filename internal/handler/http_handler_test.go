package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendaluna/telemetry/internal/enricher"
)

type fakeProducer struct {
	sessionIDs []string
	events     []map[string]interface{}
	err        error
}

func (p *fakeProducer) ProduceEvent(_ context.Context, sessionID string, event interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.sessionIDs = append(p.sessionIDs, sessionID)
	p.events = append(p.events, event.(map[string]interface{}))
	return nil
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(context.Context, string) bool { return false }

func newTestHandler() (*HTTPHandler, *fakeProducer) {
	p := &fakeProducer{}
	return NewHTTPHandler(p, nil, enricher.NewEnricher("")), p
}

func post(h *HTTPHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/analytics/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36")
	w := httptest.NewRecorder()
	h.HandleEvent(w, req)
	return w
}

func TestHandleEventAcceptsValidEvent(t *testing.T) {
	h, p := newTestHandler()

	w := post(h, `{"category":"cart","action":"add_to_cart","label":"SKU1","timestamp":"2026-08-31T12:00:00Z","sessionId":"sess-42"}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, p.events, 1)
	assert.Equal(t, []string{"sess-42"}, p.sessionIDs)

	event := p.events[0]
	assert.Equal(t, "cart", event["category"])
	assert.Equal(t, "add_to_cart", event["action"])
	assert.NotEmpty(t, event["event_id"], "missing event id is assigned")
	assert.Equal(t, "Chrome", event["browser"])
	assert.Equal(t, "desktop", event["device_type"])
}

func TestHandleEventRejectsMissingCategoryOrAction(t *testing.T) {
	h, p := newTestHandler()

	for _, body := range []string{
		`{"action":"add_to_cart"}`,
		`{"category":"cart"}`,
		`{"category":"","action":""}`,
	} {
		w := post(h, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid event data", resp["message"])
	}
	assert.Empty(t, p.events)
}

func TestHandleEventRejectsMalformedJSON(t *testing.T) {
	h, p := newTestHandler()

	w := post(h, `{not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, p.events)
}

func TestHandleEventRateLimited(t *testing.T) {
	p := &fakeProducer{}
	h := NewHTTPHandler(p, denyAllLimiter{}, enricher.NewEnricher(""))

	w := post(h, `{"category":"cart","action":"add_to_cart"}`)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Empty(t, p.events)
}

func TestHandleEventProducerFailure(t *testing.T) {
	p := &fakeProducer{err: assert.AnError}
	h := NewHTTPHandler(p, nil, enricher.NewEnricher(""))

	w := post(h, `{"category":"cart","action":"add_to_cart"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
