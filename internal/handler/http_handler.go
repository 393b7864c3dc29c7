package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tiendaluna/telemetry/internal/enricher"
)

// EventProducer is the downstream sink for accepted events.
type EventProducer interface {
	ProduceEvent(ctx context.Context, sessionID string, event interface{}) error
}

// RateLimiter gates inbound requests per client.
type RateLimiter interface {
	Allow(ctx context.Context, clientKey string) bool
}

type HTTPHandler struct {
	producer EventProducer
	limiter  RateLimiter
	enricher *enricher.Enricher
}

func NewHTTPHandler(p EventProducer, l RateLimiter, e *enricher.Enricher) *HTTPHandler {
	return &HTTPHandler{
		producer: p,
		limiter:  l,
		enricher: e,
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

type acceptedResponse struct {
	Success bool `json:"success"`
}

// HandleEvent accepts one telemetry event from the SDK's backend forwarder.
// An event without a category or action is malformed and rejected with 400;
// the client never retries, so the rejection is terminal for that event.
func (h *HTTPHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid event data"})
		return
	}
	defer r.Body.Close()

	var event map[string]interface{}
	if err := json.Unmarshal(body, &event); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid event data"})
		return
	}

	category, _ := event["category"].(string)
	action, _ := event["action"].(string)
	if category == "" || action == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid event data"})
		return
	}

	clientIP := clientIP(r)

	if h.limiter != nil && !h.limiter.Allow(r.Context(), clientIP) {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Message: "Rate limit exceeded"})
		return
	}

	if event["event_id"] == nil {
		event["event_id"] = uuid.New().String()
	}

	sessionID, _ := event["sessionId"].(string)

	enriched := h.enricher.Enrich(event, r.Header.Get("User-Agent"), clientIP)

	if err := h.producer.ProduceEvent(r.Context(), sessionID, enriched); err != nil {
		log.Error().Err(err).Str("category", category).Str("action", action).Msg("Failed to produce event")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "Failed to accept event"})
		return
	}

	writeJSON(w, http.StatusAccepted, acceptedResponse{Success: true})
}

func clientIP(r *http.Request) string {
	ip := r.Header.Get("X-Real-IP")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
