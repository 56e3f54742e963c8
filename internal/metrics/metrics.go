package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"tunevault/models"
)

// Counters is the process-local event counter set. It is constructed once
// in main and injected wherever increments happen; there is no package
// state. Counts reset on restart.
type Counters struct {
	Requests atomic.Int64
	Plays    atomic.Int64
	Skips    atomic.Int64
	Uploads  atomic.Int64
}

// NewCounters creates a zeroed counter set
func NewCounters() *Counters {
	return &Counters{}
}

// CountRequests increments the request counter for every inbound request
func (c *Counters) CountRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.Requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

// Handlers serves the event-reporting and exposition endpoints
type Handlers struct {
	Counters *Counters
}

// NewHandlers creates the metrics handler set
func NewHandlers(counters *Counters) *Handlers {
	return &Handlers{Counters: counters}
}

type eventRequest struct {
	Type models.EEventType `json:"type"`
}

// ReportEvent handles POST /api/event. Unknown event types are accepted
// and ignored.
func (h *Handlers) ReportEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var event eventRequest
	if err := json.NewDecoder(r.Body).Decode(&event); err == nil {
		switch event.Type {
		case models.EventPlay:
			h.Counters.Plays.Add(1)
		case models.EventSkip:
			h.Counters.Skips.Add(1)
		}
	}

	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// Expose handles GET /metrics with a plain-text rendering of the counters
func (h *Handlers) Expose(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "requests_total %d\n", h.Counters.Requests.Load())
	fmt.Fprintf(w, "play_events_total %d\n", h.Counters.Plays.Load())
	fmt.Fprintf(w, "skip_events_total %d\n", h.Counters.Skips.Load())
	fmt.Fprintf(w, "uploads_total %d\n", h.Counters.Uploads.Load())
}
