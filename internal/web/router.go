package web

import (
	"net/http"

	"tunevault/internal/metrics"
	"tunevault/internal/tracks"
	"tunevault/internal/users"
	"tunevault/middleware"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

// Router owns the HTTP surface: the explicit (method, path) table plus the
// middleware chain around it.
type Router struct {
	Auth         *users.AuthHandlers
	Tracks       *tracks.TrackHandlers
	Metrics      *metrics.Handlers
	Middleware   *middleware.Middleware
	LoginLimiter *middleware.LoginLimiter
	Counters     *metrics.Counters
	Logger       *log.Logger
}

// SetupRoutes builds the route table
func (rt *Router) SetupRoutes() http.Handler {
	r := mux.NewRouter()

	// Open endpoints
	r.HandleFunc("/api/auth/login", rt.LoginLimiter.Wrap(rt.Auth.Login)).Methods("POST")
	r.HandleFunc("/api/auth/register", rt.Auth.Register).Methods("POST")
	r.HandleFunc("/api/auth/verify", rt.Auth.Verify).Methods("GET")
	r.HandleFunc("/healthz", rt.Health).Methods("GET")
	r.HandleFunc("/readyz", rt.Ready).Methods("GET")
	r.HandleFunc("/metrics", rt.Metrics.Expose).Methods("GET")
	r.HandleFunc("/", rt.Landing).Methods("GET")

	// Protected endpoints (the access gate matches these by prefix)
	r.HandleFunc("/api/tracks", rt.Tracks.List).Methods("GET")
	r.HandleFunc("/api/stream/{trackId}", rt.Tracks.StreamAudio).Methods("GET")
	r.HandleFunc("/api/cover/{trackId}", rt.Tracks.ServeCover).Methods("GET")
	r.HandleFunc("/api/event", rt.Metrics.ReportEvent).Methods("POST")

	// Admin endpoints
	r.HandleFunc("/api/admin/upload", rt.Middleware.RequireAdmin(rt.Tracks.Upload)).Methods("POST")

	// Middleware chain, outermost first: counting, logging, CORS, gate.
	var handler http.Handler = r
	handler = rt.Middleware.AccessGate(handler)
	handler = middleware.SetupCORS()(handler)
	handler = middleware.LoggingMiddleware(rt.Logger)(handler)
	handler = rt.Counters.CountRequests(handler)

	return handler
}

// Health handles GET /healthz
func (rt *Router) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// Ready handles GET /readyz
func (rt *Router) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ready"))
}

// Landing handles GET /
func (rt *Router) Landing(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("tunevault"))
}
