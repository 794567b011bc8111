package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"flashkit/flash"
	"flashkit/session"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// Server is a small demo app for the flash middleware. Each client host
// gets its own in-memory session keyed by remote address, which is enough
// to follow a post/redirect/get cycle from a browser or curl. Clients
// behind the same address share a session.
type Server struct {
	logger *zap.Logger
	router *mux.Router
	server *http.Server
	flash  *flash.Middleware

	mu       sync.Mutex
	sessions map[string]*session.Values
}

func NewServer(mw *flash.Middleware, logger *zap.Logger) *Server {
	s := &Server{
		logger:   logger,
		router:   mux.NewRouter(),
		flash:    mw,
		sessions: make(map[string]*session.Values),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests, s.attachSession, s.flash.Handler)

	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
	s.router.HandleFunc("/flash", s.handleFlash).Methods("POST")
	s.router.HandleFunc("/flash/keep", s.handleKeep).Methods("POST")
	s.router.HandleFunc("/flash/clear", s.handleClear).Methods("POST")
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start launches the HTTP server
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("Web server listening", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set(requestIDHeader, requestID)

		m := httpsnoop.CaptureMetrics(next, w, r)

		s.logger.Info("Request completed",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", m.Code),
			zap.Int64("latency_ms", m.Duration.Milliseconds()))
	})
}

func (s *Server) attachSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := session.NewContext(r.Context(), s.sessionFor(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFor returns the demo session for the client host of r.
func (s *Server) sessionFor(r *http.Request) *session.Values {
	client := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		client = host
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[client]
	if !ok {
		sess = session.New()
		s.sessions[client] = sess
	}
	return sess
}

func (s *Server) messages(w http.ResponseWriter, r *http.Request) (flash.Messages, bool) {
	msgs, ok := s.flash.FromRequest(r)
	if !ok {
		s.logger.Error("Flash messages missing from request", zap.String("path", r.URL.Path))
		http.Error(w, "Flash messages unavailable", http.StatusInternalServerError)
		return nil, false
	}
	return msgs, true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	msgs, ok := s.messages(w, r)
	if !ok {
		return
	}

	data := map[string]interface{}{
		"messages": msgs.All(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode messages", zap.Error(err))
	}
}

func (s *Server) handleFlash(w http.ResponseWriter, r *http.Request) {
	msgs, ok := s.messages(w, r)
	if !ok {
		return
	}

	name := r.FormValue("name")
	if name == "" {
		msgs.Flash("error", "Error: name is required.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	value := r.FormValue("value")

	now := r.FormValue("now") == "1"
	hops := 1
	if raw := r.FormValue("hops"); raw != "" {
		if now {
			http.Error(w, "hops cannot be combined with now", http.StatusBadRequest)
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid hops", http.StatusBadRequest)
			return
		}
		hops = n
	}

	if now {
		msgs.FlashNow(name, value)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := msgs.FlashFor(name, value, hops); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleKeep(w http.ResponseWriter, r *http.Request) {
	msgs, ok := s.messages(w, r)
	if !ok {
		return
	}
	msgs.Prolong()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	msgs, ok := s.messages(w, r)
	if !ok {
		return
	}

	if name := r.FormValue("name"); name != "" {
		msgs.Clear(name)
	} else {
		msgs.ClearAll()
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
