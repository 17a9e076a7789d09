// Package http provides the HTTP server: the chat and plan API plus a
// minimal embedded chat page.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"medibot/internal/domain/entities"
	"medibot/internal/domain/ports"
	"medibot/internal/domain/usecases"
)

// Server exposes the dialogue controller and planner over HTTP. Sessions are
// explicit values owned here, keyed by their ID; each one is serialized so a
// turn is fully processed before the next is accepted.
type Server struct {
	dialogue *usecases.DialogueController
	planner  *usecases.Planner
	logger   *zap.Logger
	addr     string

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// sessionTTL bounds the registry: sessions idle longer than this are evicted
// when a new session is created.
const sessionTTL = time.Hour

type sessionEntry struct {
	mu       sync.Mutex
	session  *entities.ConversationSession
	lastSeen time.Time
}

// NewServer creates a new HTTP server.
func NewServer(dialogue *usecases.DialogueController, planner *usecases.Planner, logger *zap.Logger, addr string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		dialogue: dialogue,
		planner:  planner,
		logger:   logger,
		addr:     addr,
		sessions: make(map[string]*sessionEntry),
	}
}

// Handler builds the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/plan", s.handlePlan)
	mux.HandleFunc("/api/health", s.handleHealth)
	return corsMiddleware(s.loggingMiddleware(mux))
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 300 * time.Second, // generation calls can be slow
	}

	s.logger.Info("medibot server starting", zap.String("addr", s.addr))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	return server.ListenAndServe()
}

type chatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string                      `json:"session_id"`
	Answer    string                      `json:"answer"`
	Sources   []entities.RetrievedPassage `json:"sources,omitempty"`
}

// handleChat processes one chat turn. An empty session_id starts a fresh
// session; the returned session_id carries the conversation forward.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	entry := s.sessionFor(req.SessionID)

	// Serialize turns per session: one message fully processed before the
	// next is accepted.
	entry.mu.Lock()
	resp, err := s.dialogue.Respond(r.Context(), entry.session, req.Message)
	entry.mu.Unlock()

	if err != nil {
		s.writeTurnError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: entry.session.ID(),
		Answer:    resp.Answer,
		Sources:   resp.Sources,
	})
}

// handlePlan generates a diet/workout plan from a profile.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req entities.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	plan, err := s.planner.GeneratePlan(r.Context(), req)
	if err != nil {
		s.writeTurnError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sessionFor returns the existing session entry or creates a fresh one.
// Unknown IDs get a fresh session rather than an error: server restarts drop
// all sessions by design, and clients just continue on a new one.
func (s *Server) sessionFor(id string) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if id != "" {
		if entry, ok := s.sessions[id]; ok {
			entry.lastSeen = now
			return entry
		}
	}

	s.evictIdleLocked(now)

	session := entities.NewSession()
	entry := &sessionEntry{session: session, lastSeen: now}
	s.sessions[session.ID()] = entry
	return entry
}

func (s *Server) evictIdleLocked(now time.Time) {
	for id, entry := range s.sessions {
		if now.Sub(entry.lastSeen) > sessionTTL {
			delete(s.sessions, id)
		}
	}
}

// writeTurnError maps the error taxonomy onto status codes. All three kinds
// surface directly to the user as a visible message; none are retried.
func (s *Server) writeTurnError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrIndexUnavailable):
		s.logger.Error("index unavailable", zap.Error(err))
		http.Error(w, "The document index is unavailable. Please contact the administrator.", http.StatusBadGateway)
	case errors.Is(err, ports.ErrGeneration):
		s.logger.Error("generation failed", zap.Error(err))
		http.Error(w, "The assistant could not generate a response. Please try again.", http.StatusBadGateway)
	default:
		s.logger.Error("chat turn failed", zap.Error(err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleIndex serves the minimal chat page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Medibot</title>
</head>
<body>
    <div class="container">
        <header>
            <h1>🩺 Medibot</h1>
            <p class="subtitle">Ask your AI medical assistant</p>
        </header>
        <main>
            <div id="messages"></div>
            <form id="chat-form" onsubmit="sendMessage(event)">
                <input type="text" id="chat-input" placeholder="Type your medical question here..." autocomplete="off" required>
                <button type="submit">Send</button>
            </form>
        </main>
    </div>
    <script>
        let sessionId = '';
        async function sendMessage(e) {
            e.preventDefault();
            const input = document.getElementById('chat-input');
            const messages = document.getElementById('messages');
            const message = input.value.trim();
            if (!message) return;
            messages.innerHTML += '<div class="message user">' + escapeHtml(message) + '</div>';
            input.value = '';
            try {
                const res = await fetch('/api/chat', {
                    method: 'POST',
                    headers: {'Content-Type': 'application/json'},
                    body: JSON.stringify({session_id: sessionId, message: message})
                });
                if (!res.ok) {
                    const text = await res.text();
                    messages.innerHTML += '<div class="message error">' + escapeHtml(text) + '</div>';
                    return;
                }
                const data = await res.json();
                sessionId = data.session_id;
                let html = '<div class="message assistant">' + escapeHtml(data.answer);
                if (data.sources && data.sources.length) {
                    html += '<details><summary>Show sources</summary>';
                    for (const s of data.sources) {
                        html += '<p><b>' + escapeHtml(s.source) + '</b>' +
                            (s.page_label ? ' (page ' + escapeHtml(s.page_label) + ')' : '') +
                            '<br><code>' + escapeHtml(s.excerpt) + '</code></p>';
                    }
                    html += '</details>';
                }
                html += '</div>';
                messages.innerHTML += html;
            } catch (err) {
                messages.innerHTML += '<div class="message error">Connection error</div>';
            }
        }
        function escapeHtml(text) {
            const div = document.createElement('div');
            div.textContent = text;
            return div.innerHTML;
        }
    </script>
</body>
</html>`

// loggingMiddleware logs each request with method, path and duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
