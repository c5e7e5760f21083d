package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/FieldsBarnett/mediocre-mastermind/internal/chat"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/events"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Publisher emits an event onto the chat stream. Publishing happens after
// the store write commits; a publish failure is logged, never surfaced to
// the client, and the stored message stays.
type Publisher func(subject string, data []byte) error

type Server struct {
	store   store.ChatStore
	publish Publisher
	router  chi.Router
	port    int
}

func NewServer(s store.ChatStore, publish Publisher, port int) *Server {
	srv := &Server{
		store:   s,
		publish: publish,
		port:    port,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", srv.handleHealth)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/messages", srv.handleListMessages)
			r.Post("/messages", srv.handleSendMessage)
			r.Post("/messages/batch", srv.handleSendBatch)
			r.Get("/typing", srv.handleListTyping)
			r.Delete("/", srv.handleClearSession)
		})
	})

	srv.router = r
	return srv
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("starting HTTP API", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "mastermind",
	})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	msgs, err := s.store.ListMessages(r.Context(), sessionID)
	if err != nil {
		slog.Error("list messages failed", "session_id", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}

	writeJSON(w, http.StatusOK, msgs)
}

type sendMessageRequest struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.Author == "" || req.Body == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "author and body are required"})
		return
	}

	if err := s.store.AppendMessage(r.Context(), req.Author, req.Body, sessionID); err != nil {
		slog.Error("append message failed", "session_id", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	if req.Author == chat.UserAuthor {
		s.publishUserMessage(sessionID, req.Body)
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "stored"})
}

func (s *Server) publishUserMessage(sessionID, body string) {
	payload, err := json.Marshal(events.UserMessage{
		EventID:   uuid.New().String(),
		SessionID: sessionID,
		Author:    chat.UserAuthor,
		Body:      body,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		slog.Error("marshal user-message event", "session_id", sessionID, "error", err)
		return
	}
	if err := s.publish(events.SubjectUserMessage, payload); err != nil {
		slog.Error("publish user-message event", "session_id", sessionID, "error", err)
	}
}

type sendBatchRequest struct {
	Messages []sendMessageRequest `json:"messages"`
}

// handleSendBatch bulk-inserts messages with no pacing and no orchestration
// trigger, matching the store's non-paced compatibility path.
func (s *Server) handleSendBatch(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req sendBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "messages are required"})
		return
	}

	batch := make([]chat.Message, len(req.Messages))
	for i, m := range req.Messages {
		if m.Author == "" || m.Body == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "author and body are required"})
			return
		}
		batch[i] = chat.Message{Author: m.Author, Body: m.Body, SessionID: sessionID}
	}

	if err := s.store.AppendBatch(r.Context(), batch); err != nil {
		slog.Error("append batch failed", "session_id", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"status": "stored", "count": len(batch)})
}

func (s *Server) handleListTyping(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	authors, err := s.store.ListTyping(r.Context(), sessionID)
	if err != nil {
		slog.Error("list typing failed", "session_id", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if authors == nil {
		authors = []string{}
	}

	writeJSON(w, http.StatusOK, authors)
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := s.store.ClearSession(r.Context(), sessionID); err != nil {
		slog.Error("clear session failed", "session_id", sessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
