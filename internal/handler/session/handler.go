package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zhouzirui/objectchat/backend/internal/middleware"
	chatmodel "github.com/zhouzirui/objectchat/backend/internal/model/chat"
	"github.com/zhouzirui/objectchat/backend/internal/model/persona"
	"github.com/zhouzirui/objectchat/backend/pkg/utils"
)

// Store is the persistence surface the session endpoints need, satisfied by
// *sqlite.Store.
type Store interface {
	CreateSession(ctx context.Context, s chatmodel.Session) error
	GetSession(ctx context.Context, sessionID, userID string) (chatmodel.Session, error)
	ListSessions(ctx context.Context, userID string) ([]chatmodel.Session, error)
	DeleteSession(ctx context.Context, sessionID, userID string) error
	ReplaceMessages(ctx context.Context, sessionID string, msgs []chatmodel.Message) error
	Transcript(ctx context.Context, sessionID string) ([]chatmodel.Message, error)
}

// Handler serves the authenticated session endpoints.
type Handler struct {
	store Store
}

// New creates the session handler.
func New(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleSave)
	r.Get("/sessions", h.handleList)
	r.Get("/sessions/{sessionID}", h.handleLoad)
	r.Delete("/sessions/{sessionID}", h.handleDelete)
}

type turnPayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type savePayload struct {
	ObjectName string        `json:"object_name"`
	SessionID  string        `json:"session_id"`
	Messages   []turnPayload `json:"messages"`
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		respondFailure(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var payload savePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.ObjectName == "" || len(payload.Messages) == 0 {
		respondFailure(w, http.StatusBadRequest, "missing required data")
		return
	}

	sessionID := payload.SessionID
	if sessionID == "" {
		now := time.Now().UTC()
		session := chatmodel.Session{
			ID:         uuid.NewString(),
			UserID:     userID,
			ObjectName: payload.ObjectName,
			Title:      "Chat with " + payload.ObjectName,
			Persona:    resolveStoredPersona(payload.ObjectName),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := h.store.CreateSession(r.Context(), session); err != nil {
			respondFailure(w, http.StatusInternalServerError, "failed to save chat")
			return
		}
		sessionID = session.ID
	} else {
		// Ownership check before any mutation.
		if _, err := h.store.GetSession(r.Context(), sessionID, userID); err != nil {
			if errors.Is(err, chatmodel.ErrSessionNotFound) {
				respondFailure(w, http.StatusNotFound, "session not found")
				return
			}
			respondFailure(w, http.StatusInternalServerError, "failed to save chat")
			return
		}
	}

	msgs := make([]chatmodel.Message, len(payload.Messages))
	now := time.Now().UTC()
	for i, m := range payload.Messages {
		role := m.Role
		if role == "" {
			role = chatmodel.RoleUser
		}
		msgs[i] = chatmodel.Message{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Role:      role,
			Content:   m.Content,
			CreatedAt: now,
		}
	}

	if err := h.store.ReplaceMessages(r.Context(), sessionID, msgs); err != nil {
		respondFailure(w, http.StatusInternalServerError, "failed to save chat")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "session_id": sessionID})
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		respondFailure(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.store.GetSession(r.Context(), sessionID, userID)
	if err != nil {
		if errors.Is(err, chatmodel.ErrSessionNotFound) {
			respondFailure(w, http.StatusNotFound, "chat session not found")
			return
		}
		respondFailure(w, http.StatusInternalServerError, "failed to load chat")
		return
	}

	messages, err := h.store.Transcript(r.Context(), sessionID)
	if err != nil {
		respondFailure(w, http.StatusInternalServerError, "failed to load chat")
		return
	}

	turns := make([]turnPayload, len(messages))
	for i, msg := range messages {
		turns[i] = turnPayload{Role: msg.Role, Content: msg.Content}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"object_name": session.ObjectName,
		"messages":    turns,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		respondFailure(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sessions, err := h.store.ListSessions(r.Context(), userID)
	if err != nil {
		respondFailure(w, http.StatusInternalServerError, "failed to list chats")
		return
	}
	if sessions == nil {
		sessions = []chatmodel.Session{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"success": true, "sessions": sessions})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		respondFailure(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if err := h.store.DeleteSession(r.Context(), sessionID, userID); err != nil {
		if errors.Is(err, chatmodel.ErrSessionNotFound) {
			respondFailure(w, http.StatusNotFound, "chat session not found")
			return
		}
		respondFailure(w, http.StatusInternalServerError, "failed to delete chat")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// resolveStoredPersona freezes a persona for sessions created through the
// save endpoint without touching the completion provider.
func resolveStoredPersona(objectName string) persona.Persona {
	if p, ok := persona.Builtin(objectName); ok {
		return p
	}
	return persona.Fallback(objectName)
}

func respondFailure(w http.ResponseWriter, status int, message string) {
	utils.RespondJSON(w, status, map[string]any{"success": false, "error": message})
}
