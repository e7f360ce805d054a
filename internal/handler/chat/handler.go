package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/objectchat/backend/internal/middleware"
	chatmodel "github.com/zhouzirui/objectchat/backend/internal/model/chat"
	chatservice "github.com/zhouzirui/objectchat/backend/internal/service/chat"
	"github.com/zhouzirui/objectchat/backend/pkg/utils"
)

// Handler serves the chat turn endpoint.
type Handler struct {
	chatSvc *chatservice.Service
}

// New creates the chat handler.
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleTurn)
}

type turnPayload struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	ClientID  string `json:"client_id"`
}

type turnResponse struct {
	Response  string  `json:"response"`
	Object    *string `json:"object"`
	SessionID string  `json:"session_id,omitempty"`
	ClientID  string  `json:"client_id,omitempty"`
}

func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	var payload turnPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	result, err := h.chatSvc.HandleTurn(r.Context(), chatservice.TurnRequest{
		Message:   payload.Message,
		ClientID:  payload.ClientID,
		UserID:    middleware.UserID(r.Context()),
		SessionID: payload.SessionID,
	})
	if err != nil {
		if errors.Is(err, chatmodel.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	resp := turnResponse{
		Response:  result.Reply,
		SessionID: result.SessionID,
		ClientID:  result.ClientID,
	}
	if result.Object != "" {
		resp.Object = &result.Object
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}
