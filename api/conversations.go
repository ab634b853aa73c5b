package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/parley-chat/parley/log"
	"github.com/parley-chat/parley/storage"
)

const conversationNotFound = "Conversation not found"

// conversationHandler serves the conversation CRUD endpoints directly off
// the storage engine.
type conversationHandler struct {
	store  storage.Store
	logger log.Logger
}

// createConversationResponse is the body of POST /api/create-conversation.
type createConversationResponse struct {
	SessionID uuid.UUID `json:"sessionId"`
}

// listConversationsResponse is the body of GET /api/get-conversations.
type listConversationsResponse struct {
	SessionIDs []uuid.UUID `json:"sessionIds"`
}

// create handles POST /api/create-conversation.
func (h *conversationHandler) create(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.store.CreateConversation(r.Context())
	if err != nil {
		h.logger.Error("failed to create conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "storage failure", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, createConversationResponse{SessionID: sessionID}, h.logger)
}

// list handles GET /api/get-conversations.
func (h *conversationHandler) list(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.ListConversations(r.Context())
	if err != nil {
		h.logger.Error("failed to list conversations", "error", err)
		writeError(w, http.StatusInternalServerError, "storage failure", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, listConversationsResponse{SessionIDs: ids}, h.logger)
}

// get handles GET /api/get-conversation/{sessionId}.
func (h *conversationHandler) get(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.PathValue("sessionId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed session id", h.logger)
		return
	}

	conv, err := h.store.GetConversation(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to get conversation", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage failure", h.logger)
		return
	}
	if conv == nil {
		writeError(w, http.StatusNotFound, conversationNotFound, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, conv, h.logger)
}

// resetRequest is the body of POST /api/reset.
type resetRequest struct {
	SessionID uuid.UUID `json:"sessionId"`
}

// reset handles POST /api/reset. Deletion is idempotent: 200 whether or not
// a conversation existed.
func (h *conversationHandler) reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", h.logger)
		return
	}

	if _, err := h.store.DeleteConversation(r.Context(), req.SessionID); err != nil {
		h.logger.Error("failed to delete conversation", "session_id", req.SessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "storage failure", h.logger)
		return
	}
	w.WriteHeader(http.StatusOK)
}
