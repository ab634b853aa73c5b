package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/parley-chat/parley/chat"
	"github.com/parley-chat/parley/log"
)

// Request bodies are capped well above any reasonable chat message.
const maxBodyBytes = 1 << 20

// chatHandler serves the endpoints that touch the model-call collaborator.
type chatHandler struct {
	service *chat.Service
	logger  log.Logger
}

// sendMessageRequest is the body of POST /api/send-message.
type sendMessageRequest struct {
	SessionID uuid.UUID `json:"sessionId"`
	Message   string    `json:"message"`
}

// helloResponse is the body of GET /api/hello.
type helloResponse struct {
	Text string `json:"text"`
}

// send handles POST /api/send-message.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", h.logger)
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message text is required", h.logger)
		return
	}

	conv, err := h.service.Send(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.logger.Error("send failed", "session_id", req.SessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to send message", h.logger)
		return
	}
	if conv == nil {
		writeError(w, http.StatusNotFound, conversationNotFound, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, conv, h.logger)
}

// hello handles GET /api/hello: a one-shot model round trip.
func (h *chatHandler) hello(w http.ResponseWriter, r *http.Request) {
	text, err := h.service.Hello(r.Context())
	if err != nil {
		h.logger.Error("hello failed", "error", err)
		writeError(w, http.StatusInternalServerError, "model call failed", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, helloResponse{Text: text}, h.logger)
}

// decodeJSON decodes a request body into dst, rejecting oversized bodies
// and trailing garbage.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON body")
	}
	return nil
}
