// Package api exposes the conversation service over HTTP.
//
// Endpoints map 1:1 onto the storage and orchestrator operations; the
// surface performs existence checks and maps results to status codes.
package api

import (
	"errors"
	"net/http"

	"github.com/parley-chat/parley/chat"
	"github.com/parley-chat/parley/log"
	"github.com/parley-chat/parley/storage"
)

// ServerConfig contains the dependencies for the API server.
type ServerConfig struct {
	Logger        log.Logger
	Store         storage.Store // required
	Chat          *chat.Service // required
	Authenticator Authenticator // optional: nil disables authentication
}

// Server is the JSON API HTTP server.
type Server struct {
	handler http.Handler
}

// NewServer creates an API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("storage engine is required")
	}
	if cfg.Chat == nil {
		return nil, errors.New("chat service is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	convh := &conversationHandler{store: cfg.Store, logger: logger}
	chath := &chatHandler{service: cfg.Chat, logger: logger}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/create-conversation", convh.create)
	mux.HandleFunc("GET /api/get-conversations", convh.list)
	mux.HandleFunc("GET /api/get-conversation/{sessionId}", convh.get)
	mux.HandleFunc("POST /api/send-message", chath.send)
	mux.HandleFunc("POST /api/reset", convh.reset)
	mux.HandleFunc("GET /api/hello", chath.hello)

	mux.HandleFunc("GET /healthz", healthz)

	// Middleware stack (outermost first): Recovery → Logging → Auth → Routes
	var handler http.Handler = mux
	if cfg.Authenticator != nil {
		handler = authMiddleware(cfg.Authenticator, logger)(handler)
	}
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	return &Server{handler: handler}, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}
