package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/parley-chat/parley/log"
)

// Authenticator establishes an authenticated identity for a request.
// It is an external collaborator: the session layer trusts whatever
// identity the authenticator accepts.
type Authenticator interface {
	// Authenticate returns nil when the request carries a valid identity.
	Authenticate(r *http.Request) error
}

// ErrUnauthenticated is returned by authenticators for requests without a
// valid identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// TokenAuthenticator accepts requests carrying a fixed bearer token.
type TokenAuthenticator struct {
	token string
}

// NewTokenAuthenticator creates an authenticator for the given token.
func NewTokenAuthenticator(token string) *TokenAuthenticator {
	return &TokenAuthenticator{token: token}
}

// Authenticate checks the Authorization header for the expected token.
func (a *TokenAuthenticator) Authenticate(r *http.Request) error {
	header := r.Header.Get("Authorization")
	value, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ErrUnauthenticated
	}
	if subtle.ConstantTimeCompare([]byte(value), []byte(a.token)) != 1 {
		return ErrUnauthenticated
	}
	return nil
}

// authMiddleware enforces the authenticator on API routes.
// Conversation creation stays open: a client needs a session before it has
// anything to authenticate against in the simplest deployments.
func authMiddleware(auth Authenticator, logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			exempt := r.URL.Path == "/healthz" || r.URL.Path == "/api/create-conversation"
			if !exempt {
				if err := auth.Authenticate(r); err != nil {
					writeError(w, http.StatusUnauthorized, "unauthenticated", logger)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
