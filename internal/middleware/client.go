// Package middleware provides HTTP middlewares for client identity and logging.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey string

const clientKey ctxKey = "client"

// ClientCookie names the cookie that identifies a browser.
const ClientCookie = "portal_client"

// ClientIdentity gives every request a client id.
//
// The id is read from the ClientCookie cookie. When the cookie is missing or
// does not hold a UUID, a new random id is issued and the cookie is set on
// the response. The id is stored in the request context, so it can be used
// downstream to pick the client's session storage and signup draft.
func ClientIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(ClientCookie); err == nil {
			if parsed, err := uuid.Parse(c.Value); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     ClientCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), clientKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientIDFromContext extracts the client id set by ClientIdentity.
// Returns an empty string if not found.
func GetClientIDFromContext(ctx context.Context) string {
	val := ctx.Value(clientKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// WithClientID returns a copy of ctx carrying id, as ClientIdentity does.
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientKey, id)
}
