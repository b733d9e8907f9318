package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue compares keys by type and value. A plain string key
// such as "userID" could collide with any other package that picked the
// same string. contextKey is unexported, so only this package can build a
// key that matches, and WithUserID / UserIDFromContext are the only way in
// or out.
type contextKey string

const userIDKey contextKey = "userID"

const bearerPrefix = "Bearer "

var errNoBearer = errors.New("auth: missing bearer token")

// RequireAuth rejects requests without a valid bearer token with 401 and
// stores the token's user id in the request context otherwise.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			ctx := WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth lets requests without an Authorization header through
// anonymously. A request that does carry a bearer token must carry a valid
// one: its user id goes into the context, and an invalid token gets the same
// 401 as RequireAuth.
//
// REQUIRED VS OPTIONAL:
// RequireAuth guards routes that only make sense for a known caller
// (deleting a comment or a post). OptionalAuth guards routes where the
// client names the user in the body. Older clients that never send a token
// keep working, while a client that does send one has it checked against
// the body by the handler.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := extractUserID(r, tokens)
			if err != nil {
				writeUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
}

// WithUserID returns ctx carrying userID. Handler tests use it to skip the
// token round trip.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user's id, or (0, false) for
// an anonymous request.
//
//	userID, ok := auth.UserIDFromContext(r.Context())
//	if !ok {
//	    // anonymous user
//	}
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}

// extractUserID reads "Authorization: Bearer <jwt>" and validates it.
func extractUserID(r *http.Request, tokens *TokenService) (int64, error) {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return 0, errNoBearer
	}
	return tokens.Validate(strings.TrimSpace(header[len(bearerPrefix):]))
}
