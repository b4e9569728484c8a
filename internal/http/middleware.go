package http

import (
	"context"
	"net/http"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserIDMiddleware pulls the user identity off the request. The storefront
// app sends its session token's subject in X-User-ID after the auth layer
// (out of scope here) has validated it upstream.
func UserIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getUserIDFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}
