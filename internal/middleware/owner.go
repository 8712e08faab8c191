package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/render"
)

const (
	OwnerIDKey    contextKey = "ownerID"
	OwnerIDHeader string     = "X-Owner-ID"
)

const (
	ErrorCodeMissingOwner    = "MISSING_OWNER"
	ErrorMessageMissingOwner = "X-Owner-ID header is required"
)

// RequireOwner extracts the account identifier all read and write paths
// are scoped by. Requests without it never reach a handler.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.Header.Get(OwnerIDHeader)
		if ownerID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]interface{}{
				"error":   ErrorCodeMissingOwner,
				"message": ErrorMessageMissingOwner,
			})
			return
		}

		ctx := context.WithValue(r.Context(), OwnerIDKey, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetOwnerID retrieves the owner ID from context.
func GetOwnerID(ctx context.Context) string {
	if ownerID, ok := ctx.Value(OwnerIDKey).(string); ok {
		return ownerID
	}
	return ""
}
