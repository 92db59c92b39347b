package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
)

// Auth validates the bearer token and puts the caller into the context.
// Requests without an Authorization header pass through anonymously;
// RequireUser rejects them on protected routes.
func (h *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(header)
		if err != nil {
			errorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := h.auth.Validate(ctx, token)
		if err != nil || claims == nil {
			h.log.Warn(wrap.ErrorCtx(ctx, err), "failed to authenticate user", "error", fmt.Sprint(err))
			errorResponse(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		ctx = wrap.WithUserID(models.WithViewer(ctx, claims.UserID), claims.UserID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser allows only authenticated callers.
// Usage: mux.Handle("POST /locations", m.RequireUser(h.UpdateLocation))
func (h *Middleware) RequireUser(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := models.ViewerFromContext(r.Context()); !ok {
			errorResponse(w, http.StatusUnauthorized, "authorization required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	return parts[1], nil
}
