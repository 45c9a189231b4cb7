package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/repository"
	"github.com/riyakoli232311/SHG-management/internal/service"
)

const sessionCookieName = "shg_session"

// tokenFromRequest reads the session token, preferring the httpOnly cookie
// and falling back to a Bearer header for non-browser clients.
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}

// AuthMiddleware validates the session and puts userID plus the user's shgID
// (empty until onboarding) into the request context.
func AuthMiddleware(authService *service.AuthService, shgRepo *repository.SHGRepository, logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				respondError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			userID, err := authService.ParseToken(token)
			if err != nil {
				logger.WithError(err).Warn("Invalid session token")
				respondError(w, http.StatusUnauthorized, "Invalid or expired session")
				return
			}

			userUUID, err := uuid.Parse(userID)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Invalid or expired session")
				return
			}

			shgID := ""
			shg, err := shgRepo.GetByUserID(r.Context(), userUUID)
			if err == nil {
				shgID = shg.ID.String()
			} else if !errors.Is(err, sql.ErrNoRows) {
				logger.WithError(err).Error("Failed to resolve SHG during auth")
				respondError(w, http.StatusInternalServerError, "Authentication error")
				return
			}

			ctx := context.WithValue(r.Context(), "userID", userID)
			ctx = context.WithValue(ctx, "shgID", shgID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSHGMiddleware rejects requests from users who have not completed the
// one-time SHG setup. Must run after AuthMiddleware.
func RequireSHGMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			shgID, ok := r.Context().Value("shgID").(string)
			if !ok || shgID == "" {
				respondError(w, http.StatusForbidden, "SHG profile not set up yet")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware allows the frontend origin with credentials, since the
// session rides on a cookie.
func CORSMiddleware(frontendURL string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", frontendURL)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func userIDFromContext(r *http.Request) (uuid.UUID, bool) {
	raw, ok := r.Context().Value("userID").(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func shgIDFromContext(r *http.Request) (uuid.UUID, bool) {
	raw, ok := r.Context().Value("shgID").(string)
	if !ok || raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
