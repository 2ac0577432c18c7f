package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/6ogo/learny-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserID extracts the authenticated user id injected by Middleware.
func UserID(r *http.Request) (string, bool) {
	uid, ok := r.Context().Value(userIDKey).(string)
	return uid, ok
}

// userFromHeader validates the Authorization header and returns the user id
// claim from the token.
func userFromHeader(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}

	tokenString := strings.TrimPrefix(header, "Bearer ")
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// Middleware validates the Bearer token and injects the user id.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userFromHeader(r.Header.Get("Authorization"))
		if !ok {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid or missing token"})
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalMiddleware injects the user id when a valid Bearer token is
// present and serves the request anonymously otherwise. Catalog and guest
// routes use it so handlers can personalize for signed-in callers.
func OptionalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := userFromHeader(r.Header.Get("Authorization")); ok {
			r = r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
		}
		next.ServeHTTP(w, r)
	})
}

// AdminMiddleware gates routes on the profile admin flag, looked up fresh on
// every request. It must run after Middleware.
func AdminMiddleware(isAdmin func(ctx context.Context, userID string) (bool, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserID(r)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
				return
			}
			admin, err := isAdmin(r.Context(), userID)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
				return
			}
			if !admin {
				writeJSON(w, http.StatusForbidden, models.ErrorResponse{Error: "Admin access required"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
