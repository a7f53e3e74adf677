package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const userContextKey contextKey = "user"

const jwtClaimUserID = "user_id"

// Authenticate returns a middleware that validates the Bearer token in the
// Authorization header and stores the verified claims in the request
// context. Requests without a valid token are rejected with 401.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				http.Error(w, "authorization header must use the Bearer scheme", http.StatusUnauthorized)
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext extracts the authenticated user's id from the
// claims stored by Authenticate.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", errors.New("user claims not found in context")
	}

	claim, ok := claims[jwtClaimUserID]
	if !ok {
		return "", fmt.Errorf("missing %q claim in token", jwtClaimUserID)
	}

	userID, ok := claim.(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("invalid %q claim in token: %v", jwtClaimUserID, claim)
	}
	return userID, nil
}
