// Package auth verifies bearer tokens issued by the identity provider and
// the shared key protecting the admin content-entry panel. Accounts and
// sessions live with the provider; this package only checks what it signed.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidAdminKey = errors.New("invalid admin key")
)

type ctxKey int

const userIDKey ctxKey = iota

type Service struct {
	jwtSecret    []byte
	adminKeyHash string
}

func NewService(jwtSecret, adminKeyHash string) *Service {
	return &Service{jwtSecret: []byte(jwtSecret), adminKeyHash: adminKeyHash}
}

// VerifyToken validates an HS256 token from the identity provider and
// returns the user id from its subject claim.
func (s *Service) VerifyToken(tokenString string) (uuid.UUID, error) {
	if len(s.jwtSecret) == 0 {
		return uuid.Nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	return userID, nil
}

// VerifyAdminKey compares the presented key against the configured bcrypt
// hash.
func (s *Service) VerifyAdminKey(key string) error {
	if s.adminKeyHash == "" || key == "" {
		return ErrInvalidAdminKey
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.adminKeyHash), []byte(key)); err != nil {
		return ErrInvalidAdminKey
	}
	return nil
}

// Middleware requires a valid bearer token and stores the user id in the
// request context.
func (s *Service) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := s.VerifyToken(token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	}
}

// AdminMiddleware additionally requires the admin panel key in the
// X-Admin-Key header.
func (s *Service) AdminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return s.Middleware(func(w http.ResponseWriter, r *http.Request) {
		if err := s.VerifyAdminKey(r.Header.Get("X-Admin-Key")); err != nil {
			http.Error(w, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext extracts the authenticated user id set by Middleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}
