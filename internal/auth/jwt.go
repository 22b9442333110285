package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/cronospark/internal/models"
)

const sessionCookie = "session"

// sessionTTL bounds how long a login stays valid.
const sessionTTL = 24 * time.Hour

// Claims defines the session token claims.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type contextKey string

// UserClaimsKey is the context key for the authenticated session's claims.
const UserClaimsKey = contextKey("userClaims")

// Sessions issues and validates the signed session cookie that binds a
// browser to a user id.
type Sessions struct {
	key    []byte
	secure bool
}

// NewSessions creates a session manager. secure controls the cookie Secure
// flag and should be true in production.
func NewSessions(secret string, secure bool) *Sessions {
	return &Sessions{key: []byte(secret), secure: secure}
}

// generate creates a signed token for a user.
func (s *Sessions) generate(user models.User) (string, error) {
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// validate parses and checks a token string.
func (s *Sessions) validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// Set establishes the session for a user on the response.
func (s *Sessions) Set(w http.ResponseWriter, user models.User) error {
	token, err := s.generate(user)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Expires:  time.Now().Add(sessionTTL),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	return nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

// Get returns the claims for the request's session cookie, if any.
func (s *Sessions) Get(r *http.Request) (*Claims, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	claims, err := s.validate(cookie.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// RequireLogin guards page routes: requests without a valid session are
// redirected to the login page.
func (s *Sessions) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.Get(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext extracts the session claims stored by RequireLogin.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*Claims)
	return claims, ok
}
