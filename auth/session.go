// Package auth exposes the authentication capability the storefront engine
// consumes: whether a user is signed in and who they are. Token issuance
// and refresh live with the marketplace auth service, not here.
package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v4"
)

// User identifies the authenticated shopper.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session holds the current sign-in state. Background work tied to the
// authenticated session (the invalid-item sweep) hangs off Context, which
// is cancelled on logout so nothing outlives the session.
type Session struct {
	mu     sync.RWMutex
	secret []byte
	token  string
	user   *User
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSession creates an unauthenticated session.
func NewSession(secret string) *Session {
	return &Session{secret: []byte(secret)}
}

// Login validates the access token and activates the session.
func (s *Session) Login(token string) (*User, error) {
	user, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.token = token
	s.user = user
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return user, nil
}

// Logout clears the session and cancels session-scoped background work.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.token = ""
	s.user = nil
	s.ctx = nil
}

// IsAuthenticated reports whether a user is signed in.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// CurrentUser returns the signed-in user, or nil.
func (s *Session) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Token returns the raw access token for gateway requests.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Context returns a context cancelled on logout. Done when unauthenticated.
func (s *Session) Context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ctx == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return s.ctx
}

func (s *Session) parseToken(tokenStr string) (*User, error) {
	if len(s.secret) == 0 {
		return nil, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if typ, ok := claims["typ"].(string); ok && typ != "" && typ != "access" {
		return nil, fmt.Errorf("invalid token type")
	}

	user := &User{}
	if sub, ok := claims["sub"].(string); ok {
		user.ID = sub
	}
	if name, ok := claims["name"].(string); ok {
		user.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if user.ID == "" {
		return nil, fmt.Errorf("token missing subject")
	}
	return user, nil
}
