package chat

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultSessionTTL = 24 * time.Hour

// Sessions issues and validates signed chat session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{secret: []byte(secret), ttl: ttl}
}

// Session is a newly issued chat session.
type Session struct {
	ID        string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issue creates a session with a fresh id and an HS256 token for it.
func (s *Sessions) Issue() (Session, error) {
	now := time.Now()
	id := uuid.NewString()
	expires := now.Add(s.ttl)

	claims := jwt.MapClaims{
		"session_id": id,
		"exp":        expires.Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("failed to generate token: %w", err)
	}

	return Session{ID: id, Token: tokenString, ExpiresAt: expires.UTC().Truncate(time.Second)}, nil
}

// Validate checks a token and returns its session id. Every failure wraps ErrInvalidSession.
func (s *Sessions) Validate(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidSession
	}

	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		return "", fmt.Errorf("%w: session_id not found in token", ErrInvalidSession)
	}
	return sessionID, nil
}
