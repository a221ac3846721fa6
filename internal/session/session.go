// Package session implements the authenticated-session capability: a signed
// cookie token carrying the actor's identity, backed by a Redis registry of
// live session identifiers so logout genuinely destroys a session instead of
// just dropping the cookie.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie under which the signed session token travels.
const CookieName = "encore_session"

// Session is the transient capability established at login and passed into
// every authenticated operation.  It never carries the password verifier.
type Session struct {
	SID       string // opaque session identifier, key into the registry
	UserID    uint64
	Name      string
	Email     string
	IsManager bool
}

var ErrInvalidToken = errors.New("invalid session token")

// NewSID returns a cryptographically random session identifier.
func NewSID() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// SignToken serializes a Session into an HS256-signed token string with the
// given lifetime.  The claims carry exactly the boundary structure
// {id, name, email, is_manager} plus the session id.
func SignToken(secret string, s Session, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sid":   s.SID,
		"sub":   s.UserID,
		"name":  s.Name,
		"email": s.Email,
		"mgr":   s.IsManager,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseToken verifies a token string and reconstructs the Session.  Any
// signature, algorithm or shape problem yields ErrInvalidToken; callers do
// not need to distinguish why a cookie was bad.
func ParseToken(secret, raw string) (Session, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Session{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrInvalidToken
	}

	var s Session
	if v, ok := claims["sid"].(string); ok {
		s.SID = v
	}
	// JWT numeric values decode as float64.
	if v, ok := claims["sub"].(float64); ok {
		s.UserID = uint64(v)
	}
	if v, ok := claims["name"].(string); ok {
		s.Name = v
	}
	if v, ok := claims["email"].(string); ok {
		s.Email = v
	}
	if v, ok := claims["mgr"].(bool); ok {
		s.IsManager = v
	}
	if s.SID == "" || s.UserID == 0 {
		return Session{}, ErrInvalidToken
	}
	return s, nil
}
