// Package auth issues and verifies the session tokens clients present when
// reconnecting. A token binds a player id to a room; it carries no game
// state.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indicates the token failed signature or claims validation.
var ErrInvalidToken = errors.New("auth: invalid token")

// DefaultTokenTTL matches the original deployment's seven-day expiry.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims are the facts a session token carries.
type Claims struct {
	RoomID      string `json:"roomId"`
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	jwt.RegisteredClaims
}

// Signer signs and verifies session tokens with an HMAC secret.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner creates a signer. A non-positive ttl falls back to
// DefaultTokenTTL.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Sign issues a token for a player's seat in a room.
func (s *Signer) Sign(roomID, playerID, displayName string) (string, error) {
	now := time.Now()
	claims := Claims{
		RoomID:      roomID,
		PlayerID:    playerID,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify parses and validates a token, returning its claims.
func (s *Signer) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
