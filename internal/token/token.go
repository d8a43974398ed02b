// Package token mints room access tokens for the Sayna platform.
// Tokens are HMAC-signed JWTs carrying a room grant, compatible with
// LiveKit-style access tokens.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Grant describes what the token holder may do in a room.
type Grant struct {
	Room         string `json:"room"`
	RoomJoin     bool   `json:"roomJoin"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

// Claims are the JWT claims carried by a room access token.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Video Grant  `json:"video"`
}

// Minter issues room access tokens signed with an API secret.
type Minter struct {
	apiKey    string
	apiSecret string
	ttl       time.Duration
}

// NewMinter creates a Minter. ttl bounds token validity.
func NewMinter(apiKey, apiSecret string, ttl time.Duration) *Minter {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Minter{apiKey: apiKey, apiSecret: apiSecret, ttl: ttl}
}

// Mint issues a join token for identity in room.
func (m *Minter) Mint(room, identity, name string) (string, error) {
	if room == "" || identity == "" {
		return "", errors.New("room and identity are required")
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.apiKey,
			Subject:   identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Name: name,
		Video: Grant{
			Room:         room,
			RoomJoin:     true,
			CanPublish:   true,
			CanSubscribe: true,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.apiSecret))
}

// Verify parses and validates a token minted with the same secret.
func (m *Minter) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(m.apiSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
