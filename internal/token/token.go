// Package token implements the signed session token: three base64url
// segments (header.payload.signature), HMAC-SHA256 over header.payload.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity fact set carried inside a session token.
// Subject is the user id; the rest is denormalized for display so the
// frontend can render a header without a round-trip.
type Claims struct {
	jwt.RegisteredClaims
	Provider       string `json:"prv,omitempty"`
	ProviderUserID string `json:"puid,omitempty"`
	Email          string `json:"email,omitempty"`
	Name           string `json:"name,omitempty"`
	PictureURL     string `json:"pic,omitempty"`
}

// New builds a claim set for the given subject valid for ttl from now.
func New(subject string, ttl time.Duration) Claims {
	now := time.Now().UTC().Truncate(time.Second)
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// Sign encodes and signs the claims with HS256.
func Sign(claims Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify checks structure, signature and expiry. It never returns an error:
// anything short of a fully valid token is reported as ok=false, so callers
// branch uniformly on "no session".
func Verify(tokenString string, secret []byte) (Claims, bool) {
	claims := Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return Claims{}, false
	}

	if claims.Subject == "" {
		return Claims{}, false
	}

	return claims, true
}
