// Package auth implements the token codec and the revocation list used by
// the authentication lifecycle: HS256-signed access/refresh tokens that
// share a correlation id (jti), and a Redis-backed denylist of revoked
// jti:sub pairs.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/DeepaPrasanna/social-media/internal/common"
)

// Claims is the decoded payload carried inside a signed token.
//
// Subject is the user id, ID is the correlation identifier (jti) shared by
// an access token and its paired refresh token, and Username is a
// denormalized display label present on access tokens only.
type Claims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// NewClaims builds claims for a given subject and correlation id.
func NewClaims(sub, jti, username string) *Claims {
	return &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: sub,
			ID:      jti,
		},
	}
}

// NewJTI returns a fresh correlation identifier. UUIDv4 gives the
// high-entropy, non-guessable value one issuance event needs.
func NewJTI() string {
	return uuid.NewString()
}

// Sign sets the claims' expiry to now+validity and returns the HS256-signed
// compact token string.
func Sign(claims *Claims, secret []byte, validity time.Duration) (string, error) {
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(validity))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify parses and validates a token against the given secret. Only HS256
// is accepted, and expiry is checked with zero clock-skew leeway (the
// library default, stated here so nobody widens it by accident). Every
// failure mode collapses to common.ErrInvalidToken so callers cannot tell
// a malformed token from an expired one.
func Verify(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
