// Package services contains server-side business logic. This file
// implements AuthService, which owns the token lifecycle: issuing
// correlated access/refresh pairs at login, stateless verification with a
// revocation check, refresh-based renewal, and logout.
package services

import (
	"context"
	"math"
	"time"

	"github.com/DeepaPrasanna/social-media/internal/common"
	"github.com/DeepaPrasanna/social-media/internal/logging"
	"github.com/DeepaPrasanna/social-media/internal/server/auth"
	"github.com/DeepaPrasanna/social-media/internal/server/config"
)

// TokenPair bundles a short-lived access token and the longer-lived
// refresh token minted by the same issuance event. Both carry the same jti.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService issues, verifies, renews and revokes token pairs. Credential
// checking is delegated to the users service; AuthService only consumes
// the matched principal.
//
// Errors follow two categories: common.ErrorUnauthorized for anything the
// caller should see as a generic 401 (bad signature, expiry, revocation,
// double logout), and common.ErrorInternal for infrastructure faults that
// must surface as a 5xx instead of being mistaken for an auth decision.
type AuthService struct {
	users                        *UserService
	revocations                  *auth.RevocationList
	logger                       logging.Logger
	accessSecret                 []byte
	refreshSecret                []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewAuthService constructs an AuthService from its collaborators and the
// immutable token configuration.
func NewAuthService(users *UserService, revocations *auth.RevocationList, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		users:                        users,
		revocations:                  revocations,
		logger:                       logger.With("module", "auth_service"),
		accessSecret:                 []byte(cfg.AccessTokenSecret),
		refreshSecret:                []byte(cfg.RefreshTokenSecret),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Login verifies the credentials against the user directory and, on
// success, mints a fresh token pair under a new correlation id. The
// revocation store is not touched.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.users.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return s.issuePair(user.ID, user.DisplayName(), auth.NewJTI())
}

// Authenticate is the guard path: it verifies an access token and checks
// the revocation list. Every failure, including an unreachable store,
// collapses to common.ErrorUnauthorized — the guard fails closed.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := auth.Verify(accessToken, s.accessSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID, claims.Subject)
	if err != nil {
		s.logger.Error(ctx, "revocation check failed, denying request", "error", err)
		return nil, common.ErrorUnauthorized
	}
	if revoked {
		return nil, common.ErrorUnauthorized
	}

	return claims, nil
}

// Renew validates a refresh token, ensures the session is not revoked, and
// issues a new pair. The correlation id is carried forward unchanged, so a
// later logout of any pair in the chain revokes the whole session.
func (s *AuthService) Renew(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.Verify(refreshToken, s.refreshSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID, claims.Subject)
	if err != nil {
		s.logger.Error(ctx, "revocation check failed during renewal", "error", err)
		return nil, common.ErrorInternal
	}
	if revoked {
		return nil, common.ErrorUnauthorized
	}

	return s.issuePair(claims.Subject, "", claims.ID)
}

// Logout revokes the session identified by a refresh token. The denylist
// entry lives exactly as long as the refresh token has left, rounded up to
// whole seconds. A second logout of the same session is rejected rather
// than silently accepted, so misbehaving clients become visible.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := auth.Verify(refreshToken, s.refreshSecret)
	if err != nil {
		return common.ErrorUnauthorized
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID, claims.Subject)
	if err != nil {
		s.logger.Error(ctx, "revocation check failed during logout", "error", err)
		return common.ErrorInternal
	}
	if revoked {
		return common.ErrTokenRevoked
	}

	if err := s.revocations.Revoke(ctx, claims.ID, claims.Subject, remainingLifetime(claims)); err != nil {
		s.logger.Error(ctx, "revocation write failed", "error", err)
		return common.ErrorInternal
	}

	return nil
}

func (s *AuthService) issuePair(sub, username, jti string) (*TokenPair, error) {
	// Username rides on the access token only; the refresh token carries
	// nothing beyond the correlation claims.
	access, err := auth.Sign(auth.NewClaims(sub, jti, username), s.accessSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refresh, err := auth.Sign(auth.NewClaims(sub, jti, ""), s.refreshSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// remainingLifetime returns the time until the claims expire, rounded up
// to whole seconds so the record never dies before the token it revokes.
func remainingLifetime(claims *auth.Claims) time.Duration {
	remaining := time.Until(claims.ExpiresAt.Time)
	return time.Duration(math.Ceil(remaining.Seconds())) * time.Second
}
