package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/DeepaPrasanna/social-media/internal/common"
	"github.com/DeepaPrasanna/social-media/internal/server/auth"
	"github.com/DeepaPrasanna/social-media/internal/server/models"
)

const testPassword = "Secret#123"

type authFixture struct {
	mr      *miniredis.Miniredis
	service *AuthService

	// signing secrets, so tests can decode tokens themselves
	accessSecret  []byte
	refreshSecret []byte
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	mr, revocations := newTestRevocations(t)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &fakeUsersRepo{findByEmailOut: &models.User{
		ID:        "u-1",
		FirstName: "Janet",
		LastName:  "Doe",
		Email:     "janet@example.com",
		Password:  string(hash),
	}}

	cfg := testConfig()
	cfg.AccessTokenValidityDuration = time.Minute
	cfg.RefreshTokenValidityDuration = 8 * time.Minute

	users := NewUserService(nil, &fakeRepoManager{u: repo, p: &fakePostsRepo{}}, nil, testLogger())
	service := NewAuthService(users, revocations, cfg, testLogger())

	return &authFixture{
		mr:            mr,
		service:       service,
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
	}
}

func (f *authFixture) login(t *testing.T) *TokenPair {
	t.Helper()
	pair, err := f.service.Login(context.Background(), "janet@example.com", testPassword)
	require.NoError(t, err)
	return pair
}

func TestLogin_IssuesCorrelatedPair(t *testing.T) {
	f := newAuthFixture(t)
	pair := f.login(t)

	access, err := auth.Verify(pair.AccessToken, f.accessSecret)
	require.NoError(t, err)
	refresh, err := auth.Verify(pair.RefreshToken, f.refreshSecret)
	require.NoError(t, err)

	assert.Equal(t, "u-1", access.Subject)
	assert.Equal(t, "u-1", refresh.Subject)
	assert.Equal(t, access.ID, refresh.ID)
	assert.NotEmpty(t, access.ID)

	assert.Equal(t, "Janet Doe", access.Username)
	assert.Empty(t, refresh.Username)

	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt.Time))
}

func TestLogin_SecretsAreNotInterchangeable(t *testing.T) {
	f := newAuthFixture(t)
	pair := f.login(t)

	_, err := auth.Verify(pair.AccessToken, f.refreshSecret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
	_, err = auth.Verify(pair.RefreshToken, f.accessSecret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestLogin_UnknownAccount(t *testing.T) {
	f := newAuthFixture(t)

	repo := &fakeUsersRepo{findByEmailErr: common.ErrorNotFound}
	f.service.users = NewUserService(nil, &fakeRepoManager{u: repo}, nil, testLogger())

	_, err := f.service.Login(context.Background(), "nobody@example.com", testPassword)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Login(context.Background(), "janet@example.com", "not-the-password")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	f := newAuthFixture(t)
	pair := f.login(t)

	claims, err := f.service.Authenticate(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "Janet Doe", claims.Username)
}

func TestAuthenticate_Garbage(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Authenticate(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestAuthenticate_RefreshTokenRejected(t *testing.T) {
	f := newAuthFixture(t)
	pair := f.login(t)

	_, err := f.service.Authenticate(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestLogout_RevokesWholeSession(t *testing.T) {
	f := newAuthFixture(t)
	pair := f.login(t)

	require.NoError(t, f.service.Logout(context.Background(), pair.RefreshToken))

	// The access token is still within its validity window but shares the
	// revoked correlation id, so the guard must reject it immediately.
	_, err := f.service.Authenticate(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = f.service.Renew(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestLogout_SecondAttemptRejected(t *testing.T) {
	f := newAuthFixture(t)
	pair := f.login(t)

	require.NoError(t, f.service.Logout(context.Background(), pair.RefreshToken))

	err := f.service.Logout(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrTokenRevoked)
}

func TestLogout_RecordLifetimeMatchesTokenRemainder(t *testing.T) {
	f := newAuthFixture(t)

	refresh, err := auth.Sign(auth.NewClaims("u-1", auth.NewJTI(), ""), f.refreshSecret, 480*time.Second)
	require.NoError(t, err)

	claims, err := auth.Verify(refresh, f.refreshSecret)
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), refresh))

	ttl := f.mr.TTL(claims.ID + ":" + claims.Subject)
	assert.InDelta(t, 480, ttl.Seconds(), 2)
}

func TestLogout_ExpiredRefreshToken(t *testing.T) {
	f := newAuthFixture(t)

	refresh, err := auth.Sign(auth.NewClaims("u-1", auth.NewJTI(), ""), f.refreshSecret, -time.Second)
	require.NoError(t, err)

	err = f.service.Logout(context.Background(), refresh)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRenew_CarriesCorrelationIDForward(t *testing.T) {
	f := newAuthFixture(t)
	pair := f.login(t)

	original, err := auth.Verify(pair.RefreshToken, f.refreshSecret)
	require.NoError(t, err)

	renewed, err := f.service.Renew(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	access, err := auth.Verify(renewed.AccessToken, f.accessSecret)
	require.NoError(t, err)
	refresh, err := auth.Verify(renewed.RefreshToken, f.refreshSecret)
	require.NoError(t, err)

	assert.Equal(t, original.ID, access.ID)
	assert.Equal(t, original.ID, refresh.ID)
	assert.Equal(t, "u-1", access.Subject)
}

func TestRenew_ThenLogoutKillsEveryPairInTheChain(t *testing.T) {
	f := newAuthFixture(t)
	pair := f.login(t)

	renewed, err := f.service.Renew(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), renewed.RefreshToken))

	// Both generations share the jti, so the original pair dies too.
	_, err = f.service.Authenticate(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = f.service.Renew(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRenew_WithAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	pair := f.login(t)

	_, err := f.service.Renew(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestAuthenticate_StoreDownFailsClosed(t *testing.T) {
	f := newAuthFixture(t)
	pair := f.login(t)

	f.mr.SetError("store unavailable")

	_, err := f.service.Authenticate(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRenew_StoreDownIsInternal(t *testing.T) {
	f := newAuthFixture(t)
	pair := f.login(t)

	f.mr.SetError("store unavailable")

	_, err := f.service.Renew(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogout_StoreDownIsInternal(t *testing.T) {
	f := newAuthFixture(t)
	pair := f.login(t)

	f.mr.SetError("store unavailable")

	err := f.service.Logout(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogout_RevocationIsVisibleImmediately(t *testing.T) {
	f := newAuthFixture(t)
	pair := f.login(t)

	claims, err := auth.Verify(pair.RefreshToken, f.refreshSecret)
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), pair.RefreshToken))

	// No grace window: the very next guard call already sees the record.
	assert.True(t, f.mr.Exists(claims.ID+":"+claims.Subject))
	_, err = f.service.Authenticate(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}
