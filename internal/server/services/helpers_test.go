package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/DeepaPrasanna/social-media/internal/dbx"
	"github.com/DeepaPrasanna/social-media/internal/logging"
	"github.com/DeepaPrasanna/social-media/internal/server/auth"
	"github.com/DeepaPrasanna/social-media/internal/server/config"
	"github.com/DeepaPrasanna/social-media/internal/server/models"
	postsrepo "github.com/DeepaPrasanna/social-media/internal/server/repositories/posts"
	usersrepo "github.com/DeepaPrasanna/social-media/internal/server/repositories/users"
)

// --- shared helpers and fakes ---

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

func newTestRevocations(t *testing.T) (*miniredis.Miniredis, *auth.RevocationList) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, auth.NewRevocationList(client)
}

type fakeUsersRepo struct {
	findByEmailOut *models.User
	findByEmailErr error

	findOut *models.User
	findErr error

	createOut *models.User
	createErr error

	updateErr error
	deleteErr error

	resetPasswordHash string
	resetPasswordErr  error

	profilePictureURL string
	profilePictureErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	u.ID = "u-created"
	return u, nil
}

func (f *fakeUsersRepo) Find(ctx context.Context, id string) (*models.User, error) {
	return f.findOut, f.findErr
}

func (f *fakeUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.findByEmailOut, f.findByEmailErr
}

func (f *fakeUsersRepo) Update(ctx context.Context, id string, upd *usersrepo.Update) error {
	return f.updateErr
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	return f.deleteErr
}

func (f *fakeUsersRepo) ResetPassword(ctx context.Context, id string, hashedPassword string) error {
	f.resetPasswordHash = hashedPassword
	return f.resetPasswordErr
}

func (f *fakeUsersRepo) UpdateProfilePicture(ctx context.Context, id string, url string) error {
	f.profilePictureURL = url
	return f.profilePictureErr
}

type fakePostsRepo struct {
	createOut *models.Post
	createErr error

	findOut *models.Post
	findErr error

	allOut []*models.Post
	allErr error

	sharedOut []*models.SharedPostView
	sharedErr error

	updateErr error
	deleteErr error

	searchOut []*models.PostSearchResult
	searchErr error

	shareErr    error
	shareCalled bool
}

func (f *fakePostsRepo) Create(ctx context.Context, authorID, description string) (*models.Post, error) {
	return f.createOut, f.createErr
}

func (f *fakePostsRepo) Find(ctx context.Context, id string) (*models.Post, error) {
	return f.findOut, f.findErr
}

func (f *fakePostsRepo) FindAllByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	return f.allOut, f.allErr
}

func (f *fakePostsRepo) FindSharedWith(ctx context.Context, userID string) ([]*models.SharedPostView, error) {
	return f.sharedOut, f.sharedErr
}

func (f *fakePostsRepo) Update(ctx context.Context, id string, description string) error {
	return f.updateErr
}

func (f *fakePostsRepo) Delete(ctx context.Context, id string) error {
	return f.deleteErr
}

func (f *fakePostsRepo) Search(ctx context.Context, query string) ([]*models.PostSearchResult, error) {
	return f.searchOut, f.searchErr
}

func (f *fakePostsRepo) Share(ctx context.Context, postID, userID string) error {
	f.shareCalled = true
	return f.shareErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakePostsRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.u }
func (m *fakeRepoManager) Posts(db dbx.DBTX) postsrepo.Repository { return m.p }
func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}
