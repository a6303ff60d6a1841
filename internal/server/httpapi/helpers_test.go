package httpapi

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/DeepaPrasanna/social-media/internal/common"
	"github.com/DeepaPrasanna/social-media/internal/dbx"
	"github.com/DeepaPrasanna/social-media/internal/logging"
	"github.com/DeepaPrasanna/social-media/internal/server/auth"
	"github.com/DeepaPrasanna/social-media/internal/server/config"
	"github.com/DeepaPrasanna/social-media/internal/server/models"
	postsrepo "github.com/DeepaPrasanna/social-media/internal/server/repositories/posts"
	usersrepo "github.com/DeepaPrasanna/social-media/internal/server/repositories/users"
	"github.com/DeepaPrasanna/social-media/internal/server/services"
)

// memUsersRepo is an in-memory users repository for handler tests.
type memUsersRepo struct {
	seq   int
	users map[string]*models.User
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{users: map[string]*models.User{}}
}

func (m *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.seq++
	u.ID = fmt.Sprintf("u-%d", m.seq)
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return u, nil
}

func (m *memUsersRepo) Find(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (m *memUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsersRepo) Update(ctx context.Context, id string, upd *usersrepo.Update) error {
	u, ok := m.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Contact != nil {
		u.Contact = *upd.Contact
	}
	return nil
}

func (m *memUsersRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUsersRepo) ResetPassword(ctx context.Context, id string, hashedPassword string) error {
	u, ok := m.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Password = hashedPassword
	return nil
}

func (m *memUsersRepo) UpdateProfilePicture(ctx context.Context, id string, url string) error {
	u, ok := m.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.ProfilePictureURL = url
	return nil
}

// memPostsRepo is an in-memory posts repository for handler tests.
type memPostsRepo struct {
	seq    int
	posts  map[string]*models.Post
	shares map[string][]string // postID -> userIDs
	owner  *memUsersRepo
}

func newMemPostsRepo(owner *memUsersRepo) *memPostsRepo {
	return &memPostsRepo{
		posts:  map[string]*models.Post{},
		shares: map[string][]string{},
		owner:  owner,
	}
}

func (m *memPostsRepo) Create(ctx context.Context, authorID, description string) (*models.Post, error) {
	m.seq++
	p := &models.Post{
		ID:          fmt.Sprintf("p-%d", m.seq),
		AuthorID:    authorID,
		Description: description,
		CreatedOn:   time.Now(),
	}
	m.posts[p.ID] = p
	return p, nil
}

func (m *memPostsRepo) Find(ctx context.Context, id string) (*models.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	cp.NumberOfShares = int64(len(m.shares[id]))
	return &cp, nil
}

func (m *memPostsRepo) FindAllByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range m.posts {
		if p.AuthorID == authorID {
			cp := *p
			cp.NumberOfShares = int64(len(m.shares[p.ID]))
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memPostsRepo) FindSharedWith(ctx context.Context, userID string) ([]*models.SharedPostView, error) {
	var out []*models.SharedPostView
	for postID, userIDs := range m.shares {
		for _, id := range userIDs {
			if id != userID {
				continue
			}
			p := m.posts[postID]
			view := &models.SharedPostView{
				PostID:      p.ID,
				Description: p.Description,
				CreatedOn:   p.CreatedOn,
				AuthorID:    p.AuthorID,
			}
			if author, err := m.owner.Find(ctx, p.AuthorID); err == nil {
				view.AuthorFirstName = author.FirstName
				view.AuthorLastName = author.LastName
			}
			out = append(out, view)
		}
	}
	return out, nil
}

func (m *memPostsRepo) Update(ctx context.Context, id string, description string) error {
	p, ok := m.posts[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.Description = description
	p.UpdatedAt = time.Now()
	return nil
}

func (m *memPostsRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.posts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.posts, id)
	delete(m.shares, id)
	return nil
}

func (m *memPostsRepo) Search(ctx context.Context, query string) ([]*models.PostSearchResult, error) {
	var out []*models.PostSearchResult
	for _, p := range m.posts {
		if !strings.Contains(strings.ToLower(p.Description), strings.ToLower(query)) {
			continue
		}
		res := &models.PostSearchResult{
			ID:          p.ID,
			Description: p.Description,
			CreatedOn:   p.CreatedOn,
			AuthorID:    p.AuthorID,
		}
		if author, err := m.owner.Find(ctx, p.AuthorID); err == nil {
			res.AuthorFirstName = author.FirstName
			res.AuthorLastName = author.LastName
		}
		out = append(out, res)
	}
	return out, nil
}

func (m *memPostsRepo) Share(ctx context.Context, postID, userID string) error {
	for _, id := range m.shares[postID] {
		if id == userID {
			return nil
		}
	}
	m.shares[postID] = append(m.shares[postID], userID)
	return nil
}

type memRepoManager struct {
	u *memUsersRepo
	p *memPostsRepo
}

func (m *memRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.u }
func (m *memRepoManager) Posts(db dbx.DBTX) postsrepo.Repository { return m.p }
func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

type testEnv struct {
	server *Server
	mr     *miniredis.Miniredis
	repos  *memRepoManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AccessTokenValidityDuration = time.Minute
	cfg.RefreshTokenValidityDuration = 8 * time.Minute

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	usersRepo := newMemUsersRepo()
	repos := &memRepoManager{u: usersRepo, p: newMemPostsRepo(usersRepo)}

	usersService := services.NewUserService(nil, repos, nil, logger)
	postsService := services.NewPostService(nil, repos, logger)
	authService := services.NewAuthService(usersService, auth.NewRevocationList(client), cfg, logger)

	return &testEnv{
		server: NewServer(":0", logger, authService, usersService, postsService),
		mr:     mr,
		repos:  repos,
	}
}
