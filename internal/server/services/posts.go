package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/DeepaPrasanna/social-media/internal/common"
	"github.com/DeepaPrasanna/social-media/internal/logging"
	"github.com/DeepaPrasanna/social-media/internal/server/models"
	"github.com/DeepaPrasanna/social-media/internal/server/repositories/repomanager"
)

// PostFeed is what a user sees on their feed: their own posts with share
// counts, plus posts other users shared with them.
type PostFeed struct {
	Posts       []*models.Post
	SharedPosts []*models.SharedPostView
}

// PostService implements post CRUD, sharing and search.
type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewPostService constructs a PostService.
func NewPostService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *PostService {
	return &PostService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "post_service"),
	}
}

// Create stores a new post authored by the authenticated subject.
func (s *PostService) Create(ctx context.Context, authorID, description string) (*models.Post, error) {
	post, err := s.repomanager.Posts(s.db).Create(ctx, authorID, description)
	if err != nil {
		s.logger.Error(ctx, "post creation failed", "error", err)
		return nil, common.ErrorInternal
	}
	return post, nil
}

// Feed returns the caller's own posts and the posts shared with them.
func (s *PostService) Feed(ctx context.Context, userID string) (*PostFeed, error) {
	repo := s.repomanager.Posts(s.db)

	posts, err := repo.FindAllByAuthor(ctx, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	shared, err := repo.FindSharedWith(ctx, userID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &PostFeed{Posts: posts, SharedPosts: shared}, nil
}

// Get returns a single post with its share count.
func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.repomanager.Posts(s.db).Find(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return post, nil
}

// Update replaces a post's description.
func (s *PostService) Update(ctx context.Context, id string, description string) error {
	if err := s.repomanager.Posts(s.db).Update(ctx, id, description); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// Remove deletes a post and, via the schema, its share records.
func (s *PostService) Remove(ctx context.Context, id string) error {
	if err := s.repomanager.Posts(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// Search finds posts whose description matches the query.
func (s *PostService) Search(ctx context.Context, query string) ([]*models.PostSearchResult, error) {
	results, err := s.repomanager.Posts(s.db).Search(ctx, query)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return results, nil
}

// Share makes a post visible on another user's feed. Sharing the same
// post with the same user twice is a no-op.
func (s *PostService) Share(ctx context.Context, postID, userID string) error {
	repo := s.repomanager.Posts(s.db)

	if _, err := repo.Find(ctx, postID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	if err := repo.Share(ctx, postID, userID); err != nil {
		return common.ErrorInternal
	}
	return nil
}
