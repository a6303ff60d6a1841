// Package posts provides the repository for post and shared-post rows.
package posts

import (
	"context"

	"github.com/DeepaPrasanna/social-media/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, authorID, description string) (*models.Post, error)
	Find(ctx context.Context, id string) (*models.Post, error)
	FindAllByAuthor(ctx context.Context, authorID string) ([]*models.Post, error)
	FindSharedWith(ctx context.Context, userID string) ([]*models.SharedPostView, error)
	Update(ctx context.Context, id string, description string) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]*models.PostSearchResult, error)
	Share(ctx context.Context, postID, userID string) error
}
