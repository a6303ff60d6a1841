// Package users provides the repository for account rows.
package users

import (
	"context"

	"github.com/DeepaPrasanna/social-media/internal/server/models"
)

// Update carries the optional fields of a profile update; nil means
// "leave unchanged".
type Update struct {
	FirstName *string
	LastName  *string
	Contact   *int64
}

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Find(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id string, upd *Update) error
	Delete(ctx context.Context, id string) error
	ResetPassword(ctx context.Context, id string, hashedPassword string) error
	UpdateProfilePicture(ctx context.Context, id string, url string) error
}
