package services

import (
	"context"
	"database/sql"
	"errors"
	"io"

	"golang.org/x/crypto/bcrypt"

	"github.com/DeepaPrasanna/social-media/internal/common"
	"github.com/DeepaPrasanna/social-media/internal/logging"
	"github.com/DeepaPrasanna/social-media/internal/server/models"
	"github.com/DeepaPrasanna/social-media/internal/server/repositories/repomanager"
	"github.com/DeepaPrasanna/social-media/internal/server/repositories/users"
)

// UserService is the user directory: account CRUD, password hashing and
// verification, and profile-picture upload. It is the only component that
// ever sees a plaintext password or a password hash.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	pictures    *ProfilePictureStore
	logger      logging.Logger
}

// NewUserService constructs a UserService. pictures may be nil in tests
// that never exercise uploads.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, pictures *ProfilePictureStore, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		pictures:    pictures,
		logger:      logger.With("module", "user_service"),
	}
}

// Register creates an account with a bcrypt-hashed password. A taken email
// yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, user *models.User, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	_, err := repo.FindByEmail(ctx, user.Email)
	if err == nil {
		return nil, common.ErrorAlreadyExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}
	user.Password = string(hash)

	created, err := repo.Create(ctx, user)
	if err != nil {
		s.logger.Error(ctx, "user creation failed", "error", err)
		return nil, common.ErrorInternal
	}
	return created, nil
}

// VerifyCredentials is the credential-matching call consumed by the auth
// service. A missing account is reported as common.ErrorNotFound (the
// login surface distinguishes "no such account" from "bad password"); a
// hash mismatch is common.ErrorUnauthorized.
func (s *UserService) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}

	return user, nil
}

// Get returns the account with the given id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).Find(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// Update applies a partial profile update.
func (s *UserService) Update(ctx context.Context, id string, upd *users.Update) error {
	if err := s.repomanager.Users(s.db).Update(ctx, id, upd); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// Remove deletes the account.
func (s *UserService) Remove(ctx context.Context, id string) error {
	if err := s.repomanager.Users(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// ResetPassword re-hashes and stores a new password.
func (s *UserService) ResetPassword(ctx context.Context, id string, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrorInternal
	}

	if err := s.repomanager.Users(s.db).ResetPassword(ctx, id, string(hash)); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return nil
}

// UploadProfilePicture stores the image in object storage and persists the
// resulting URL on the user row. The owner comes from the authenticated
// subject, never from the request path.
func (s *UserService) UploadProfilePicture(ctx context.Context, userID, filename, contentType string, body io.Reader) (string, error) {
	url, err := s.pictures.Put(ctx, filename, contentType, body)
	if err != nil {
		s.logger.Error(ctx, "profile picture upload failed", "error", err)
		return "", common.ErrorInternal
	}

	if err := s.repomanager.Users(s.db).UpdateProfilePicture(ctx, userID, url); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", common.ErrorInternal
	}

	return url, nil
}
