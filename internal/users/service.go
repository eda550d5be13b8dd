package users

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/newswirehq/newswire-backend/pkg/config"
	"github.com/newswirehq/newswire-backend/pkg/db/models"
	pkgerrors "github.com/newswirehq/newswire-backend/pkg/errors"
	"github.com/newswirehq/newswire-backend/pkg/logger"
	"github.com/newswirehq/newswire-backend/pkg/security"
)

// secretBytes is the entropy of a generated credential before hex encoding.
const secretBytes = 16

// repository is the storage surface the service needs.
type repository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateIfAbsent(ctx context.Context, dto CreateUserDTO) (*models.User, bool, error)
	UpdateFields(ctx context.Context, id uuid.UUID, patch map[string]any) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// FindOrCreateInput carries the profile used when the email is not yet known.
type FindOrCreateInput struct {
	Email             string `json:"email" validate:"required,email"`
	FirstName         string `json:"first_name" validate:"required"`
	LastName          string `json:"last_name"`
	PhoneNumber       string `json:"phone_number"`
	ProfilePictureURL string `json:"profile_picture_url" validate:"required,url"`
}

// UpdateInput is a partial patch; nil fields are left untouched.
type UpdateInput struct {
	Email             *string `json:"email" validate:"omitempty,email"`
	FirstName         *string `json:"first_name" validate:"omitempty,min=1"`
	LastName          *string `json:"last_name"`
	PhoneNumber       *string `json:"phone_number"`
	ProfilePictureURL *string `json:"profile_picture_url" validate:"omitempty,url"`
}

// Service implements the user directory operations.
type Service struct {
	repo     repository
	password config.PasswordConfig
	logg     *logger.Logger
}

func NewService(repo repository, password config.PasswordConfig, logg *logger.Logger) *Service {
	return &Service{repo: repo, password: password, logg: logg}
}

// FindOrCreate returns the user for the given email, provisioning a new
// record with a generated credential when none exists. The second return
// reports whether a record was created by this call.
func (s *Service) FindOrCreate(ctx context.Context, in FindOrCreateInput) (*UserDTO, bool, error) {
	email := NormalizeEmail(in.Email)

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return FromModel(existing), false, nil
	}
	mapped := mapStoreError(err, "user not found")
	if coded := pkgerrors.As(mapped); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		return nil, false, mapped
	}

	secret, err := security.GenerateSecret(secretBytes)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate credential")
	}

	hash, err := security.HashPassword(secret, s.password.Provision())
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash credential")
	}

	user, created, err := s.repo.CreateIfAbsent(ctx, CreateUserDTO{
		Email:             email,
		PasswordHash:      hash,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		PhoneNumber:       in.PhoneNumber,
		ProfilePictureURL: in.ProfilePictureURL,
		Roles:             []string{models.RoleUser},
	})
	if err != nil {
		return nil, false, mapStoreError(err, "user not found")
	}

	if created {
		s.logg.Info(s.logg.WithField(ctx, "user_id", user.ID.String()), "provisioned user")
	}

	return FromModel(user), created, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "user not found")
	}

	return FromModel(user), nil
}

// Update applies the non-nil fields of the patch and returns the updated user.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*UserDTO, error) {
	patch := map[string]any{}
	if in.Email != nil {
		patch["email"] = NormalizeEmail(*in.Email)
	}
	if in.FirstName != nil {
		patch["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		patch["last_name"] = *in.LastName
	}
	if in.PhoneNumber != nil {
		patch["phone_number"] = *in.PhoneNumber
	}
	if in.ProfilePictureURL != nil {
		patch["profile_picture_url"] = *in.ProfilePictureURL
	}

	user, err := s.repo.UpdateFields(ctx, id, patch)
	if err != nil {
		return nil, mapStoreError(err, "user not found")
	}

	return FromModel(user), nil
}

// Delete removes the user and returns the record as it existed.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "user not found")
	}

	s.logg.Info(s.logg.WithField(ctx, "user_id", id.String()), "deleted user")

	return FromModel(user), nil
}

// NormalizeEmail lowercases and trims the address so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
