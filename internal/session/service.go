package session

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/newswirehq/newswire-backend/internal/users"
	"github.com/newswirehq/newswire-backend/pkg/config"
	"github.com/newswirehq/newswire-backend/pkg/db/models"
	pkgerrors "github.com/newswirehq/newswire-backend/pkg/errors"
	"github.com/newswirehq/newswire-backend/pkg/logger"
	"github.com/newswirehq/newswire-backend/pkg/security"
)

// directory is the slice of the user store the verifier needs.
type directory interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CreateIfAbsent(ctx context.Context, dto users.CreateUserDTO) (*models.User, bool, error)
}

// RegisterInput carries a self-chosen credential alongside the profile.
type RegisterInput struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,min=8"`
	FirstName         string `json:"first_name" validate:"required"`
	LastName          string `json:"last_name"`
	PhoneNumber       string `json:"phone_number"`
	ProfilePictureURL string `json:"profile_picture_url" validate:"required,url"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Service verifies credentials against stored Argon2id hashes.
type Service struct {
	repo     directory
	password config.PasswordConfig
	logg     *logger.Logger
}

func NewService(repo directory, password config.PasswordConfig, logg *logger.Logger) *Service {
	return &Service{repo: repo, password: password, logg: logg}
}

// Register creates a user with a login-grade hash of the chosen password.
// An address that is already registered is a conflict, not a silent reuse.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*users.UserDTO, error) {
	email := users.NormalizeEmail(in.Email)

	hash, err := security.HashPassword(in.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, created, err := s.repo.CreateIfAbsent(ctx, users.CreateUserDTO{
		Email:             email,
		PasswordHash:      hash,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		PhoneNumber:       in.PhoneNumber,
		ProfilePictureURL: in.ProfilePictureURL,
		Roles:             []string{models.RoleUser},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "user store failure")
	}
	if !created {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}

	s.logg.Info(s.logg.WithField(ctx, "user_id", user.ID.String()), "registered user")

	return users.FromModel(user), nil
}

// Login checks the submitted password against the stored hash. An unknown
// address surfaces as not-found; a known address with a wrong password is
// unauthorized.
func (s *Service) Login(ctx context.Context, creds Credentials) (*users.UserDTO, error) {
	email := users.NormalizeEmail(creds.Email)

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "user store failure")
	}

	ok, err := security.VerifyPassword(creds.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	return users.FromModel(user), nil
}
