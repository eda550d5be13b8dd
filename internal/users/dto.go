package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/newswirehq/newswire-backend/pkg/db/models"
	dbtypes "github.com/newswirehq/newswire-backend/pkg/db/types"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	PhoneNumber       string    `json:"phone_number,omitempty"`
	ProfilePictureURL string    `json:"profile_picture_url"`
	Roles             []string  `json:"roles"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email             string
	PasswordHash      string
	FirstName         string
	LastName          string
	PhoneNumber       string
	ProfilePictureURL string
	Roles             []string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		PhoneNumber:       u.PhoneNumber,
		ProfilePictureURL: u.ProfilePictureURL,
		Roles:             append([]string(nil), []string(u.Roles)...),
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	roles := c.Roles
	if len(roles) == 0 {
		roles = []string{models.RoleUser}
	} else {
		roles = append([]string(nil), roles...)
	}

	return &models.User{
		Email:             c.Email,
		PasswordHash:      c.PasswordHash,
		FirstName:         c.FirstName,
		LastName:          c.LastName,
		PhoneNumber:       c.PhoneNumber,
		ProfilePictureURL: c.ProfilePictureURL,
		Roles:             dbtypes.StringArray(roles),
	}
}
