package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/newswirehq/newswire-backend/pkg/db/types"
)

// RoleUser is the role granted to every auto-provisioned account.
const RoleUser = "ROLE_USER"

// User represents the canonical identity entity. Email is the single identity
// key; the unique index backs the directory's atomic find-or-create.
type User struct {
	ID                uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Email             string              `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash      string              `gorm:"column:password_hash;not null"`
	FirstName         string              `gorm:"column:first_name;not null"`
	LastName          string              `gorm:"column:last_name;not null;default:''"`
	PhoneNumber       string              `gorm:"column:phone_number;not null;default:''"`
	ProfilePictureURL string              `gorm:"column:profile_picture_url;not null"`
	Roles             dbtypes.StringArray `gorm:"type:text;column:roles;not null;default:'{ROLE_USER}'"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key so inserts behave the same on Postgres
// and the sqlite driver used in tests.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
