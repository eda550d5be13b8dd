package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/newswirehq/newswire-backend/pkg/db"
	"github.com/newswirehq/newswire-backend/pkg/db/models"
	pkgerrors "github.com/newswirehq/newswire-backend/pkg/errors"
)

// Repo persists users through gorm.
type Repo struct {
	client *db.Client
}

func NewRepo(client *db.Client) *Repo {
	return &Repo{client: client}
}

func (r *Repo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.client.DB().WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.client.DB().WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// CreateIfAbsent inserts the user unless a row with the same email already
// exists, in which case the existing row is returned. The insert and the
// conflict check are a single statement, so two concurrent callers racing on
// the same email both end up with the same row.
func (r *Repo) CreateIfAbsent(ctx context.Context, dto CreateUserDTO) (*models.User, bool, error) {
	user := dto.ToModel()

	res := r.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(user)
	if res.Error != nil {
		return nil, false, res.Error
	}

	if res.RowsAffected == 0 {
		existing, err := r.FindByEmail(ctx, dto.Email)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	return user, true, nil
}

// UpdateFields applies a partial patch and returns the updated row.
func (r *Repo) UpdateFields(ctx context.Context, id uuid.UUID, patch map[string]any) (*models.User, error) {
	if len(patch) == 0 {
		return r.FindByID(ctx, id)
	}

	res := r.client.DB().WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(patch)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.FindByID(ctx, id)
}

// Delete removes the user and returns the row as it was before deletion.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var deleted *models.User

	err := r.client.WithTx(ctx, func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		deleted = &user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

// mapStoreError translates gorm errors into coded domain errors.
func mapStoreError(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case pkgerrors.As(err) != nil:
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "user store failure")
	}
}
