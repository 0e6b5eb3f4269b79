package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pcshop/internal/models"
)

var ErrUserAlreadyExist = errors.New("user already exist")

// CreateAccount inserts the identity and its profile row together.
func (r *GormRepo) CreateAccount(ctx context.Context, identity *models.Identity, profile *models.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Identity{}).Where("email = ?", identity.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrUserAlreadyExist
		}
		if err := tx.Create(identity).Error; err != nil {
			return err
		}
		profile.ID = identity.ID
		profile.Email = identity.Email
		return tx.Create(profile).Error
	})
}

func (r *GormRepo) GetIdentityByEmail(ctx context.Context, email string) (*models.Identity, error) {
	var identity models.Identity
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&identity).Error; err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *GormRepo) TouchSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.Identity{}).Where("id = ?", id).Update("last_sign_in_at", at).Error
}

func (r *GormRepo) ListIdentities(ctx context.Context) ([]models.Identity, error) {
	items := make([]models.Identity, 0)
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	items := make([]models.User, 0)
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetUserById(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) UpdateUser(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&user, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ToggleAdmin flips is_admin and returns the new value.
func (r *GormRepo) ToggleAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return err
		}
		user.IsAdmin = !user.IsAdmin
		return tx.Model(&models.User{}).Where("id = ?", id).Update("is_admin", user.IsAdmin).Error
	})
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}
