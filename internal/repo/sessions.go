package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pcshop/internal/hash"
	"github.com/Skotchmaster/pcshop/internal/models"
)

func (r *GormRepo) AddSession(ctx context.Context, jti, userID uuid.UUID, token string, expiresAt time.Time) error {
	s := models.Session{
		ID:        jti,
		UserID:    userID,
		TokenHash: hash.Sha256Hex(token),
		ExpiresAt: expiresAt,
	}
	return r.DB.WithContext(ctx).Create(&s).Error
}

// SessionActive reports whether the session exists, is not revoked and has not expired.
func (r *GormRepo) SessionActive(ctx context.Context, jti uuid.UUID, now time.Time) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND revoked = ? AND expires_at > ?", jti, false, now).
		Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) RevokeSession(ctx context.Context, jti uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", jti).
		Update("revoked", true).Error
}
