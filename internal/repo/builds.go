package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pcshop/internal/models"
)

func (r *GormRepo) CreateBuild(ctx context.Context, build *models.PCBuild) (*models.PCBuild, error) {
	if err := r.DB.WithContext(ctx).Create(build).Error; err != nil {
		return nil, err
	}
	return build, nil
}

func (r *GormRepo) GetBuildsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.PCBuild, error) {
	out := make(map[uuid.UUID]models.PCBuild, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var builds []models.PCBuild
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&builds).Error; err != nil {
		return nil, err
	}
	for _, b := range builds {
		out[b.ID] = b
	}
	return out, nil
}
