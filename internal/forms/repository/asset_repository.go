package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/formhub/internal/forms/entity"
	"gorm.io/gorm"
)

// AssetRepository 资产仓库
type AssetRepository struct {
	db *gorm.DB
}

// NewAssetRepository 创建资产仓库
func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// ListByUser 某用户的全部资产
func (r *AssetRepository) ListByUser(ctx context.Context, userID string) ([]entity.Asset, error) {
	var assets []entity.Asset
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&assets).Error
	return assets, err
}

// FindByID 按ID查找
func (r *AssetRepository) FindByID(ctx context.Context, id string) (*entity.Asset, error) {
	var asset entity.Asset
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &asset, nil
}

// Create 创建资产记录
func (r *AssetRepository) Create(ctx context.Context, asset *entity.Asset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}
