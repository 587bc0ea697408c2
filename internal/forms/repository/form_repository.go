package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/formhub/internal/forms/entity"
	"gorm.io/gorm"
)

// FormRepository 表单仓库
type FormRepository struct {
	db *gorm.DB
}

// NewFormRepository 创建表单仓库
func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

// List 表单列表（可按type过滤）
func (r *FormRepository) List(ctx context.Context, formType string) ([]entity.Form, error) {
	var forms []entity.Form
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if formType != "" {
		query = query.Where("type = ?", formType)
	}
	err := query.Find(&forms).Error
	return forms, err
}

// FindByID 按ID查找
func (r *FormRepository) FindByID(ctx context.Context, id string) (*entity.Form, error) {
	var form entity.Form
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&form).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &form, nil
}

// FindActive 查找当前激活表单（可按type过滤）
func (r *FormRepository) FindActive(ctx context.Context, formType string) (*entity.Form, error) {
	var form entity.Form
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if formType != "" {
		query = query.Where("type = ?", formType)
	}
	err := query.First(&form).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &form, nil
}

// Create 创建表单
func (r *FormRepository) Create(ctx context.Context, form *entity.Form) error {
	return r.db.WithContext(ctx).Create(form).Error
}

// Update 更新表单
func (r *FormRepository) Update(ctx context.Context, form *entity.Form) error {
	return r.db.WithContext(ctx).Save(form).Error
}

// Delete 删除表单
func (r *FormRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Form{}).Error
}

// Activate 激活表单：同type下仅一个激活，事务内先全部取消再激活目标
func (r *FormRepository) Activate(ctx context.Context, id, formType string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Form{}).
			Where("type = ? AND is_active = ?", formType, true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		result := tx.Model(&entity.Form{}).Where("id = ?", id).Update("is_active", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
