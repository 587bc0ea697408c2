package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/formhub/internal/forms/entity"
	"gorm.io/gorm"
)

// SubmissionRepository 提交记录仓库
type SubmissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository 创建提交记录仓库
func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// SubmissionFilter 列表过滤条件
type SubmissionFilter struct {
	FormID    string
	ProjectID string
	UserID    string
	FormType  string
}

// List 分页查询提交记录
func (r *SubmissionRepository) List(ctx context.Context, filter SubmissionFilter, page, pageSize int) ([]entity.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Submission{})

	if filter.FormID != "" {
		query = query.Where("form_submissions.form_id = ?", filter.FormID)
	}
	if filter.ProjectID != "" {
		query = query.Where("form_submissions.project_id = ?", filter.ProjectID)
	}
	if filter.UserID != "" {
		query = query.Where("form_submissions.user_id = ?", filter.UserID)
	}
	if filter.FormType != "" {
		query = query.Joins("JOIN forms ON forms.id = form_submissions.form_id").
			Where("forms.type = ?", filter.FormType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var submissions []entity.Submission
	err := query.Preload("User").
		Order("form_submissions.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&submissions).Error
	return submissions, total, err
}

// ListByUser 某用户在某表单下的全部提交（按创建时间升序，首条为默认编辑目标）
func (r *SubmissionRepository) ListByUser(ctx context.Context, userID, formID string) ([]entity.Submission, error) {
	var submissions []entity.Submission
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if formID != "" {
		query = query.Where("form_id = ?", formID)
	}
	err := query.Order("created_at ASC").Find(&submissions).Error
	return submissions, err
}

// FindByID 按ID查找
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*entity.Submission, error) {
	var submission entity.Submission
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

// Create 创建提交记录
func (r *SubmissionRepository) Create(ctx context.Context, submission *entity.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// Update 更新提交记录
func (r *SubmissionRepository) Update(ctx context.Context, submission *entity.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

// SetReviewed 事务内翻转复核标记：失败时整体回滚，不留半提交状态
func (r *SubmissionRepository) SetReviewed(ctx context.Context, id string, reviewed bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Submission{}).Where("id = ?", id).Update("is_check", reviewed)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Delete 删除提交记录
func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Submission{}).Error
}
