package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/formhub/internal/forms/entity"
	"github.com/bitfantasy/formhub/internal/forms/repository"
	"github.com/bitfantasy/formhub/internal/forms/schema"
	"github.com/google/uuid"
)

// SubmissionService 提交记录服务
type SubmissionService struct {
	submissionRepo *repository.SubmissionRepository
	formRepo       *repository.FormRepository
}

// NewSubmissionService 创建提交记录服务
func NewSubmissionService(submissionRepo *repository.SubmissionRepository, formRepo *repository.FormRepository) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		formRepo:       formRepo,
	}
}

// SubmissionListResult 提交记录列表结果
type SubmissionListResult struct {
	Items      []entity.Submission `json:"items"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalPages int                 `json:"total_pages"`
}

// List 分页查询提交记录
func (s *SubmissionService) List(ctx context.Context, filter repository.SubmissionFilter, page, pageSize int) (*SubmissionListResult, error) {
	submissions, total, err := s.submissionRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &SubmissionListResult{
		Items:      submissions,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ListMine 当前用户的提交记录（首条为默认编辑目标）
func (s *SubmissionService) ListMine(ctx context.Context, userID, formID string) ([]entity.Submission, error) {
	submissions, err := s.submissionRepo.ListByUser(ctx, userID, formID)
	if err != nil {
		return nil, fmt.Errorf("list user submissions: %w", err)
	}
	return submissions, nil
}

// Create 创建提交：校验+规整后落库；审批流表单进入首个pending阶段。
// 校验失败不触碰存储。
func (s *SubmissionService) Create(ctx context.Context, userID, formID, projectID string, answers map[string]interface{}) (*entity.Submission, error) {
	form, normalized, err := s.prepare(ctx, formID, answers)
	if err != nil {
		return nil, err
	}

	submission := &entity.Submission{
		ID:        uuid.New().String()[:32],
		FormID:    form.ID,
		ProjectID: projectID,
		UserID:    userID,
		Answers:   normalized,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if len(form.Flow) > 0 {
		submission.Status = form.Flow[0]
	}

	if err := s.submissionRepo.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	return submission, nil
}

// UpdateAnswers 编辑既有提交：同样的校验+规整，并且任何编辑都使先前复核失效
//（isCheck强制回到false）。非本人且非管理员不可编辑。
func (s *SubmissionService) UpdateAnswers(ctx context.Context, actorID, actorRole, id string, answers map[string]interface{}) (*entity.Submission, error) {
	submission, err := s.submissionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find submission: %w", err)
	}
	if submission == nil {
		return nil, ErrNotFound
	}
	if submission.UserID != actorID && actorRole != entity.RoleAdmin {
		return nil, ErrForbidden
	}

	_, normalized, err := s.prepare(ctx, submission.FormID, answers)
	if err != nil {
		return nil, err
	}

	submission.Answers = normalized
	submission.IsCheck = false
	submission.UpdatedAt = time.Now()

	if err := s.submissionRepo.Update(ctx, submission); err != nil {
		return nil, fmt.Errorf("update submission: %w", err)
	}
	return submission, nil
}

func (s *SubmissionService) prepare(ctx context.Context, formID string, answers map[string]interface{}) (*entity.Form, map[string]interface{}, error) {
	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return nil, nil, fmt.Errorf("find form: %w", err)
	}
	if form == nil {
		return nil, nil, ErrNotFound
	}

	rules := schema.BuildRules(form.Fields)
	if errs := rules.Validate(answers); len(errs) > 0 {
		return nil, nil, &ValidationError{Fields: errs}
	}

	normalized, errs := schema.NormalizeAnswers(form.Fields, answers)
	if len(errs) > 0 {
		return nil, nil, &ValidationError{Fields: errs}
	}
	return form, normalized, nil
}

// SetReviewed 翻转复核标记（事务内，失败整体回滚）
func (s *SubmissionService) SetReviewed(ctx context.Context, id string, reviewed bool) error {
	if err := s.submissionRepo.SetReviewed(ctx, id, reviewed); err != nil {
		if err == repository.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("set reviewed: %w", err)
	}
	return nil
}

// Approve 审批通过：沿表单配置的flow推进到下一阶段，末段则为approved。
// 仅pending状态可操作。
func (s *SubmissionService) Approve(ctx context.Context, id string) (*entity.Submission, error) {
	submission, err := s.submissionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find submission: %w", err)
	}
	if submission == nil {
		return nil, ErrNotFound
	}
	if !entity.IsPendingStatus(submission.Status) {
		return nil, ErrNotPending
	}

	form, err := s.formRepo.FindByID(ctx, submission.FormID)
	if err != nil {
		return nil, fmt.Errorf("find form: %w", err)
	}

	flow := entity.DefaultFlow()
	if form != nil && len(form.Flow) > 0 {
		flow = form.Flow
	}

	submission.Status = nextStage(flow, submission.Status)
	submission.UpdatedAt = time.Now()

	if err := s.submissionRepo.Update(ctx, submission); err != nil {
		return nil, fmt.Errorf("update submission: %w", err)
	}
	return submission, nil
}

// nextStage 当前阶段在flow中的下一阶段；末段或未知阶段则approved
func nextStage(flow []string, current string) string {
	for i, stage := range flow {
		if stage == current {
			if i+1 < len(flow) {
				return flow[i+1]
			}
			return entity.StatusApproved
		}
	}
	return entity.StatusApproved
}

// Reject 审批驳回：任一pending阶段皆可，记录驳回原因
func (s *SubmissionService) Reject(ctx context.Context, id, reason string) (*entity.Submission, error) {
	submission, err := s.submissionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find submission: %w", err)
	}
	if submission == nil {
		return nil, ErrNotFound
	}
	if !entity.IsPendingStatus(submission.Status) {
		return nil, ErrNotPending
	}

	submission.Status = entity.StatusRejected
	submission.RejectReason = reason
	submission.UpdatedAt = time.Now()

	if err := s.submissionRepo.Update(ctx, submission); err != nil {
		return nil, fmt.Errorf("update submission: %w", err)
	}
	return submission, nil
}

// Delete 删除提交：仅本人或管理员
func (s *SubmissionService) Delete(ctx context.Context, actorID, actorRole, id string) error {
	submission, err := s.submissionRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find submission: %w", err)
	}
	if submission == nil {
		return ErrNotFound
	}
	if submission.UserID != actorID && actorRole != entity.RoleAdmin {
		return ErrForbidden
	}
	return s.submissionRepo.Delete(ctx, id)
}
