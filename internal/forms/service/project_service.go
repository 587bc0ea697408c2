package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/formhub/internal/forms/entity"
	"github.com/bitfantasy/formhub/internal/forms/repository"
	"github.com/google/uuid"
)

// ProjectService 项目服务
type ProjectService struct {
	projectRepo *repository.ProjectRepository
	userRepo    *repository.UserRepository
}

// NewProjectService 创建项目服务
func NewProjectService(projectRepo *repository.ProjectRepository, userRepo *repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// ProjectListResult 项目列表结果
type ProjectListResult struct {
	Items      []entity.Project `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// List 分页查询项目
func (s *ProjectService) List(ctx context.Context, page, pageSize int) (*ProjectListResult, error) {
	projects, total, err := s.projectRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &ProjectListResult{
		Items:      projects,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Get 项目详情
func (s *ProjectService) Get(ctx context.Context, id string) (*entity.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	return project, nil
}

// Create 创建项目
func (s *ProjectService) Create(ctx context.Context, userID, name string) (*entity.Project, error) {
	project := &entity.Project{
		ID:        uuid.New().String()[:32],
		Name:      name,
		CreatedBy: userID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

// Update 更新项目
func (s *ProjectService) Update(ctx context.Context, id, name string) (*entity.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}

	if name != "" {
		project.Name = name
	}
	project.UpdatedAt = time.Now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return project, nil
}

// Delete 删除项目
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find project: %w", err)
	}
	if project == nil {
		return ErrNotFound
	}
	return s.projectRepo.Delete(ctx, id)
}

// Users 项目下的用户
func (s *ProjectService) Users(ctx context.Context, projectID string) ([]entity.User, error) {
	users, err := s.userRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project users: %w", err)
	}
	return users, nil
}
