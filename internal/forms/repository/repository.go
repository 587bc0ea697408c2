package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	Form       *FormRepository
	Submission *SubmissionRepository
	Asset      *AssetRepository
	User       *UserRepository
	Project    *ProjectRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Form:       NewFormRepository(db),
		Submission: NewSubmissionRepository(db),
		Asset:      NewAssetRepository(db),
		User:       NewUserRepository(db),
		Project:    NewProjectRepository(db),
	}
}
