package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bitfantasy/formhub/internal/config"
	"github.com/bitfantasy/formhub/internal/forms/repository"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
)

// 错误定义
var (
	ErrNotFound          = errors.New("record not found")
	ErrForbidden         = errors.New("forbidden")
	ErrDuplicateFieldKey = errors.New("field key already exists")
	ErrUnknownFieldType  = errors.New("unknown field type")
	ErrNotPending        = errors.New("submission is not pending review")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrAssetTooLarge     = errors.New("file exceeds the 5MB size limit")
)

// ValidationError 校验失败，携带 字段key→错误消息
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for k, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", k, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError 判断并提取校验错误
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Services 服务集合
type Services struct {
	Form       *FormService
	Submission *SubmissionService
	Asset      *AssetService
	Auth       *AuthService
	User       *UserService
	Project    *ProjectService
	Preference *PreferenceService
	Bulk       *BulkService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, minioClient *minio.Client, cfg *config.Config) *Services {
	formSvc := NewFormService(repos.Form)
	submissionSvc := NewSubmissionService(repos.Submission, repos.Form)
	return &Services{
		Form:       formSvc,
		Submission: submissionSvc,
		Asset:      NewAssetService(repos.Asset, minioClient, cfg.MinIO.Bucket, cfg.MinIO.PublicURL),
		Auth:       NewAuthService(repos.User, rdb, cfg),
		User:       NewUserService(repos.User),
		Project:    NewProjectService(repos.Project, repos.User),
		Preference: NewPreferenceService(rdb, repos.Submission),
		Bulk:       NewBulkService(repos.Form, submissionSvc),
	}
}
