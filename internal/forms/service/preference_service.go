package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/formhub/internal/forms/repository"
	"github.com/redis/go-redis/v9"
)

// 偏好项的redis key前缀
const (
	prefSelectedSubmissionKey = "pref:selected_submission:"
	prefLanguageKey           = "pref:language:"
)

// 支持的界面语言
var supportedLanguages = map[string]bool{
	"en": true,
	"ar": true,
}

// PreferenceService 用户偏好服务：选中提交与界面语言存redis，跨会话保留
type PreferenceService struct {
	rdb            *redis.Client
	submissionRepo *repository.SubmissionRepository
}

// NewPreferenceService 创建用户偏好服务
func NewPreferenceService(rdb *redis.Client, submissionRepo *repository.SubmissionRepository) *PreferenceService {
	return &PreferenceService{
		rdb:            rdb,
		submissionRepo: submissionRepo,
	}
}

// Preferences 用户偏好
type Preferences struct {
	SelectedSubmissionID string `json:"selected_submission_id"`
	Language             string `json:"language"`
}

// Get 读取用户偏好；缺失项返回零值，语言缺省为en
func (s *PreferenceService) Get(ctx context.Context, userID string) (*Preferences, error) {
	prefs := &Preferences{Language: "en"}

	selected, err := s.rdb.Get(ctx, prefSelectedSubmissionKey+userID).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get selected submission: %w", err)
	}
	prefs.SelectedSubmissionID = selected

	lang, err := s.rdb.Get(ctx, prefLanguageKey+userID).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("get language: %w", err)
	}
	if lang != "" {
		prefs.Language = lang
	}
	return prefs, nil
}

// SetSelectedSubmission 设置选中提交：必须是本人的提交；空ID清除选择
func (s *PreferenceService) SetSelectedSubmission(ctx context.Context, userID, submissionID string) error {
	if submissionID == "" {
		if err := s.rdb.Del(ctx, prefSelectedSubmissionKey+userID).Err(); err != nil {
			return fmt.Errorf("clear selected submission: %w", err)
		}
		return nil
	}

	submission, err := s.submissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("find submission: %w", err)
	}
	if submission == nil {
		return ErrNotFound
	}
	if submission.UserID != userID {
		return ErrForbidden
	}

	if err := s.rdb.Set(ctx, prefSelectedSubmissionKey+userID, submissionID, 0).Err(); err != nil {
		return fmt.Errorf("set selected submission: %w", err)
	}
	return nil
}

// SetLanguage 设置界面语言
func (s *PreferenceService) SetLanguage(ctx context.Context, userID, language string) error {
	if !supportedLanguages[language] {
		return fmt.Errorf("unsupported language %q", language)
	}
	if err := s.rdb.Set(ctx, prefLanguageKey+userID, language, 0).Err(); err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	return nil
}
