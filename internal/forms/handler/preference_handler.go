package handler

import (
	"github.com/bitfantasy/formhub/internal/forms/service"
	"github.com/gin-gonic/gin"
)

// PreferenceHandler 用户偏好处理器
type PreferenceHandler struct {
	svc *service.PreferenceService
}

// NewPreferenceHandler 创建用户偏好处理器
func NewPreferenceHandler(svc *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{svc: svc}
}

// Get 读取当前用户偏好
// GET /api/v1/preferences
func (h *PreferenceHandler) Get(c *gin.Context) {
	prefs, err := h.svc.Get(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "获取偏好失败: "+err.Error())
		return
	}
	Success(c, prefs)
}

type updatePreferencesRequest struct {
	SelectedSubmissionID *string `json:"selected_submission_id"`
	Language             *string `json:"language"`
}

// Update 更新当前用户偏好（只更新载荷中出现的项）
// PATCH /api/v1/preferences
func (h *PreferenceHandler) Update(c *gin.Context) {
	var req updatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	userID := GetUserID(c)

	if req.SelectedSubmissionID != nil {
		if err := h.svc.SetSelectedSubmission(c.Request.Context(), userID, *req.SelectedSubmissionID); err != nil {
			handleServiceError(c, err, "设置选中提交失败")
			return
		}
	}
	if req.Language != nil {
		if err := h.svc.SetLanguage(c.Request.Context(), userID, *req.Language); err != nil {
			BadRequest(c, "不支持的语言")
			return
		}
	}

	prefs, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		InternalError(c, "获取偏好失败: "+err.Error())
		return
	}
	Success(c, prefs)
}
