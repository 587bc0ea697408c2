package handler

import (
	"errors"
	"strconv"

	"github.com/bitfantasy/formhub/internal/config"
	"github.com/bitfantasy/formhub/internal/forms/service"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Auth       *AuthHandler
	Form       *FormHandler
	Submission *SubmissionHandler
	Asset      *AssetHandler
	User       *UserHandler
	Project    *ProjectHandler
	Preference *PreferenceHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc.Auth),
		Form:       NewFormHandler(svc.Form, svc.Bulk),
		Submission: NewSubmissionHandler(svc.Submission, svc.Bulk),
		Asset:      NewAssetHandler(svc.Asset),
		User:       NewUserHandler(svc.User, svc.Auth),
		Project:    NewProjectHandler(svc.Project),
		Preference: NewPreferenceHandler(svc.Preference),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// UnprocessableEntity 校验失败响应（携带字段级错误）
func UnprocessableEntity(c *gin.Context, fields map[string]string) {
	c.JSON(422, Response{
		Code:    42200,
		Message: "validation failed",
		Data:    gin.H{"errors": fields},
	})
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// handleServiceError 服务层错误到HTTP响应的统一映射
func handleServiceError(c *gin.Context, err error, fallback string) {
	if ve, ok := service.AsValidationError(err); ok {
		UnprocessableEntity(c, ve.Fields)
		return
	}
	switch {
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, "资源不存在")
	case errors.Is(err, service.ErrForbidden):
		Forbidden(c, "无权操作该资源")
	case errors.Is(err, service.ErrNotPending):
		BadRequest(c, "该提交不在待审批状态")
	case errors.Is(err, service.ErrAssetTooLarge):
		BadRequest(c, "文件大小超过5MB限制")
	case errors.Is(err, service.ErrDuplicateFieldKey),
		errors.Is(err, service.ErrUnknownFieldType):
		BadRequest(c, err.Error())
	default:
		InternalError(c, fallback+": "+err.Error())
	}
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetUserRole 从上下文获取用户角色
func GetUserRole(c *gin.Context) string {
	userRole, _ := c.Get("user_role")
	if role, ok := userRole.(string); ok {
		return role
	}
	return ""
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	// limit 是 page_size 的别名
	ps := c.Query("page_size")
	if ps == "" {
		ps = c.Query("limit")
	}
	if ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
