package handler

import (
	"github.com/bitfantasy/formhub/internal/forms/service"
	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	svc     *service.UserService
	authSvc *service.AuthService
}

// NewUserHandler 创建用户处理器
func NewUserHandler(svc *service.UserService, authSvc *service.AuthService) *UserHandler {
	return &UserHandler{svc: svc, authSvc: authSvc}
}

// List 分页查询用户
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	result, err := h.svc.List(c.Request.Context(), page, pageSize)
	if err != nil {
		InternalError(c, "获取用户列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{
		"items": result.Items,
		"pagination": Pagination{
			Page:       result.Page,
			PageSize:   result.PageSize,
			Total:      result.Total,
			TotalPages: result.TotalPages,
		},
	})
}

// Get 用户详情
// GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "获取用户失败")
		return
	}
	Success(c, user)
}

// Create 创建用户（未给密码时生成初始密码）
// POST /api/v1/auth/create-user
func (h *UserHandler) Create(c *gin.Context) {
	var req service.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, err := h.authSvc.CreateUser(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err, "创建用户失败")
		return
	}
	Created(c, user)
}

type bulkCreateUsersRequest struct {
	Users []service.CreateUserInput `json:"users" binding:"required,min=1"`
}

// CreateBulk 批量创建用户
// POST /api/v1/auth/create-users-bulk
func (h *UserHandler) CreateBulk(c *gin.Context) {
	var req bulkCreateUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	result, err := h.authSvc.CreateUsersBulk(c.Request.Context(), req.Users)
	if err != nil {
		InternalError(c, "批量创建用户失败: "+err.Error())
		return
	}
	Success(c, result)
}

// Verify 找回用户的初始密码（管理员）
// POST /api/v1/auth/verify-user/:id
func (h *UserHandler) Verify(c *gin.Context) {
	password, err := h.authSvc.VerifyUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "获取初始密码失败")
		return
	}
	Success(c, gin.H{"password": password})
}

// Update 更新用户资料
// PATCH /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req service.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handleServiceError(c, err, "更新用户失败")
		return
	}
	Success(c, user)
}

// Delete 删除用户
// DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err, "删除用户失败")
		return
	}
	Success(c, gin.H{"message": "User deleted"})
}

// ExportCSV 导出全部用户为CSV
// GET /api/v1/users/export
func (h *UserHandler) ExportCSV(c *gin.Context) {
	data, err := h.svc.ExportCSV(c.Request.Context())
	if err != nil {
		InternalError(c, "导出用户失败: "+err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="users.csv"`)
	c.Data(200, "text/csv; charset=utf-8", data)
}
