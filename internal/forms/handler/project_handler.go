package handler

import (
	"github.com/bitfantasy/formhub/internal/forms/service"
	"github.com/gin-gonic/gin"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	svc *service.ProjectService
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// List 分页查询项目
// GET /api/v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	result, err := h.svc.List(c.Request.Context(), page, pageSize)
	if err != nil {
		InternalError(c, "获取项目列表失败: "+err.Error())
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

// Get 项目详情
// GET /api/v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "获取项目失败")
		return
	}
	Success(c, project)
}

type projectRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create 创建项目
// POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	project, err := h.svc.Create(c.Request.Context(), GetUserID(c), req.Name)
	if err != nil {
		InternalError(c, "创建项目失败: "+err.Error())
		return
	}
	Created(c, project)
}

// Update 更新项目
// PATCH /api/v1/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	project, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		handleServiceError(c, err, "更新项目失败")
		return
	}
	Success(c, project)
}

// Delete 删除项目
// DELETE /api/v1/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err, "删除项目失败")
		return
	}
	Success(c, gin.H{"message": "Project deleted"})
}

// Users 项目下的用户
// GET /api/v1/projects/:id/users
func (h *ProjectHandler) Users(c *gin.Context) {
	users, err := h.svc.Users(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, "获取项目用户失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": users})
}
