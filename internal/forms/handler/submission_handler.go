package handler

import (
	"github.com/bitfantasy/formhub/internal/forms/repository"
	"github.com/bitfantasy/formhub/internal/forms/service"
	"github.com/gin-gonic/gin"
)

// SubmissionHandler 提交记录处理器
type SubmissionHandler struct {
	svc     *service.SubmissionService
	bulkSvc *service.BulkService
}

// NewSubmissionHandler 创建提交记录处理器
func NewSubmissionHandler(svc *service.SubmissionService, bulkSvc *service.BulkService) *SubmissionHandler {
	return &SubmissionHandler{svc: svc, bulkSvc: bulkSvc}
}

// List 分页查询提交记录（管理端）
// GET /api/v1/form-submissions?form_id=&project_id=&user_id=&type=
func (h *SubmissionHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	formType := c.Query("type")
	if formType == "" {
		formType = c.Query("form_type")
	}
	filter := repository.SubmissionFilter{
		FormID:    c.Query("form_id"),
		ProjectID: c.Query("project_id"),
		UserID:    c.Query("user_id"),
		FormType:  formType,
	}

	result, err := h.svc.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		InternalError(c, "获取提交列表失败: "+err.Error())
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

// ListMine 当前用户的提交记录，按创建时间升序（首条为默认编辑目标）
// GET /api/v1/form-submissions/mine?form_id=
func (h *SubmissionHandler) ListMine(c *gin.Context) {
	submissions, err := h.svc.ListMine(c.Request.Context(), GetUserID(c), c.Query("form_id"))
	if err != nil {
		InternalError(c, "获取我的提交失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": submissions})
}

type createSubmissionRequest struct {
	FormID    string                 `json:"form_id" binding:"required"`
	ProjectID string                 `json:"project_id"`
	Answers   map[string]interface{} `json:"answers" binding:"required"`
}

// Create 创建提交：校验不通过不落库，返回字段级错误
// POST /api/v1/form-submissions
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req createSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	submission, err := h.svc.Create(c.Request.Context(), GetUserID(c), req.FormID, req.ProjectID, req.Answers)
	if err != nil {
		handleServiceError(c, err, "创建提交失败")
		return
	}
	Created(c, submission)
}

type updateSubmissionRequest struct {
	Answers map[string]interface{} `json:"answers"`
	IsCheck *bool                  `json:"isCheck"`
}

// Update 编辑提交或翻转复核标记，按载荷区分：
// 带answers走完整校验管线且任何编辑都重置isCheck；
// 仅带isCheck时只翻转复核标记（管理员）。
// PATCH /api/v1/form-submissions/:id
func (h *SubmissionHandler) Update(c *gin.Context) {
	var req updateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	id := c.Param("id")

	if req.Answers != nil {
		submission, err := h.svc.UpdateAnswers(c.Request.Context(), GetUserID(c), GetUserRole(c), id, req.Answers)
		if err != nil {
			handleServiceError(c, err, "编辑提交失败")
			return
		}
		Success(c, submission)
		return
	}

	if req.IsCheck != nil {
		if err := h.svc.SetReviewed(c.Request.Context(), id, *req.IsCheck); err != nil {
			handleServiceError(c, err, "更新复核标记失败")
			return
		}
		Success(c, gin.H{"id": id, "isCheck": *req.IsCheck})
		return
	}

	BadRequest(c, "请求体需包含answers或isCheck")
}

// Approve 审批通过，沿表单flow推进
// PATCH /api/v1/form-submissions/:id/approve
func (h *SubmissionHandler) Approve(c *gin.Context) {
	submission, err := h.svc.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "审批失败")
		return
	}
	Success(c, submission)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject 审批驳回
// PATCH /api/v1/form-submissions/:id/reject
func (h *SubmissionHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	submission, err := h.svc.Reject(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		handleServiceError(c, err, "驳回失败")
		return
	}
	Success(c, submission)
}

// Delete 删除提交（本人或管理员）
// DELETE /api/v1/form-submissions/:id
func (h *SubmissionHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetUserID(c), GetUserRole(c), c.Param("id")); err != nil {
		handleServiceError(c, err, "删除提交失败")
		return
	}
	Success(c, gin.H{"message": "Submission deleted"})
}

// BulkUpload 上传xlsx批量导入提交，逐行校验并返回行级报告
// POST /api/v1/form-submissions/bulk-upload
func (h *SubmissionHandler) BulkUpload(c *gin.Context) {
	formID := c.PostForm("form_id")
	if formID == "" {
		BadRequest(c, "form_id不能为空")
		return
	}
	projectID := c.PostForm("project_id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "缺少上传文件: "+err.Error())
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		BadRequest(c, "读取上传文件失败: "+err.Error())
		return
	}
	defer src.Close()

	result, err := h.bulkSvc.Import(c.Request.Context(), GetUserID(c), formID, projectID, src)
	if err != nil {
		handleServiceError(c, err, "批量导入失败")
		return
	}
	Success(c, result)
}
