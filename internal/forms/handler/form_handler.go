package handler

import (
	"github.com/bitfantasy/formhub/internal/forms/entity"
	"github.com/bitfantasy/formhub/internal/forms/schema"
	"github.com/bitfantasy/formhub/internal/forms/service"
	"github.com/gin-gonic/gin"
)

// FormHandler 表单处理器
type FormHandler struct {
	svc     *service.FormService
	bulkSvc *service.BulkService
}

// NewFormHandler 创建表单处理器
func NewFormHandler(svc *service.FormService, bulkSvc *service.BulkService) *FormHandler {
	return &FormHandler{svc: svc, bulkSvc: bulkSvc}
}

// List 表单列表
// GET /api/v1/forms?type=xxx
func (h *FormHandler) List(c *gin.Context) {
	forms, err := h.svc.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		InternalError(c, "获取表单列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": forms})
}

// Get 表单详情
// GET /api/v1/forms/:id
func (h *FormHandler) Get(c *gin.Context) {
	form, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "获取表单失败")
		return
	}
	Success(c, form)
}

// GetActive 当前激活表单
// GET /api/v1/forms/active?type=xxx
func (h *FormHandler) GetActive(c *gin.Context) {
	form, err := h.svc.GetActive(c.Request.Context(), c.Query("type"))
	if err != nil {
		handleServiceError(c, err, "获取激活表单失败")
		return
	}
	Success(c, form)
}

type createFormRequest struct {
	Title       string               `json:"title" binding:"required"`
	Description string               `json:"description"`
	Type        string               `json:"type"`
	Flow        []string             `json:"flow"`
	Fields      []service.FieldInput `json:"fields"`
}

// Create 创建表单
// POST /api/v1/forms
func (h *FormHandler) Create(c *gin.Context) {
	var req createFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	form, err := h.svc.Create(c.Request.Context(), GetUserID(c), req.Title, req.Description, req.Type, req.Flow, req.Fields)
	if err != nil {
		handleServiceError(c, err, "创建表单失败")
		return
	}
	Created(c, form)
}

type updateFormRequest struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Fields      []entity.FormField `json:"fields"`
}

// Update 更新表单：id取路径参数，`PATCH /forms` 形式则取请求体
// PATCH /api/v1/forms/:id
// PATCH /api/v1/forms
func (h *FormHandler) Update(c *gin.Context) {
	var req updateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	id := c.Param("id")
	if id == "" {
		id = req.ID
	}
	if id == "" {
		BadRequest(c, "缺少表单id")
		return
	}

	form, err := h.svc.Update(c.Request.Context(), id, req.Title, req.Description, req.Fields)
	if err != nil {
		handleServiceError(c, err, "更新表单失败")
		return
	}
	Success(c, form)
}

type addFieldsRequest struct {
	Fields []service.FieldInput `json:"fields" binding:"required,min=1"`
}

// AddFields 追加字段
// POST /api/v1/forms/:id/fields
func (h *FormHandler) AddFields(c *gin.Context) {
	var req addFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	form, err := h.svc.AddFields(c.Request.Context(), c.Param("id"), req.Fields)
	if err != nil {
		handleServiceError(c, err, "添加字段失败")
		return
	}
	Success(c, form)
}

// DeleteField 删除字段
// DELETE /api/v1/forms/:id/fields/:fieldId
func (h *FormHandler) DeleteField(c *gin.Context) {
	form, err := h.svc.DeleteField(c.Request.Context(), c.Param("id"), c.Param("fieldId"))
	if err != nil {
		handleServiceError(c, err, "删除字段失败")
		return
	}
	Success(c, form)
}

type reorderRequest struct {
	FormID string              `json:"form_id" binding:"required"`
	Orders []schema.FieldOrder `json:"orders" binding:"required,min=1"`
}

// Reorder 重排字段
// PATCH /api/v1/forms/re-order
func (h *FormHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	form, err := h.svc.Reorder(c.Request.Context(), req.FormID, req.Orders)
	if err != nil {
		handleServiceError(c, err, "字段排序失败")
		return
	}
	Success(c, form)
}

// Activate 激活表单（同type独占）
// POST /api/v1/forms/:id/activate
func (h *FormHandler) Activate(c *gin.Context) {
	form, err := h.svc.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "激活表单失败")
		return
	}
	Success(c, form)
}

// Delete 删除表单
// DELETE /api/v1/forms/:id
func (h *FormHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleServiceError(c, err, "删除表单失败")
		return
	}
	Success(c, gin.H{"message": "Form deleted"})
}

// Template 下载批量导入模板
// GET /api/v1/forms/:id/template
func (h *FormHandler) Template(c *gin.Context) {
	data, err := h.bulkSvc.Template(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "生成导入模板失败")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="import_template.xlsx"`)
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
