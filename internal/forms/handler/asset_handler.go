package handler

import (
	"io"

	"github.com/bitfantasy/formhub/internal/forms/service"
	"github.com/gin-gonic/gin"
)

// AssetHandler 资产处理器
type AssetHandler struct {
	svc *service.AssetService
}

// NewAssetHandler 创建资产处理器
func NewAssetHandler(svc *service.AssetService) *AssetHandler {
	return &AssetHandler{svc: svc}
}

// List 当前用户的资产列表
// GET /api/v1/assets
func (h *AssetHandler) List(c *gin.Context) {
	assets, err := h.svc.List(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "获取资产列表失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": assets})
}

// Upload 上传资产，上限5MB
// POST /api/v1/assets
func (h *AssetHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "缺少上传文件: "+err.Error())
		return
	}

	asset, err := h.svc.Upload(c.Request.Context(), GetUserID(c), fileHeader)
	if err != nil {
		handleServiceError(c, err, "上传资产失败")
		return
	}
	Created(c, asset)
}

// Download 下载资产内容
// GET /api/v1/assets/:id/download
func (h *AssetHandler) Download(c *gin.Context) {
	asset, reader, err := h.svc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "下载资产失败")
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+asset.Filename+`"`)
	c.Header("Content-Type", asset.MimeType)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		// 响应头已发出，只能中断连接
		c.Abort()
	}
}
