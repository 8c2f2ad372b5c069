package controller

import (
	"exam_bank_backend/internal/service"
	"exam_bank_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	ContentService *service.ContentService
}

func NewContentController(contentService *service.ContentService) *ContentController {
	return &ContentController{ContentService: contentService}
}

// Upload godoc
// @Summary 上传媒体文件
// @Tags 媒体
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "媒体文件"
// @Success 201 {object} util.Response
// @Router /api/content [post]
func (c *ContentController) Upload(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	asset, err := c.ContentService.Upload(ctx.Request.Context(), user.UserID, fileHeader)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, asset)
}

// Get godoc
// @Summary 查询媒体信息
// @Tags 媒体
// @Produce json
// @Security BearerAuth
// @Param id path string true "媒体ID"
// @Success 200 {object} util.Response
// @Router /api/content/{id} [get]
func (c *ContentController) Get(ctx *gin.Context) {
	asset, err := c.ContentService.Get(ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, asset)
}

// Delete godoc
// @Summary 删除媒体文件
// @Tags 媒体
// @Produce json
// @Security BearerAuth
// @Param id path string true "媒体ID"
// @Success 200 {object} util.Response
// @Router /api/content/{id} [delete]
func (c *ContentController) Delete(ctx *gin.Context) {
	if err := c.ContentService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListMine godoc
// @Summary 查询本人上传的媒体
// @Tags 媒体
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/content [get]
func (c *ContentController) ListMine(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := parsePage(ctx)
	assets, total, err := c.ContentService.ListByUploader(user.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: assets, Total: total, Page: page, Limit: limit})
}
