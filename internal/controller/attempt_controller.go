package controller

import (
	"exam_bank_backend/internal/service"
	"exam_bank_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// StartAttempt godoc
// @Summary 开始答题
// @Tags 考试作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Success 201 {object} util.Response
// @Router /api/exams/{id}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	examID := util.MustParseUint(ctx.Param("id"))
	attempt, err := c.AttemptService.StartAttempt(examID, user.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, attempt)
}

// FinalizeAttempt godoc
// @Summary 交卷
// @Tags 考试作答
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "答题记录ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{attemptId}/finalize [post]
func (c *AttemptController) FinalizeAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID := util.MustParseUint(ctx.Param("attemptId"))
	attempt, err := c.AttemptService.FinalizeAttempt(attemptID, user.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// GetResult godoc
// @Summary 查询答题结果
// @Tags 考试作答
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "答题记录ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{attemptId}/result [get]
func (c *AttemptController) GetResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID := util.MustParseUint(ctx.Param("attemptId"))
	result, err := c.AttemptService.GetResult(attemptID, user.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ListMyAttempts godoc
// @Summary 查询本人答题记录
// @Tags 考试作答
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/attempts [get]
func (c *AttemptController) ListMyAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.AttemptService.ListByStudent(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// ListExamAttempts godoc
// @Summary 查询考试的答题记录
// @Tags 考试作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/exams/{id}/attempts [get]
func (c *AttemptController) ListExamAttempts(ctx *gin.Context) {
	examID := util.MustParseUint(ctx.Param("id"))
	page, limit := parsePage(ctx)
	attempts, total, err := c.AttemptService.ListByExam(examID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: attempts, Total: total, Page: page, Limit: limit})
}

// ListNeedingManualReview godoc
// @Summary 查询待人工批改的答题记录
// @Tags 考试作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/attempts/manual-review [get]
func (c *AttemptController) ListNeedingManualReview(ctx *gin.Context) {
	examID := util.MustParseUint(ctx.Param("id"))
	attempts, err := c.AttemptService.ListNeedingManualReview(examID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// DeleteAttempt godoc
// @Summary 删除答题记录
// @Tags 考试作答
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "答题记录ID"
// @Success 200 {object} util.Response
// @Router /api/admin/attempts/{attemptId} [delete]
func (c *AttemptController) DeleteAttempt(ctx *gin.Context) {
	attemptID := util.MustParseUint(ctx.Param("attemptId"))
	if err := c.AttemptService.DeleteAttempt(attemptID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
