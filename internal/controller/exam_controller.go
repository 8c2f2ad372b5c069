package controller

import (
	"exam_bank_backend/internal/service"
	"exam_bank_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService *service.ExamService
}

func NewExamController(examService *service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

// CreateExam godoc
// @Summary 创建考试
// @Tags 考试管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ExamCreateRequest true "考试信息"
// @Success 201 {object} util.Response
// @Router /api/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ExamCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.ExamService.CreateExam(user.UserID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, exam)
}

// GetExam godoc
// @Summary 获取考试详情
// @Tags 考试管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	exam, err := c.ExamService.GetExam(id)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// ListExams godoc
// @Summary 查询本人创建的考试
// @Tags 考试管理
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := parsePage(ctx)
	exams, total, err := c.ExamService.ListExams(user.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: exams, Total: total, Page: page, Limit: limit})
}

// ListAvailableExams godoc
// @Summary 查询当前可参加的考试
// @Tags 考试管理
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/exams/available [get]
func (c *ExamController) ListAvailableExams(ctx *gin.Context) {
	page, limit := parsePage(ctx)
	exams, total, err := c.ExamService.ListAvailableExams(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: exams, Total: total, Page: page, Limit: limit})
}

// UpdateExam godoc
// @Summary 更新考试
// @Tags 考试管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Param body body service.ExamCreateRequest true "考试信息"
// @Success 200 {object} util.Response
// @Router /api/exams/{id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	var req service.ExamCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.ExamService.UpdateExam(id, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// DeactivateExam godoc
// @Summary 停用考试
// @Tags 考试管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/deactivate [post]
func (c *ExamController) DeactivateExam(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.ExamService.DeactivateExam(id); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// DeleteExam godoc
// @Summary 删除考试
// @Tags 考试管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.ExamService.DeleteExam(id); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// AttachQuestion godoc
// @Summary 向考试添加题目
// @Tags 考试管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Param body body service.AttachRequest true "题目绑定信息"
// @Success 201 {object} util.Response
// @Router /api/exams/{id}/questions [post]
func (c *ExamController) AttachQuestion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	examID := util.MustParseUint(ctx.Param("id"))
	var req service.AttachRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	eq, err := c.ExamService.AttachQuestion(examID, req, user.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, eq)
}

// GetExamQuestions godoc
// @Summary 查询考试题目列表
// @Tags 考试管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/questions [get]
func (c *ExamController) GetExamQuestions(ctx *gin.Context) {
	examID := util.MustParseUint(ctx.Param("id"))
	views, err := c.ExamService.GetExamQuestions(ctx.Request.Context(), examID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, views)
}

type ReorderRequest struct {
	Items []service.ReorderItem `json:"items" binding:"required,min=1"`
}

// Reorder godoc
// @Summary 批量调整题目顺序
// @Tags 考试管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Param body body ReorderRequest true "新顺序"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/questions/reorder [put]
func (c *ExamController) Reorder(ctx *gin.Context) {
	examID := util.MustParseUint(ctx.Param("id"))
	var req ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ExamService.Reorder(examID, req.Items); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UpdateAttachment godoc
// @Summary 修改题目绑定
// @Tags 考试管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Param eqId path int true "绑定ID"
// @Param body body service.AttachmentUpdateRequest true "修改内容"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/questions/{eqId} [put]
func (c *ExamController) UpdateAttachment(ctx *gin.Context) {
	examID := util.MustParseUint(ctx.Param("id"))
	eqID := util.MustParseUint(ctx.Param("eqId"))
	var req service.AttachmentUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	eq, err := c.ExamService.UpdateAttachment(examID, eqID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, eq)
}

// DetachQuestion godoc
// @Summary 从考试移除题目
// @Tags 考试管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Param eqId path int true "绑定ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/questions/{eqId} [delete]
func (c *ExamController) DetachQuestion(ctx *gin.Context) {
	examID := util.MustParseUint(ctx.Param("id"))
	eqID := util.MustParseUint(ctx.Param("eqId"))
	if err := c.ExamService.DetachQuestion(examID, eqID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetTotalPoints godoc
// @Summary 查询考试总分
// @Tags 考试管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/total-points [get]
func (c *ExamController) GetTotalPoints(ctx *gin.Context) {
	examID := util.MustParseUint(ctx.Param("id"))
	total, err := c.ExamService.TotalPoints(examID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"totalPoints": total})
}
