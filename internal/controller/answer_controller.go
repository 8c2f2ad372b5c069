package controller

import (
	"exam_bank_backend/internal/service"
	"exam_bank_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnswerController struct {
	AnswerService *service.AnswerService
}

func NewAnswerController(answerService *service.AnswerService) *AnswerController {
	return &AnswerController{AnswerService: answerService}
}

type SelectionRequest struct {
	ExamQuestionID uint `json:"examQuestionId" binding:"required"`
	OptionID       uint `json:"optionId" binding:"required"`
}

// RecordSelection godoc
// @Summary 提交选择题答案
// @Tags 答题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "答题记录ID"
// @Param body body SelectionRequest true "所选选项"
// @Success 201 {object} util.Response
// @Router /api/attempts/{attemptId}/answers/selection [post]
func (c *AnswerController) RecordSelection(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID := util.MustParseUint(ctx.Param("attemptId"))
	var req SelectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, err := c.AnswerService.RecordSelection(attemptID, req.ExamQuestionID, req.OptionID, user.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, answer)
}

type FreeTextRequest struct {
	ExamQuestionID uint   `json:"examQuestionId" binding:"required"`
	Text           string `json:"text" binding:"required"`
}

// RecordFreeText godoc
// @Summary 提交主观题答案
// @Tags 答题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "答题记录ID"
// @Param body body FreeTextRequest true "答案文本"
// @Success 201 {object} util.Response
// @Router /api/attempts/{attemptId}/answers/free-text [post]
func (c *AnswerController) RecordFreeText(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID := util.MustParseUint(ctx.Param("attemptId"))
	var req FreeTextRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, err := c.AnswerService.RecordFreeText(attemptID, req.ExamQuestionID, user.UserID, req.Text)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, answer)
}

type MatchingRequest struct {
	ExamQuestionID uint                     `json:"examQuestionId" binding:"required"`
	Selections     []service.MatchSelection `json:"selections" binding:"required,min=1"`
}

// RecordMatching godoc
// @Summary 提交匹配题答案
// @Tags 答题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "答题记录ID"
// @Param body body MatchingRequest true "匹配选择"
// @Success 201 {object} util.Response
// @Router /api/attempts/{attemptId}/answers/matching [post]
func (c *AnswerController) RecordMatching(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID := util.MustParseUint(ctx.Param("attemptId"))
	var req MatchingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answers, err := c.AnswerService.RecordMatching(attemptID, req.ExamQuestionID, user.UserID, req.Selections)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, answers)
}

// GetAttemptAnswers godoc
// @Summary 查询答题记录的全部答案
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "答题记录ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{attemptId}/answers [get]
func (c *AnswerController) GetAttemptAnswers(ctx *gin.Context) {
	attemptID := util.MustParseUint(ctx.Param("attemptId"))
	answers, err := c.AnswerService.GetAttemptAnswers(attemptID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, answers)
}

type GradeRequest struct {
	Points  int    `json:"points"`
	Comment string `json:"comment"`
}

// GradeFreeText godoc
// @Summary 批改主观题答案
// @Tags 答题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param answerId path int true "答案ID"
// @Param body body GradeRequest true "批改内容"
// @Success 200 {object} util.Response
// @Router /api/answers/{answerId}/grade [post]
func (c *AnswerController) GradeFreeText(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	answerID := util.MustParseUint(ctx.Param("answerId"))
	var req GradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, err := c.AnswerService.GradeFreeText(answerID, user.UserID, req.Points, req.Comment)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, answer)
}

// ListUngraded godoc
// @Summary 查询考试的待批改答案
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param id path int true "考试ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/ungraded [get]
func (c *AnswerController) ListUngraded(ctx *gin.Context) {
	examID := util.MustParseUint(ctx.Param("id"))
	answers, err := c.AnswerService.ListUngraded(examID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, answers)
}
