package controller

import (
	"strconv"

	"exam_bank_backend/internal/repository"
	"exam_bank_backend/internal/service"
	"exam_bank_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

func parsePage(ctx *gin.Context) (int, int) {
	page := 1
	limit := 20
	if p := ctx.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := ctx.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	return page, limit
}

// CreateQuestion godoc
// @Summary 创建题目
// @Tags 题库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuestionCreateRequest true "题目信息"
// @Success 201 {object} util.Response
// @Router /api/questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuestionCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionService.CreateQuestion(user.UserID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// GetQuestion godoc
// @Summary 获取题目详情
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	detail, err := c.QuestionService.GetQuestion(id)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// ListQuestions godoc
// @Summary 查询题目列表
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param state query string false "状态过滤"
// @Param type query string false "题型过滤"
// @Param subcategoryId query int false "分类过滤"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	page, limit := parsePage(ctx)
	filter := repository.QuestionFilter{
		State:         ctx.Query("state"),
		QuestionType:  ctx.Query("type"),
		SubcategoryID: util.MustParseUint(ctx.Query("subcategoryId")),
		CreatorID:     util.MustParseUint(ctx.Query("creatorId")),
	}

	questions, total, err := c.QuestionService.ListQuestions(filter, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: questions, Total: total, Page: page, Limit: limit})
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Tags 题库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param body body service.QuestionUpdateRequest true "更新内容"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	var req service.QuestionUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionService.UpdateQuestion(id, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// SubmitForReview godoc
// @Summary 提交题目评审
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id}/submit [post]
func (c *QuestionController) SubmitForReview(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	question, err := c.QuestionService.SubmitForReview(id)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.QuestionService.DeleteQuestion(id); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// DeactivateQuestion godoc
// @Summary 停用题目
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id}/deactivate [post]
func (c *QuestionController) DeactivateQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.QuestionService.Deactivate(id); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// AddOption godoc
// @Summary 添加选项
// @Tags 题库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param body body service.OptionRequest true "选项内容"
// @Success 201 {object} util.Response
// @Router /api/questions/{id}/options [post]
func (c *QuestionController) AddOption(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	var req service.OptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	option, err := c.QuestionService.AddOption(id, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, option)
}

// UpdateOption godoc
// @Summary 更新选项
// @Tags 题库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param optionId path int true "选项ID"
// @Param body body service.OptionRequest true "选项内容"
// @Success 200 {object} util.Response
// @Router /api/questions/{id}/options/{optionId} [put]
func (c *QuestionController) UpdateOption(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	optionID := util.MustParseUint(ctx.Param("optionId"))
	var req service.OptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	option, err := c.QuestionService.UpdateOption(id, optionID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, option)
}

// DeleteOption godoc
// @Summary 删除选项
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param optionId path int true "选项ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id}/options/{optionId} [delete]
func (c *QuestionController) DeleteOption(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	optionID := util.MustParseUint(ctx.Param("optionId"))
	if err := c.QuestionService.DeleteOption(id, optionID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// AddPair godoc
// @Summary 添加匹配对
// @Tags 题库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param body body service.PairRequest true "匹配对内容"
// @Success 201 {object} util.Response
// @Router /api/questions/{id}/pairs [post]
func (c *QuestionController) AddPair(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	var req service.PairRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	pair, err := c.QuestionService.AddPair(id, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, pair)
}

// DeletePair godoc
// @Summary 删除匹配对
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param pairId path int true "匹配对ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id}/pairs/{pairId} [delete]
func (c *QuestionController) DeletePair(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	pairID := util.MustParseUint(ctx.Param("pairId"))
	if err := c.QuestionService.DeletePair(id, pairID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type ModelAnswerRequest struct {
	Text     string   `json:"text" binding:"required"`
	Keywords []string `json:"keywords"`
}

// SetModelAnswer godoc
// @Summary 设置参考答案
// @Tags 题库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param body body ModelAnswerRequest true "参考答案"
// @Success 200 {object} util.Response
// @Router /api/questions/{id}/model-answer [put]
func (c *QuestionController) SetModelAnswer(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	var req ModelAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	ma, err := c.QuestionService.SetModelAnswer(id, req.Text, req.Keywords)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, ma)
}
