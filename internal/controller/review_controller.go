package controller

import (
	"exam_bank_backend/internal/service"
	"exam_bank_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	ReviewService *service.ReviewService
}

func NewReviewController(reviewService *service.ReviewService) *ReviewController {
	return &ReviewController{ReviewService: reviewService}
}

type VoteRequest struct {
	Vote    string `json:"vote" binding:"required,oneof=positive negative"`
	Comment string `json:"comment"`
}

// CastVote godoc
// @Summary 投票评审题目
// @Tags 评审
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param body body VoteRequest true "投票内容"
// @Success 201 {object} util.Response
// @Router /api/questions/{id}/votes [post]
func (c *ReviewController) CastVote(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	questionID := util.MustParseUint(ctx.Param("id"))
	var req VoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.ReviewService.CastVote(questionID, user.UserID, req.Vote, req.Comment)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// DeleteVote godoc
// @Summary 撤销投票
// @Tags 评审
// @Produce json
// @Security BearerAuth
// @Param voteId path int true "投票ID"
// @Success 200 {object} util.Response
// @Router /api/votes/{voteId} [delete]
func (c *ReviewController) DeleteVote(ctx *gin.Context) {
	voteID := util.MustParseUint(ctx.Param("voteId"))
	if err := c.ReviewService.DeleteVote(voteID); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type VoteCommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// UpdateVoteComment godoc
// @Summary 修改投票评语
// @Tags 评审
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param voteId path int true "投票ID"
// @Param body body VoteCommentRequest true "评语"
// @Success 200 {object} util.Response
// @Router /api/votes/{voteId} [put]
func (c *ReviewController) UpdateVoteComment(ctx *gin.Context) {
	voteID := util.MustParseUint(ctx.Param("voteId"))
	var req VoteCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	vote, err := c.ReviewService.UpdateVoteComment(voteID, req.Comment)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, vote)
}

// GetTally godoc
// @Summary 查询题目评审进度
// @Tags 评审
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id}/votes [get]
func (c *ReviewController) GetTally(ctx *gin.Context) {
	questionID := util.MustParseUint(ctx.Param("id"))
	tally, err := c.ReviewService.Tally(questionID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, tally)
}

type StateChangeRequest struct {
	State string `json:"state" binding:"required"`
}

// ChangeState godoc
// @Summary 管理员修改题目状态
// @Tags 评审
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param body body StateChangeRequest true "目标状态"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id}/state [put]
func (c *ReviewController) ChangeState(ctx *gin.Context) {
	questionID := util.MustParseUint(ctx.Param("id"))
	var req StateChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.ReviewService.ChangeState(questionID, req.State)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, question)
}
