package controller

import (
	"edupath_backend/internal/service"
	"edupath_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Assessments *service.AssessmentService
	Questions   *service.QuestionService
}

func NewAssessmentController(assessments *service.AssessmentService, questions *service.QuestionService) *AssessmentController {
	return &AssessmentController{Assessments: assessments, Questions: questions}
}

// @Summary 学生端：提交评估答卷
// @Description 按模块评分并刷新必修/选修状态记录
// @Tags 评估
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.SubmitAssessmentRequest true "答卷"
// @Success 200 {object} util.Response
// @Router /api/assessment/submit [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	results, err := c.Assessments.GradeSubmission(user.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"modules": results})
}

// @Summary 模块评估题列表
// @Tags 评估
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/modules/{id}/questions [get]
func (c *AssessmentController) ListQuestions(ctx *gin.Context) {
	moduleID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	qs, err := c.Questions.ListQuestions(moduleID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, qs)
}

// @Summary 创建模块评估题
// @Tags 评估
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "模块ID"
// @Param body body service.QuestionRequest true "题目"
// @Success 201 {object} util.Response
// @Router /api/teacher/modules/{id}/questions [post]
func (c *AssessmentController) CreateQuestion(ctx *gin.Context) {
	moduleID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Questions.CreateQuestion(moduleID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrModuleNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrModuleNotGradable):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, q)
}

// @Summary 更新评估题
// @Tags 评估
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Param body body service.QuestionRequest true "题目"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [put]
func (c *AssessmentController) UpdateQuestion(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Questions.UpdateQuestion(id, req)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, q)
}

// @Summary 删除评估题
// @Tags 评估
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/questions/{id} [delete]
func (c *AssessmentController) DeleteQuestion(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.Questions.DeleteQuestion(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}
