package controller

import (
	"edupath_backend/internal/service"
	"edupath_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type CourseAssignmentController struct {
	Service *service.CourseAssignmentService
}

func NewCourseAssignmentController(svc *service.CourseAssignmentService) *CourseAssignmentController {
	return &CourseAssignmentController{Service: svc}
}

type AssignCourseRequest struct {
	CourseID uint `json:"courseId" binding:"required"`
}

// @Summary 给用户分配课程
// @Tags 课程分配
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "用户ID"
// @Param body body AssignCourseRequest true "课程"
// @Success 201 {object} util.Response
// @Router /api/admin/users/{id}/assignments [post]
func (c *CourseAssignmentController) Assign(ctx *gin.Context) {
	userID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var req AssignCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.Assign(userID, req.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAlreadyAssigned):
			util.Error(ctx, 409, err.Error())
		case errors.Is(err, util.ErrUserNotFound), errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, a)
}

// @Summary 用户的课程分配列表
// @Tags 课程分配
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/assignments [get]
func (c *CourseAssignmentController) List(ctx *gin.Context) {
	userID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	as, err := c.Service.ListForUser(userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, as)
}

// @Summary 取消课程分配
// @Tags 课程分配
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "用户ID"
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/assignments/{courseId} [delete]
func (c *CourseAssignmentController) Remove(ctx *gin.Context) {
	userID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}
	courseID, ok := parseUintParam(ctx, "courseId")
	if !ok {
		return
	}

	if err := c.Service.Remove(userID, courseID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": courseID})
}
