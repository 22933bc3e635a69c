package controller

import (
	"edupath_backend/internal/service"
	"edupath_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CurriculumController struct {
	Service *service.CurriculumService
}

func NewCurriculumController(svc *service.CurriculumService) *CurriculumController {
	return &CurriculumController{Service: svc}
}

func parseUintParam(ctx *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

func notFoundOrInternal(ctx *gin.Context, err error) {
	if errors.Is(err, util.ErrCourseNotFound) ||
		errors.Is(err, util.ErrSubjectNotFound) ||
		errors.Is(err, util.ErrModuleNotFound) ||
		errors.Is(err, util.ErrSectionNotFound) {
		util.NotFound(ctx)
		return
	}
	util.LogInternalError(ctx, err)
}

// @Summary 创建课程
// @Tags 课程目录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CourseRequest true "课程信息"
// @Success 201 {object} util.Response
// @Router /api/admin/courses [post]
func (c *CurriculumController) CreateCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.Service.CreateCourse(user.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, course)
}

// @Summary 课程列表
// @Tags 课程目录
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (c *CurriculumController) ListCourses(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	courses, total, err := c.Service.ListCourses(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": courses, "total": total})
}

// @Summary 课程详情
// @Tags 课程目录
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CurriculumController) GetCourse(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	course, err := c.Service.GetCourse(id)
	if err != nil {
		notFoundOrInternal(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// @Summary 更新课程
// @Tags 课程目录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body service.CourseRequest true "课程信息"
// @Success 200 {object} util.Response
// @Router /api/admin/courses/{id} [put]
func (c *CurriculumController) UpdateCourse(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.Service.UpdateCourse(id, req)
	if err != nil {
		notFoundOrInternal(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// @Summary 删除课程
// @Tags 课程目录
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/admin/courses/{id} [delete]
func (c *CurriculumController) DeleteCourse(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.Service.DeleteCourse(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}

// @Summary 创建学科
// @Tags 课程目录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.SubjectRequest true "学科信息"
// @Success 201 {object} util.Response
// @Router /api/admin/subjects [post]
func (c *CurriculumController) CreateSubject(ctx *gin.Context) {
	var req service.SubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subject, err := c.Service.CreateSubject(req)
	if err != nil {
		notFoundOrInternal(ctx, err)
		return
	}

	util.Created(ctx, subject)
}

// @Summary 更新学科
// @Tags 课程目录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "学科ID"
// @Param body body service.SubjectRequest true "学科信息"
// @Success 200 {object} util.Response
// @Router /api/admin/subjects/{id} [put]
func (c *CurriculumController) UpdateSubject(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var req service.SubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	subject, err := c.Service.UpdateSubject(id, req)
	if err != nil {
		notFoundOrInternal(ctx, err)
		return
	}

	util.Success(ctx, subject)
}

// @Summary 删除学科
// @Tags 课程目录
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "学科ID"
// @Success 200 {object} util.Response
// @Router /api/admin/subjects/{id} [delete]
func (c *CurriculumController) DeleteSubject(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.Service.DeleteSubject(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}

// @Summary 创建模块
// @Tags 课程目录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.ModuleRequest true "模块信息"
// @Success 201 {object} util.Response
// @Router /api/admin/modules [post]
func (c *CurriculumController) CreateModule(ctx *gin.Context) {
	var req service.ModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.Service.CreateModule(req)
	if err != nil {
		notFoundOrInternal(ctx, err)
		return
	}

	util.Created(ctx, module)
}

// @Summary 更新模块
// @Tags 课程目录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "模块ID"
// @Param body body service.ModuleRequest true "模块信息"
// @Success 200 {object} util.Response
// @Router /api/admin/modules/{id} [put]
func (c *CurriculumController) UpdateModule(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var req service.ModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.Service.UpdateModule(id, req)
	if err != nil {
		notFoundOrInternal(ctx, err)
		return
	}

	util.Success(ctx, module)
}

// @Summary 删除模块
// @Tags 课程目录
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/admin/modules/{id} [delete]
func (c *CurriculumController) DeleteModule(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.Service.DeleteModule(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}

// @Summary 创建小节
// @Tags 课程目录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.SectionRequest true "小节信息"
// @Success 201 {object} util.Response
// @Router /api/admin/sections [post]
func (c *CurriculumController) CreateSection(ctx *gin.Context) {
	var req service.SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section, err := c.Service.CreateSection(req)
	if err != nil {
		notFoundOrInternal(ctx, err)
		return
	}

	util.Created(ctx, section)
}

// @Summary 更新小节
// @Tags 课程目录
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小节ID"
// @Param body body service.SectionRequest true "小节信息"
// @Success 200 {object} util.Response
// @Router /api/admin/sections/{id} [put]
func (c *CurriculumController) UpdateSection(ctx *gin.Context) {
	id := ctx.Param("id")

	var req service.SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section, err := c.Service.UpdateSection(id, req)
	if err != nil {
		notFoundOrInternal(ctx, err)
		return
	}

	util.Success(ctx, section)
}

// @Summary 删除小节
// @Tags 课程目录
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小节ID"
// @Success 200 {object} util.Response
// @Router /api/admin/sections/{id} [delete]
func (c *CurriculumController) DeleteSection(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := c.Service.DeleteSection(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}

// @Summary 上传小节讲义视频
// @Tags 课程目录
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "小节ID"
// @Param file formData file true "视频文件"
// @Success 200 {object} util.Response
// @Router /api/admin/sections/{id}/video [post]
func (c *CurriculumController) UploadSectionVideo(ctx *gin.Context) {
	id := ctx.Param("id")

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	section, err := c.Service.UploadSectionVideo(ctx.Request.Context(), id, fileHeader)
	if err != nil {
		notFoundOrInternal(ctx, err)
		return
	}

	util.Success(ctx, section)
}
