package controller

import (
	"edupath_backend/internal/service"
	"edupath_backend/internal/util"
	"edupath_backend/pkg/logger"
	"edupath_backend/pkg/monitoring"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LearningPathController struct {
	Service *service.LearningPathService
}

func NewLearningPathController(svc *service.LearningPathService) *LearningPathController {
	return &LearningPathController{Service: svc}
}

// @Summary 生成/获取个性化学习路径
// @Description 首次调用构建并保存，之后原样返回已存的路径；带 refresh=true 时重建并原地覆盖
// @Tags 学习路径
// @Produce json
// @Security ApiKeyAuth
// @Param refresh query bool false "强制重建"
// @Success 200 {object} util.Response
// @Success 201 {object} util.Response
// @Router /api/learning-path/generate [post]
func (c *LearningPathController) GeneratePath(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	refresh := ctx.Query("refresh") == "true"

	row, created, err := c.Service.GeneratePath(user.UserID, refresh)
	if err != nil {
		monitoring.PathBuildCounter.WithLabelValues("failed").Inc()
		var stageErr *util.BuildStageError
		if errors.As(err, &stageErr) {
			logger.Log.Error("learning path build failed",
				zap.Uint("user_id", user.UserID),
				zap.String("stage", stageErr.Stage),
				zap.Int("id_set_size", stageErr.IDCount),
				zap.Error(stageErr.Err),
			)
			// 对外只报阶段，不漏查询细节
			util.Error(ctx, http.StatusInternalServerError,
				fmt.Sprintf("learning path build failed at stage %q", stageErr.Stage))
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	switch {
	case created:
		monitoring.PathBuildCounter.WithLabelValues("created").Inc()
		util.Created(ctx, row)
	case refresh:
		monitoring.PathBuildCounter.WithLabelValues("refreshed").Inc()
		util.Success(ctx, row)
	default:
		monitoring.PathBuildCounter.WithLabelValues("reused").Inc()
		util.Success(ctx, row)
	}
}

// @Summary 获取已保存的学习路径
// @Tags 学习路径
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/learning-path [get]
func (c *LearningPathController) GetPath(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	row, err := c.Service.GetPath(user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrPathNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, row)
}
