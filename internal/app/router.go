package app

import (
	"edupath_backend/docs"
	"edupath_backend/internal/config"
	"edupath_backend/internal/middleware"
	"edupath_backend/internal/model"

	"edupath_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		// 学生/通用 授权接口
		a.registerStudentRoutes(authGroup, c)

		// 教师相关接口
		a.registerTeacherRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	// 学习路径：首次生成后持久化，refresh=true 时重建
	rg.POST("/learning-path/generate", c.learningPath.GeneratePath)
	rg.GET("/learning-path", c.learningPath.GetPath)

	// 评估答卷提交
	rg.POST("/assessment/submit", c.assessment.Submit)

	// 课程目录只读接口
	rg.GET("/courses", c.curriculum.ListCourses)
	rg.GET("/courses/:id", c.curriculum.GetCourse)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		teacher.GET("/modules/:id/questions", c.assessment.ListQuestions)
		teacher.POST("/modules/:id/questions", c.assessment.CreateQuestion)
		teacher.PUT("/questions/:id", c.assessment.UpdateQuestion)
		teacher.DELETE("/questions/:id", c.assessment.DeleteQuestion)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user), middleware.RoleMiddleware(model.Admin))
	{
		// 课程体系管理
		admin.POST("/courses", c.curriculum.CreateCourse)
		admin.PUT("/courses/:id", c.curriculum.UpdateCourse)
		admin.DELETE("/courses/:id", c.curriculum.DeleteCourse)

		admin.POST("/subjects", c.curriculum.CreateSubject)
		admin.PUT("/subjects/:id", c.curriculum.UpdateSubject)
		admin.DELETE("/subjects/:id", c.curriculum.DeleteSubject)

		admin.POST("/modules", c.curriculum.CreateModule)
		admin.PUT("/modules/:id", c.curriculum.UpdateModule)
		admin.DELETE("/modules/:id", c.curriculum.DeleteModule)

		admin.POST("/sections", c.curriculum.CreateSection)
		admin.PUT("/sections/:id", c.curriculum.UpdateSection)
		admin.DELETE("/sections/:id", c.curriculum.DeleteSection)
		admin.POST("/sections/:id/video", c.curriculum.UploadSectionVideo)

		// 课程分配管理
		admin.POST("/users/:id/assignments", c.assignment.Assign)
		admin.GET("/users/:id/assignments", c.assignment.List)
		admin.DELETE("/users/:id/assignments/:courseId", c.assignment.Remove)
	}
}
