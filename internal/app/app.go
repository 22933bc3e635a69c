package app

import (
	"context"
	"edupath_backend/internal/config"
	"edupath_backend/internal/controller"
	"edupath_backend/internal/repository"
	"edupath_backend/internal/service"
	"edupath_backend/pkg/configwatcher"
	"edupath_backend/pkg/database"
	"edupath_backend/pkg/logger"
	"edupath_backend/pkg/monitoring"
	"edupath_backend/pkg/security"
	"edupath_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	curriculum   *repository.CurriculumRepository
	assignment   *repository.CourseAssignmentRepository
	moduleStatus *repository.ModuleStatusRepository
	learningPath *repository.LearningPathRepository
	assessment   *repository.AssessmentRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	curriculum   *service.CurriculumService
	assignment   *service.CourseAssignmentService
	question     *service.QuestionService
	assessment   *service.AssessmentService
	learningPath *service.LearningPathService
}

type controllers struct {
	auth         *controller.AuthController
	curriculum   *controller.CurriculumController
	assignment   *controller.CourseAssignmentController
	assessment   *controller.AssessmentController
	learningPath *controller.LearningPathController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		curriculum:   repository.NewCurriculumRepository(db),
		assignment:   repository.NewCourseAssignmentRepository(db),
		moduleStatus: repository.NewModuleStatusRepository(db),
		learningPath: repository.NewLearningPathRepository(db),
		assessment:   repository.NewAssessmentRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.curriculum = service.NewCurriculumService(repos.curriculum, s.storage)
	s.assignment = service.NewCourseAssignmentService(repos.assignment, repos.curriculum, repos.user)
	s.question = service.NewQuestionService(repos.assessment, repos.curriculum)
	s.assessment = service.NewAssessmentService(repos.assessment, repos.curriculum, repos.moduleStatus, cfg)
	s.learningPath = service.NewLearningPathService(
		repos.assignment,
		repos.curriculum,
		repos.moduleStatus,
		repos.learningPath,
		rdb,
		cfg,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		curriculum:   controller.NewCurriculumController(s.curriculum),
		assignment:   controller.NewCourseAssignmentController(s.assignment),
		assessment:   controller.NewAssessmentController(s.assessment, s.question),
		learningPath: controller.NewLearningPathController(s.learningPath),
		health:       controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	// release 模式默认不迁移，带 -migrate 参数时例外
	migrate := cfg.Server.Mode != "release" || cfg.ForceMigrate
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("edupath-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
		router.Static("/api/uploads", cfg.Storage.LocalPath)
	}

	// 掌握阈值、路径缓存 TTL 等学习配置支持热更新
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		cfg.Learning = newCfg.Learning
		logger.Log.Info("learning config reloaded",
			zap.Int("mastery_threshold", newCfg.Learning.MasteryThreshold),
			zap.Int("path_cache_ttl_minutes", newCfg.Learning.PathCacheTTL))
	})
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		for _, cb := range app.configCallbacks {
			cb(newCfg)
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
