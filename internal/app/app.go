package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"testroom_backend/internal/config"
	"testroom_backend/internal/controller"
	"testroom_backend/internal/repository"
	"testroom_backend/internal/service"
	"testroom_backend/pkg/configwatcher"
	"testroom_backend/pkg/database"
	"testroom_backend/pkg/logger"
	"testroom_backend/pkg/monitoring"
	"testroom_backend/pkg/security"
	"testroom_backend/pkg/tracing"
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
	services        *services
	sweepStop       chan struct{}
	configCallbacks []func(*config.Config)
}

type repositories struct {
	organization *repository.OrganizationRepository
	user         *repository.UserRepository
	test         *repository.TestRepository
	question     *repository.QuestionRepository
	attempt      *repository.AttemptRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	user         *service.UserService
	organization *service.OrganizationService
	test         *service.TestService
	attempt      *service.AttemptService
	report       *service.ReportService
	dashboard    *service.DashboardService
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	organization *controller.OrganizationController
	test         *controller.TestController
	attempt      *controller.AttemptController
	report       *controller.ReportController
	dashboard    *controller.DashboardController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		organization: repository.NewOrganizationRepository(db),
		user:         repository.NewUserRepository(db),
		test:         repository.NewTestRepository(db),
		question:     repository.NewQuestionRepository(db),
		attempt:      repository.NewAttemptRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, repos.organization, cfg)
	s.user = service.NewUserService(repos.user, s.storage)
	s.organization = service.NewOrganizationService(repos.organization, repos.user, db)
	s.test = service.NewTestService(repos.test, repos.question, cfg, rdb)
	s.attempt = service.NewAttemptService(repos.attempt, repos.test, repos.question, db)
	s.report = service.NewReportService(repos.attempt, repos.test, repos.question, repos.user, s.storage)
	s.dashboard = service.NewDashboardService(repos.user, repos.test, repos.attempt)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.user, s.auth),
		organization: controller.NewOrganizationController(s.organization),
		test:         controller.NewTestController(s.test),
		attempt:      controller.NewAttemptController(s.attempt),
		report:       controller.NewReportController(s.report),
		dashboard:    controller.NewDashboardController(s.dashboard),
		health:       controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 启动超时清扫：到点未交卷的答题由服务端终结，
// 不依赖客户端再发请求
func (a *App) startBackgroundTasks(s *services) {
	a.sweepStop = make(chan struct{})
	interval := time.Duration(a.Config.Attempt.SweepIntervalSeconds) * time.Second

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.attempt.SweepOverdue(); err != nil {
					logger.Log.Error("overdue attempt sweep error", zap.Error(err))
				}
			case <-a.sweepStop:
				return
			}
		}
	}()

	// 配置热更新
	go configwatcher.WatchConfig("configs/config.yaml", a.Config, func(newCfg interface{}) {
		cfg, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		logger.Log.Info("config reloaded")
		for _, cb := range a.configCallbacks {
			cb(cfg)
		}
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
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
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("testroom", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

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

	if a.sweepStop != nil {
		close(a.sweepStop)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
