package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/formhub/internal/config"
	"github.com/bitfantasy/formhub/internal/forms/entity"
	"github.com/bitfantasy/formhub/internal/forms/handler"
	"github.com/bitfantasy/formhub/internal/forms/repository"
	"github.com/bitfantasy/formhub/internal/forms/service"
	"github.com/bitfantasy/formhub/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting formhub service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.Form{},
		&entity.Submission{},
		&entity.Asset{},
		&entity.User{},
		&entity.Project{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	// 提交按用户+表单查询是热路径
	db.Exec("CREATE INDEX IF NOT EXISTS idx_form_submissions_user_form ON form_submissions(user_id, form_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_form_submissions_status ON form_submissions(status)")

	// 初始化Redis
	rdb := initRedis(cfg.Redis)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("Redis not reachable", zap.Error(err))
	}

	// 初始化MinIO
	minioClient, err := initMinIO(cfg.MinIO)
	if err != nil {
		zapLogger.Warn("MinIO not configured, asset storage disabled", zap.Error(err))
	}

	// 组装仓库/服务/处理器
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, minioClient, cfg)
	handlers := handler.NewHandlers(services, cfg)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func initMinIO(cfg config.MinIOConfig) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint not set")
	}
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")

	// 认证（无需登录）
	auth := v1.Group("/auth")
	{
		auth.POST("/signin", h.Auth.Signin)
		auth.POST("/refresh-token", h.Auth.Refresh)
	}

	// 需要登录的路由
	authed := v1.Group("")
	authed.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		authed.GET("/auth/me", h.Auth.Me)

		// 表单（读取对所有登录用户开放）
		authed.GET("/forms", h.Form.List)
		authed.GET("/forms/active", h.Form.GetActive)
		authed.GET("/forms/:id", h.Form.Get)
		authed.GET("/forms/:id/template", h.Form.Template)

		// 提交
		authed.GET("/form-submissions/mine", h.Submission.ListMine)
		authed.POST("/form-submissions", h.Submission.Create)
		authed.PATCH("/form-submissions/:id", h.Submission.Update)
		authed.DELETE("/form-submissions/:id", h.Submission.Delete)

		// 资产
		authed.GET("/assets", h.Asset.List)
		authed.POST("/assets", h.Asset.Upload)
		authed.GET("/assets/:id/download", h.Asset.Download)

		// 偏好
		authed.GET("/preferences", h.Preference.Get)
		authed.PATCH("/preferences", h.Preference.Update)
	}

	// 管理端路由
	admin := v1.Group("")
	admin.Use(middleware.JWTAuth(cfg.JWT.Secret), middleware.RequireRole("admin"))
	{
		// 表单管理
		admin.POST("/forms", h.Form.Create)
		admin.PATCH("/forms", h.Form.Update)
		admin.PATCH("/forms/re-order", h.Form.Reorder)
		admin.PATCH("/forms/:id", h.Form.Update)
		admin.DELETE("/forms/:id", h.Form.Delete)
		admin.POST("/forms/:id/fields", h.Form.AddFields)
		admin.DELETE("/forms/:id/fields/:fieldId", h.Form.DeleteField)
		admin.POST("/forms/:id/activate", h.Form.Activate)

		// 提交管理与审批
		admin.GET("/form-submissions", h.Submission.List)
		admin.POST("/form-submissions/bulk-upload", h.Submission.BulkUpload)
		admin.PATCH("/form-submissions/:id/approve", h.Submission.Approve)
		admin.PATCH("/form-submissions/:id/reject", h.Submission.Reject)

		// 用户管理
		admin.POST("/auth/create-user", h.User.Create)
		admin.POST("/auth/create-users-bulk", h.User.CreateBulk)
		admin.POST("/auth/verify-user/:id", h.User.Verify)
		admin.GET("/users", h.User.List)
		admin.GET("/users/export", h.User.ExportCSV)
		admin.GET("/users/:id", h.User.Get)
		admin.PATCH("/users/:id", h.User.Update)
		admin.DELETE("/users/:id", h.User.Delete)

		// 项目管理
		admin.GET("/projects", h.Project.List)
		admin.POST("/projects", h.Project.Create)
		admin.GET("/projects/:id", h.Project.Get)
		admin.GET("/projects/:id/users", h.Project.Users)
		admin.PATCH("/projects/:id", h.Project.Update)
		admin.DELETE("/projects/:id", h.Project.Delete)
	}
}
