package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/entity"
	"github.com/bitfantasy/nimo-cmms/internal/cmms/handler"
	"github.com/bitfantasy/nimo-cmms/internal/cmms/notify"
	"github.com/bitfantasy/nimo-cmms/internal/cmms/repository"
	"github.com/bitfantasy/nimo-cmms/internal/cmms/service"
	"github.com/bitfantasy/nimo-cmms/internal/config"
	"github.com/bitfantasy/nimo-cmms/internal/middleware"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载.env (开发环境)
	godotenv.Load()

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

	zapLogger.Info("Starting nimo-cmms service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := migrateDatabase(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 事件通知器
	var notifier service.Notifier = service.NopNotifier{}
	if cfg.Notify.Enabled {
		notifier = notify.NewRedisNotifier(rdb, cfg.Notify.Channel, zapLogger)
	}

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, notifier)
	handlers := handler.NewHandlers(services)

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

	// 注册路由
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

	if err := rdb.Close(); err != nil {
		zapLogger.Error("Failed to close redis client", zap.Error(err))
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

func migrateDatabase(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Asset{},
		&entity.InventoryItem{},
		&entity.InventoryTransaction{},
		&entity.PMSchedule{},
		&entity.PMAssignment{},
		&entity.WorkOrder{},
		&entity.WorkOrderLabor{},
		&entity.WorkOrderPart{},
	)
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
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

	// API v1
	v1 := r.Group("/api/v1/cmms")
	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// PM计划
		schedules := authorized.Group("/pm-schedules")
		{
			schedules.GET("", h.PMSchedule.ListSchedules)
			schedules.POST("", h.PMSchedule.CreateSchedule)
			schedules.GET("/:id", h.PMSchedule.GetSchedule)
			schedules.PUT("/:id", h.PMSchedule.UpdateSchedule)
			schedules.DELETE("/:id", middleware.RequireRole("cmms_admin"), h.PMSchedule.DeleteSchedule)
			schedules.GET("/:id/occurrences", h.PMSchedule.ListOccurrences)
			schedules.POST("/:id/occurrences/:index/materialize", h.PMSchedule.MaterializeOccurrence)
			schedules.PUT("/:id/technicians", h.PMSchedule.AssignTechnicians)
		}

		// 可分配技师
		authorized.GET("/technicians", h.PMSchedule.ListTechnicians)

		// 工单
		workOrders := authorized.Group("/work-orders")
		{
			workOrders.GET("", h.WorkOrder.ListWorkOrders)
			workOrders.POST("", h.WorkOrder.CreateWorkOrder)
			workOrders.GET("/:id", h.WorkOrder.GetWorkOrder)
			workOrders.POST("/:id/transition", h.WorkOrder.Transition)
			workOrders.POST("/:id/schedule", h.WorkOrder.Schedule)
			workOrders.POST("/:id/labor", h.WorkOrder.AddLabor)
			workOrders.POST("/:id/parts", h.WorkOrder.IssueParts)
		}

		// 库存
		inventory := authorized.Group("/inventory")
		{
			inventory.GET("", h.Inventory.ListItems)
			inventory.POST("", h.Inventory.CreateItem)
			inventory.GET("/:id", h.Inventory.GetItem)
			inventory.POST("/:id/adjust", h.Inventory.AdjustItem)
			inventory.GET("/:id/transactions", h.Inventory.ListTransactions)
		}

		// 资产
		assets := authorized.Group("/assets")
		{
			assets.GET("", h.Asset.ListAssets)
			assets.POST("", h.Asset.CreateAsset)
			assets.GET("/:id", h.Asset.GetAsset)
			assets.PUT("/:id", h.Asset.UpdateAsset)
			assets.DELETE("/:id", middleware.RequireRole("cmms_admin"), h.Asset.DeleteAsset)
		}
	}
}
