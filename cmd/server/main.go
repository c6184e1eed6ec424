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

	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/config"
	mentity "github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/maintenance/entity"
	mhandler "github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/maintenance/handler"
	mrepository "github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/maintenance/repository"
	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/middleware"
	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/entity"
	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/handler"
	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/repository"
	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/procurement/service"
	"github.com/dssolutions-mx/mtto-dcconcretos-sub007/internal/storage"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting mtto-dcconcretos service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&mentity.Plant{},
		&mentity.WorkOrder{},
		&entity.PurchaseOrder{},
		&entity.POItem{},
		&entity.ActivityLog{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	// Columns GORM may skip when the tables pre-date the jsonb quotation list
	migrations := []string{
		"ALTER TABLE purchase_orders ADD COLUMN IF NOT EXISTS quotation_urls JSONB DEFAULT '[]'::jsonb",
		"ALTER TABLE purchase_orders ADD COLUMN IF NOT EXISTS quotation_selection_status VARCHAR(30) DEFAULT ''",
		"CREATE INDEX IF NOT EXISTS idx_po_status_type ON purchase_orders (status, po_type)",
		"CREATE INDEX IF NOT EXISTS idx_activity_entity ON po_activity_logs (entity_type, entity_id)",
	}
	for _, m := range migrations {
		if err := db.Exec(m).Error; err != nil {
			zapLogger.Warn("Migration warning", zap.String("sql", m), zap.Error(err))
		}
	}

	rdb := initRedis(cfg.Redis)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("Redis not reachable, workflow status cache disabled", zap.Error(err))
		rdb = nil
	}

	var evidence *storage.EvidenceStore
	if cfg.MinIO.Endpoint != "" {
		evidence, err = storage.NewEvidenceStore(cfg.MinIO)
		if err != nil {
			zapLogger.Warn("MinIO not configured, quotation uploads disabled", zap.Error(err))
		} else if err := evidence.EnsureBucket(context.Background()); err != nil {
			zapLogger.Warn("MinIO bucket check failed", zap.Error(err))
		}
	}

	// Wire repositories, services and handlers
	repos := repository.NewRepositories(db)
	orderSvc := service.NewOrderService(repos.PO, repos.ActivityLog)
	workflowSvc := service.NewWorkflowService(repos.PO, zapLogger)
	if rdb != nil {
		workflowSvc.SetRedis(rdb)
	}

	handlers := &handler.Handlers{
		PO:       handler.NewPOHandler(orderSvc, repos.ActivityLog),
		Workflow: handler.NewWorkflowHandler(workflowSvc, evidence),
	}

	workOrderRepo := mrepository.NewWorkOrderRepository(db)
	workOrderHandler := mhandler.NewWorkOrderHandler(workOrderRepo)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, workOrderHandler, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

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

func registerRoutes(r *gin.Engine, h *handler.Handlers, woH *mhandler.WorkOrderHandler, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": 40400, "message": "Not found"})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		orders := v1.Group("/purchase-orders")
		{
			orders.GET("", h.PO.ListOrders)
			orders.POST("", h.PO.CreateOrder)
			orders.POST("/validate", h.PO.ValidateCreate)
			orders.GET("/quote-requirement", h.PO.QuoteRequirement)
			orders.GET("/export", h.PO.ExportOrders)
			orders.GET("/:id", h.PO.GetOrder)
			orders.GET("/:id/activity", h.PO.ListActivity)
			orders.POST("/:id/advance", h.Workflow.Advance)
			orders.GET("/:id/workflow-status", h.Workflow.GetStatus)
			orders.POST("/:id/quotations", h.Workflow.AddQuotation)
			orders.POST("/:id/quotations/select", h.Workflow.SelectQuotation)
			orders.POST("/:id/quotations/upload-url", h.Workflow.QuotationUploadURL)
			orders.POST("/:id/quotations/download-url", h.Workflow.QuotationDownloadURL)
		}

		workOrders := v1.Group("/work-orders")
		{
			workOrders.GET("", woH.List)
			workOrders.GET("/:id", woH.Get)
			workOrders.POST("", woH.Create)
		}

		plants := v1.Group("/plants")
		{
			plants.GET("", woH.ListPlants)
			plants.POST("", woH.CreatePlant)
		}
	}
}
