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
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	catentity "github.com/altustroy/snab/internal/catalog/entity"
	cathandler "github.com/altustroy/snab/internal/catalog/handler"
	catrepo "github.com/altustroy/snab/internal/catalog/repository"
	catservice "github.com/altustroy/snab/internal/catalog/service"
	"github.com/altustroy/snab/internal/config"
	"github.com/altustroy/snab/internal/imports/archive"
	"github.com/altustroy/snab/internal/imports/bridge"
	"github.com/altustroy/snab/internal/imports/entity"
	importhandler "github.com/altustroy/snab/internal/imports/handler"
	importrepo "github.com/altustroy/snab/internal/imports/repository"
	importservice "github.com/altustroy/snab/internal/imports/service"
	"github.com/altustroy/snab/internal/middleware"
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

	zapLogger.Info("Starting snab service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&catentity.Organization{},
		&catentity.Project{},
		&catentity.Warehouse{},
		&catentity.WorkType{},
		&catentity.Characteristic{},
		&catentity.Unit{},
		&catentity.Material{},
		&entity.ColumnMappingRecord{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}
	zapLogger.Info("Database migration completed")

	rdb := initRedis(cfg.Redis)

	catalogRepos := catrepo.NewRepositories(db)
	catalogSvc := catservice.NewCatalogService(catalogRepos, rdb, zapLogger)
	catalogHandlers := cathandler.NewHandlers(catalogSvc)

	mappingRepo := importrepo.NewMappingRepository(db)
	sessionStore := importservice.NewSessionStore(cfg.Imports.SessionTTL)
	defer sessionStore.Close()

	importSvc := importservice.NewImportService(sessionStore, catalogSvc, mappingRepo, zapLogger)

	if minioClient := initMinio(cfg.MinIO, zapLogger); minioClient != nil {
		importSvc.WithArchiver(archive.NewMinioArchiver(minioClient, cfg.MinIO.Bucket))
	}

	hub := bridge.NewHub(importSvc.ApplyBridgeMessage, zapLogger)
	importSvc.WithNotifier(hub)

	importHandlers := importhandler.NewHandlers(importSvc, hub, cfg.Imports.MaxUploadSize)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/imports"})))

	registerRoutes(router, importHandlers, catalogHandlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // websocket connections stay open
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

// initMinio returns nil when object storage is not configured; the upload
// archive is optional.
func initMinio(cfg config.MinIOConfig, zapLogger *zap.Logger) *minio.Client {
	if cfg.Endpoint == "" {
		return nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		zapLogger.Warn("Failed to init MinIO client, uploads will not be archived", zap.Error(err))
		return nil
	}
	return client
}

func registerRoutes(r *gin.Engine, importH *importhandler.Handlers, catalogH *cathandler.Handlers, cfg *config.Config) {
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

	v1 := r.Group("/api/v1")
	{
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			imports := authorized.Group("/imports")
			{
				imports.POST("", importH.Import.Upload)
				imports.GET("/mapping", importH.Import.GetMapping)
				imports.PUT("/mapping", importH.Import.PutMapping)
				imports.POST("/events", importH.Import.PostEvent)
				imports.GET("/:id", importH.Import.Get)
				imports.POST("/:id/resume", importH.Import.Resume)
				imports.POST("/:id/confirm", importH.Import.Confirm)
				imports.POST("/:id/cancel", importH.Import.Cancel)
				imports.GET("/:id/ws", importH.Import.Watch)
			}

			catalog := authorized.Group("/catalog")
			{
				catalog.GET("/snapshot", catalogH.Catalog.Snapshot)

				catalog.GET("/organizations", catalogH.Catalog.ListOrganizations)
				catalog.POST("/organizations", catalogH.Catalog.CreateOrganization)

				catalog.GET("/projects", catalogH.Catalog.ListProjects)
				catalog.POST("/projects", catalogH.Catalog.CreateProject)

				catalog.GET("/warehouses", catalogH.Catalog.ListWarehouses)
				catalog.POST("/warehouses", catalogH.Catalog.CreateWarehouse)

				catalog.GET("/work-types", catalogH.Catalog.ListWorkTypes)
				catalog.POST("/work-types", catalogH.Catalog.CreateWorkType)

				catalog.GET("/characteristics", catalogH.Catalog.ListCharacteristics)
				catalog.POST("/characteristics", catalogH.Catalog.CreateCharacteristic)

				catalog.GET("/units", catalogH.Catalog.ListUnits)
				catalog.POST("/units", catalogH.Catalog.CreateUnit)

				catalog.GET("/materials", catalogH.Catalog.ListMaterials)
				catalog.POST("/materials", catalogH.Catalog.CreateMaterial)
				catalog.GET("/materials/:id", catalogH.Catalog.GetMaterial)
			}
		}
	}
}
