package app

import (
	"fmt"
	"time"

	"github.com/haierkeys/food-share-service/global"
	"github.com/haierkeys/food-share-service/internal/dao"
	"github.com/haierkeys/food-share-service/internal/notify"
	"github.com/haierkeys/food-share-service/internal/service"
	pkgapp "github.com/haierkeys/food-share-service/pkg/app"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 事件通知
	Hub        *notify.Hub
	Reconciler *notify.Reconciler

	// Service 层
	LifecycleService service.LifecycleService
	PostService      service.PostService
	UserService      service.UserService
	SweepService     service.SweepService

	// 基础设施组件
	TokenManager *pkgapp.TokenManager

	StartTime time.Time
}

// NewApp 创建应用容器实例，初始化所有依赖并进行依赖注入
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:    cfg,
		logger:    logger,
		DB:        db,
		StartTime: time.Now(),
	}

	a.Dao = dao.New(db, logger)
	if cfg.Database.AutoMigrate {
		if err := a.Dao.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	a.Hub = notify.NewHub(logger)
	a.Reconciler = notify.NewReconciler(a.Hub, logger)

	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Expiry:    cfg.GetTokenExpiry(),
	})

	opts := service.Options{
		Store:     a.Dao,
		Publisher: a.Hub,
		Logger:    logger,
	}
	a.LifecycleService = service.NewLifecycleService(opts)
	a.PostService = service.NewPostService(opts)
	a.SweepService = service.NewSweepService(opts, cfg.Sweep.BatchSize)
	a.UserService = service.NewUserService(opts, a.TokenManager, cfg.User.RegisterIsEnable)

	logger.Info("App container initialized successfully")

	return a, nil
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.Reconciler != nil {
		a.Reconciler.Stop()
	}
	if a.Hub != nil {
		a.Hub.Close()
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   global.Version,
		GitTag:    global.GitTag,
		BuildTime: global.BuildTime,
	}
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}
