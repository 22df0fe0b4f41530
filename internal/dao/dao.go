// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/food-share-service/internal/domain"
	"github.com/haierkeys/food-share-service/internal/model"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DatabaseConfig 数据库连接配置
type DatabaseConfig struct {
	Type            string
	Path            string
	UserName        string
	Password        string
	Host            string
	Name            string
	TablePrefix     string
	AutoMigrate     bool
	Charset         string
	ParseTime       bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	RunMode         string
}

// Dao 数据访问入口，同时实现 domain.Store
// InTx 返回的 Dao 绑定事务连接
type Dao struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New 创建 Dao 实例
func New(db *gorm.DB, lg *zap.Logger) *Dao {
	return &Dao{db: db, logger: lg}
}

// DB 返回底层 gorm 连接
func (d *Dao) DB() *gorm.DB {
	return d.db
}

// Posts 获取帖子仓储
func (d *Dao) Posts() domain.PostRepository {
	return NewPostRepository(d)
}

// Claims 获取领取请求仓储
func (d *Dao) Claims() domain.ClaimRepository {
	return NewClaimRepository(d)
}

// Users 获取用户仓储
func (d *Dao) Users() domain.UserRepository {
	return NewUserRepository(d)
}

// InTx 在单个数据库事务内执行 fn
// fn 返回错误时整个事务回滚，不留下部分状态
func (d *Dao) InTx(ctx context.Context, fn func(tx domain.Store) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Dao{db: tx, logger: d.logger})
	})
}

// AutoMigrate 执行表结构迁移
func (d *Dao) AutoMigrate() error {
	return model.AutoMigrate(d.db, "")
}

// NewDBEngine 创建数据库引擎
func NewDBEngine(c DatabaseConfig) (*gorm.DB, error) {
	dialector := userDialector(c)
	if dialector == nil {
		return nil, fmt.Errorf("unsupported database type: %s", c.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, err
	}
	if c.RunMode == "debug" {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	if c.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
	} else {
		sqlDB.SetConnMaxLifetime(time.Minute * 10)
	}

	return db, nil
}

// userDialector 按配置选择方言
func userDialector(c DatabaseConfig) gorm.Dialector {
	switch c.Type {
	case "mysql":
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			c.Charset,
			c.ParseTime,
		))
	case "postgres":
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
			c.Host,
			c.UserName,
			c.Password,
			c.Name,
		))
	case "sqlite":
		if dir := filepath.Dir(c.Path); dir != "" && dir != "." {
			_ = os.MkdirAll(dir, os.ModePerm)
		}
		return sqlite.Open(c.Path)
	}
	return nil
}

// 确保 Dao 实现了 domain.Store 接口
var _ domain.Store = (*Dao)(nil)
