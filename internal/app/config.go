// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File     string         `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	App      AppSettings    `yaml:"app"`
	User     UserConfig     `yaml:"user"`
	Security SecurityConfig `yaml:"security"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Tracer   TracerConfig   `yaml:"tracer"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"warn"`
	// File 日志文件路径，默认为 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/db.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机
	Host string `yaml:"host"`
	// Name 数据库名
	Name string `yaml:"name"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// Charset 字符集
	Charset string `yaml:"charset" default:"utf8mb4"`
	// ParseTime 是否解析时间
	ParseTime bool `yaml:"parse-time" default:"true"`
	// MaxIdleConns 最大闲置连接数
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m、1h
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultPageSize 默认页面大小
	DefaultPageSize int `yaml:"default-page-size" default:"10"`
	// MaxPageSize 最大页面大小
	MaxPageSize int `yaml:"max-page-size" default:"100"`
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
}

// UserConfig 用户配置
type UserConfig struct {
	// RegisterIsEnable 注册是否启用
	RegisterIsEnable bool `yaml:"register-is-enable" default:"true"`
	// AdminUID 管理员 UID，0 表示不限制管理员访问
	AdminUID int64 `yaml:"admin-uid" default:"0"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthTokenKey string `yaml:"auth-token-key" default:"food-share-Auth-Token"`
	// TokenExpiry Token 过期时间，支持格式：7d（天）、24h（小时）、30m（分钟）
	TokenExpiry string `yaml:"token-expiry" default:"7d"`
}

// SweepConfig 过期扫描配置
type SweepConfig struct {
	// Interval 扫描间隔，支持格式：30s、1m
	Interval string `yaml:"interval" default:"1m"`
	// BatchSize 单批处理的帖子数
	BatchSize int `yaml:"batch-size" default:"200"`
	// CronSpec 非空时改用 cron 表达式调度扫描
	CronSpec string `yaml:"cron-spec"`
	// ClaimRetention 终态请求保留时间，超过后由清理任务物理删除
	ClaimRetention string `yaml:"claim-retention" default:"30d"`
	// CleanupInterval 终态请求清理间隔
	CleanupInterval string `yaml:"cleanup-interval" default:"1h"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Header  string `yaml:"header" default:"X-Trace-ID"`
}

// LoadConfig 从文件加载配置，缺省值由 default 标签补齐
func LoadConfig(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(err, "set config defaults")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config file %s", path)
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config file %s", path)
	}

	cfg.File = path
	return cfg, nil
}

// LoadConfigFromBytes 从内容加载配置，用于内嵌的默认配置
func LoadConfigFromBytes(content []byte) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(err, "set config defaults")
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, errors.Wrap(err, "parse embedded config")
	}
	return cfg, nil
}

// ParseDuration 解析带 d 后缀的时长，其余交给 time.ParseDuration
func ParseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, errors.Wrapf(err, "parse duration %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// GetTokenExpiry Token 过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	d, err := ParseDuration(c.Security.TokenExpiry)
	if err != nil {
		return 7 * 24 * time.Hour
	}
	return d
}

// GetSweepInterval 过期扫描间隔
func (c *AppConfig) GetSweepInterval() time.Duration {
	d, err := ParseDuration(c.Sweep.Interval)
	if err != nil {
		return time.Minute
	}
	return d
}

// GetClaimRetention 终态请求保留时间
func (c *AppConfig) GetClaimRetention() time.Duration {
	d, err := ParseDuration(c.Sweep.ClaimRetention)
	if err != nil {
		return 30 * 24 * time.Hour
	}
	return d
}

// GetCleanupInterval 终态请求清理间隔
func (c *AppConfig) GetCleanupInterval() time.Duration {
	d, err := ParseDuration(c.Sweep.CleanupInterval)
	if err != nil {
		return time.Hour
	}
	return d
}

// GetConnMaxLifetime 数据库连接最大生命周期
func (c *AppConfig) GetConnMaxLifetime() time.Duration {
	d, err := ParseDuration(c.Database.ConnMaxLifetime)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}
