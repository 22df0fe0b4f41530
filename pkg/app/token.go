package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenIssuer 默认 Token 签发者
const DefaultTokenIssuer = "food-share-service"

// TokenConfig Token 管理器配置
type TokenConfig struct {
	SecretKey string        `yaml:"secret-key"` // JWT 签名密钥
	Expiry    time.Duration `yaml:"expiry"`     // Token 过期时间，默认 7 天
	Issuer    string        `yaml:"issuer"`     // Token 签发者
}

// UserClaims JWT 中携带的用户信息
type UserClaims struct {
	UID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// TokenManager 负责签发与解析用户令牌
type TokenManager struct {
	config TokenConfig
}

// NewTokenManager 创建 TokenManager 实例
func NewTokenManager(cfg TokenConfig) *TokenManager {
	if cfg.Expiry == 0 {
		cfg.Expiry = 7 * 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultTokenIssuer
	}
	return &TokenManager{config: cfg}
}

// GenerateToken 为用户签发 JWT
func (t *TokenManager) GenerateToken(uid int64) (string, error) {
	now := time.Now()
	claims := &UserClaims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    t.config.Issuer,
			Subject:   "user-token",
			ID:        fmt.Sprintf("%d", uid),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.config.SecretKey))
}

// ParseToken 解析 JWT 并返回用户信息
func (t *TokenManager) ParseToken(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(t.config.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ContextUIDKey gin.Context 中存储用户UID的键
const ContextUIDKey = "uid"

// GetUID 从 gin.Context 获取认证中间件注入的用户UID
func GetUID(c *gin.Context) int64 {
	if v, exists := c.Get(ContextUIDKey); exists {
		if uid, ok := v.(int64); ok {
			return uid
		}
	}
	return 0
}
