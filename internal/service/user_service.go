package service

import (
	"context"

	"github.com/haierkeys/food-share-service/internal/domain"
	"github.com/haierkeys/food-share-service/internal/dto"
	"github.com/haierkeys/food-share-service/pkg/app"
	"github.com/haierkeys/food-share-service/pkg/code"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService 用户身份服务，只为引擎提供最小的注册登录能力
type UserService interface {
	// Register 注册新用户并返回令牌
	Register(ctx context.Context, req *dto.UserRegisterRequest) (*dto.UserToken, error)

	// Login 登录并返回令牌
	Login(ctx context.Context, req *dto.UserLoginRequest) (*dto.UserToken, error)
}

type userService struct {
	store           domain.Store
	tokenManager    *app.TokenManager
	logger          *zap.Logger
	registerEnabled bool
}

// NewUserService 创建用户服务
func NewUserService(opts Options, tm *app.TokenManager, registerEnabled bool) UserService {
	opts.normalize()
	return &userService{
		store:           opts.Store,
		tokenManager:    tm,
		logger:          opts.Logger,
		registerEnabled: registerEnabled,
	}
}

// Register 注册新用户
func (s *userService) Register(ctx context.Context, req *dto.UserRegisterRequest) (*dto.UserToken, error) {
	if !s.registerEnabled {
		return nil, code.ErrorUserRegisterDisabled
	}

	existing, err := s.store.Users().GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if existing != nil {
		return nil, code.ErrorUserExist
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}

	user, err := s.store.Users().Create(ctx, &domain.User{
		Email:    req.Email,
		Nickname: req.Nickname,
		Password: string(hashed),
	})
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	return s.issueToken(user)
}

// Login 登录
func (s *userService) Login(ctx context.Context, req *dto.UserLoginRequest) (*dto.UserToken, error) {
	user, err := s.store.Users().GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if user == nil {
		return nil, code.ErrorUserLoginFailed
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, code.ErrorUserLoginFailed
	}
	return s.issueToken(user)
}

func (s *userService) issueToken(user *domain.User) (*dto.UserToken, error) {
	token, err := s.tokenManager.GenerateToken(user.UID)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	return &dto.UserToken{
		UID:      user.UID,
		Email:    user.Email,
		Nickname: user.Nickname,
		Token:    token,
	}, nil
}

var _ UserService = (*userService)(nil)
