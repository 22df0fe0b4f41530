package dao

import (
	"context"

	"github.com/haierkeys/food-share-service/internal/domain"
	"github.com/haierkeys/food-share-service/internal/model"
	"github.com/haierkeys/food-share-service/pkg/timex"

	"gorm.io/gorm"
)

// userRepository 用户仓储实现
type userRepository struct {
	dao *Dao
}

// NewUserRepository 创建用户仓储
func NewUserRepository(dao *Dao) domain.UserRepository {
	return &userRepository{dao: dao}
}

func toDomainUser(m *model.User) *domain.User {
	return &domain.User{
		UID:       m.UID,
		Email:     m.Email,
		Nickname:  m.Nickname,
		Password:  m.Password,
		CreatedAt: m.CreatedAt.Time(),
		UpdatedAt: m.UpdatedAt.Time(),
	}
}

// GetByUID 根据UID获取用户，不存在时返回 (nil, nil)
func (r *userRepository) GetByUID(ctx context.Context, uid int64) (*domain.User, error) {
	var m model.User
	err := r.dao.db.WithContext(ctx).Where("uid = ?", uid).First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainUser(&m), nil
}

// GetByEmail 根据邮箱获取用户，不存在时返回 (nil, nil)
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m model.User
	err := r.dao.db.WithContext(ctx).Where("email = ?", email).First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainUser(&m), nil
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	now := timex.Now()
	m := &model.User{
		Email:     user.Email,
		Nickname:  user.Nickname,
		Password:  user.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return toDomainUser(m), nil
}
