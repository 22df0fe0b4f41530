// Package domain 定义领域模型和接口
package domain

import (
	"context"
	"time"
)

// PostRepository 帖子仓储接口
// Get 类方法在记录不存在时返回 (nil, nil)
type PostRepository interface {
	// GetByID 根据ID获取帖子
	GetByID(ctx context.Context, id int64) (*Post, error)

	// Create 创建帖子
	Create(ctx context.Context, post *Post) (*Post, error)

	// UpdateStatus 状态守卫的条件更新
	// 仅当帖子当前状态在 from 集合内时写入 to，返回是否命中
	// 并发接受的唯一仲裁点
	UpdateStatus(ctx context.Context, id int64, from []PostStatus, to PostStatus) (bool, error)

	// ListByStatus 分页获取指定状态的帖子列表
	ListByStatus(ctx context.Context, status PostStatus, page, pageSize int) ([]*Post, error)

	// CountByStatus 获取指定状态的帖子数量
	CountByStatus(ctx context.Context, status PostStatus) (int64, error)

	// ListByOwner 分页获取用户发布的帖子列表
	ListByOwner(ctx context.Context, ownerUID int64, page, pageSize int) ([]*Post, error)

	// CountByOwner 获取用户发布的帖子数量
	CountByOwner(ctx context.Context, ownerUID int64) (int64, error)

	// ListSweepDue 获取保质期已过且仍处于非终态的帖子
	ListSweepDue(ctx context.Context, now time.Time, limit int) ([]*Post, error)
}

// ClaimRepository 领取请求仓储接口
type ClaimRepository interface {
	// GetByID 根据ID获取领取请求
	GetByID(ctx context.Context, id int64) (*Claim, error)

	// GetActive 获取某用户在某帖子上的有效领取请求（pending/accepted）
	GetActive(ctx context.Context, postID, requesterUID int64) (*Claim, error)

	// Create 创建领取请求
	Create(ctx context.Context, claim *Claim) (*Claim, error)

	// UpdateStatus 状态守卫的条件更新
	// 仅当请求当前状态在 from 集合内时写入 to，返回是否命中
	UpdateStatus(ctx context.Context, id int64, from []ClaimStatus, to ClaimStatus) (bool, error)

	// CascadeStatus 批量状态迁移
	// 将帖子 postID 上状态在 from 集合内、且 ID 不等于 excludeID 的请求全部置为 to
	// 返回迁移后的请求列表，用于生成事件；excludeID 为 0 表示不排除
	CascadeStatus(ctx context.Context, postID int64, from []ClaimStatus, to ClaimStatus, excludeID int64) ([]*Claim, error)

	// CountActiveByPost 获取帖子上的有效领取请求数量
	CountActiveByPost(ctx context.Context, postID int64) (int64, error)

	// ListByPost 分页获取帖子上的领取请求列表
	ListByPost(ctx context.Context, postID int64, page, pageSize int) ([]*Claim, error)

	// CountByPost 获取帖子上的领取请求数量
	CountByPost(ctx context.Context, postID int64) (int64, error)

	// ListByRequester 分页获取用户发起的领取请求列表
	ListByRequester(ctx context.Context, requesterUID int64, page, pageSize int) ([]*Claim, error)

	// CountByRequester 获取用户发起的领取请求数量
	CountByRequester(ctx context.Context, requesterUID int64) (int64, error)

	// ListTerminalBefore 获取更新时间早于 cutoff（毫秒时间戳）的终态请求
	ListTerminalBefore(ctx context.Context, cutoff int64, limit int) ([]*Claim, error)

	// Delete 物理删除领取请求，仅限终态记录的清理路径调用
	Delete(ctx context.Context, id int64) error
}

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByUID 根据UID获取用户
	GetByUID(ctx context.Context, uid int64) (*User, error)

	// GetByEmail 根据邮箱获取用户
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Create 创建用户
	Create(ctx context.Context, user *User) (*User, error)
}

// Store 聚合仓储并提供事务边界
// InTx 内拿到的 Store 绑定同一事务，回调返回错误则整体回滚
// 引擎的每个变更操作都必须在单个 InTx 内完成
type Store interface {
	Posts() PostRepository
	Claims() ClaimRepository
	Users() UserRepository

	InTx(ctx context.Context, fn func(tx Store) error) error
}
