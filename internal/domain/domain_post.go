// Package domain 定义领域模型和接口
package domain

import "time"

// PostStatus 帖子状态
type PostStatus string

const (
	// PostStatusAvailable 可领取，无任何有效领取请求
	PostStatusAvailable PostStatus = "available"
	// PostStatusRequested 存在待处理的领取请求，尚未接受
	PostStatusRequested PostStatus = "requested"
	// PostStatusReserved 已有一条领取请求被接受
	PostStatusReserved PostStatus = "reserved"
	// PostStatusCollected 领取完成
	PostStatusCollected PostStatus = "collected"
	// PostStatusExpired 已过保质期
	PostStatusExpired PostStatus = "expired"
)

// IsTerminal 判断帖子状态是否为终态
func (s PostStatus) IsTerminal() bool {
	return s == PostStatusCollected || s == PostStatusExpired
}

// IsClaimable 判断帖子状态是否可接受新的领取请求
func (s PostStatus) IsClaimable() bool {
	return s == PostStatusAvailable || s == PostStatusRequested
}

// ActivePostStatuses 扫描过期时涉及的非终态集合
func ActivePostStatuses() []PostStatus {
	return []PostStatus{PostStatusAvailable, PostStatusRequested, PostStatusReserved}
}

// Post 分享帖子领域模型
type Post struct {
	ID               int64
	OwnerUID         int64
	Title            string
	Content          string
	PickupNote       string
	ImageURL         string
	Status           PostStatus
	BestBefore       *time.Time
	UpdatedTimestamp int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DeadlinePassed 判断帖子在 now 时刻是否已过保质期
// 没有 BestBefore 的帖子永不过期
func (p *Post) DeadlinePassed(now time.Time) bool {
	if p.BestBefore == nil {
		return false
	}
	return !p.BestBefore.After(now)
}

// SweepDue 判断帖子是否需要被过期扫描处理
// 已收取的帖子不再过期，已过期的帖子无需重复处理
func (p *Post) SweepDue(now time.Time) bool {
	if p.Status.IsTerminal() {
		return false
	}
	return p.DeadlinePassed(now)
}

// DerivePostStatus 根据领取请求集合与过期情况推导帖子状态
// 帖子状态是领取请求状态的确定性函数:
// collected > expired > reserved > requested > available
func DerivePostStatus(claims []ClaimStatus, deadlinePassed bool) PostStatus {
	var hasCompleted, hasAccepted, hasPending bool
	for _, s := range claims {
		switch s {
		case ClaimStatusCompleted:
			hasCompleted = true
		case ClaimStatusAccepted:
			hasAccepted = true
		case ClaimStatusPending:
			hasPending = true
		}
	}

	switch {
	case hasCompleted:
		return PostStatusCollected
	case deadlinePassed:
		return PostStatusExpired
	case hasAccepted:
		return PostStatusReserved
	case hasPending:
		return PostStatusRequested
	default:
		return PostStatusAvailable
	}
}
