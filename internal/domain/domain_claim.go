// Package domain 定义领域模型和接口
package domain

import "time"

// ClaimStatus 领取请求状态
type ClaimStatus string

const (
	// ClaimStatusPending 待帖子发布者处理
	ClaimStatusPending ClaimStatus = "pending"
	// ClaimStatusAccepted 已被发布者接受
	ClaimStatusAccepted ClaimStatus = "accepted"
	// ClaimStatusDeclined 已被发布者拒绝
	ClaimStatusDeclined ClaimStatus = "declined"
	// ClaimStatusCompleted 领取完成
	ClaimStatusCompleted ClaimStatus = "completed"
	// ClaimStatusCancelled 已取消（请求者撤回或帖子过期级联取消）
	ClaimStatusCancelled ClaimStatus = "cancelled"
)

// IsActive 判断领取请求是否仍然有效（占用帖子）
func (s ClaimStatus) IsActive() bool {
	return s == ClaimStatusPending || s == ClaimStatusAccepted
}

// IsTerminal 判断领取请求是否为终态，终态不可复活
func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimStatusDeclined || s == ClaimStatusCompleted || s == ClaimStatusCancelled
}

// ActiveClaimStatuses 有效领取请求状态集合
func ActiveClaimStatuses() []ClaimStatus {
	return []ClaimStatus{ClaimStatusPending, ClaimStatusAccepted}
}

// Claim 领取请求领域模型
type Claim struct {
	ID               int64
	PostID           int64
	RequesterUID     int64
	Status           ClaimStatus
	Message          string
	UpdatedTimestamp int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsParty 判断 uid 是否为该请求的当事方之一
// ownerUID 为所属帖子的发布者
func (c *Claim) IsParty(uid, ownerUID int64) bool {
	return uid == c.RequesterUID || uid == ownerUID
}
