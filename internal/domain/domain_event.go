// Package domain 定义领域模型和接口
package domain

// EntityKind 事件实体类型
type EntityKind string

const (
	EntityPost  EntityKind = "post"
	EntityClaim EntityKind = "claim"
)

// ChangeEvent 每次已提交的状态变更对应一条事件
// UpdatedTimestamp 是同一实体上事件排序与去重的单调键
type ChangeEvent struct {
	Entity           EntityKind `json:"entity"`
	ID               int64      `json:"id"`
	Status           string     `json:"status"`
	UpdatedTimestamp int64      `json:"updatedTimestamp"`
}

// NewPostEvent 由帖子当前状态生成事件
func NewPostEvent(p *Post) ChangeEvent {
	return ChangeEvent{
		Entity:           EntityPost,
		ID:               p.ID,
		Status:           string(p.Status),
		UpdatedTimestamp: p.UpdatedTimestamp,
	}
}

// NewClaimEvent 由领取请求当前状态生成事件
func NewClaimEvent(c *Claim) ChangeEvent {
	return ChangeEvent{
		Entity:           EntityClaim,
		ID:               c.ID,
		Status:           string(c.Status),
		UpdatedTimestamp: c.UpdatedTimestamp,
	}
}
