// Package model 定义数据模型
package model

import (
	"github.com/haierkeys/food-share-service/pkg/timex"
)

// Claim 领取请求数据库模型
// (post_id, requester_uid) 上的有效请求唯一性由引擎事务保证
type Claim struct {
	ID               int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostID           int64      `gorm:"column:post_id;index;not null" json:"postId"`
	RequesterUID     int64      `gorm:"column:requester_uid;index;not null" json:"requesterUid"`
	Status           string     `gorm:"column:status;size:20;index;not null" json:"status"`
	Message          string     `gorm:"column:message;size:500" json:"message"`
	UpdatedTimestamp int64      `gorm:"column:updated_timestamp;index" json:"updatedTimestamp"`
	CreatedAt        timex.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt        timex.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName 返回表名
func (*Claim) TableName() string {
	return "claim"
}
