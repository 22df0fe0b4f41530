// Package model 定义数据模型
package model

import (
	"time"

	"github.com/haierkeys/food-share-service/pkg/timex"
)

// Post 帖子数据库模型
type Post struct {
	ID               int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OwnerUID         int64      `gorm:"column:owner_uid;index;not null" json:"ownerUid"`
	Title            string     `gorm:"column:title;size:255;not null" json:"title"`
	Content          string     `gorm:"column:content;type:text" json:"content"`
	PickupNote       string     `gorm:"column:pickup_note;size:500" json:"pickupNote"`
	ImageURL         string     `gorm:"column:image_url;size:1024" json:"imageUrl"`
	Status           string     `gorm:"column:status;size:20;index;not null" json:"status"`
	BestBefore       *time.Time `gorm:"column:best_before;index" json:"bestBefore"`
	UpdatedTimestamp int64      `gorm:"column:updated_timestamp;index" json:"updatedTimestamp"`
	CreatedAt        timex.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt        timex.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName 返回表名
func (*Post) TableName() string {
	return "post"
}
