// Package model 定义数据模型
package model

import (
	"github.com/haierkeys/food-share-service/pkg/timex"
)

// User 用户数据库模型
type User struct {
	UID       int64      `gorm:"column:uid;primaryKey;autoIncrement" json:"uid"`
	Email     string     `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	Nickname  string     `gorm:"column:nickname;size:100" json:"nickname"`
	Password  string     `gorm:"column:password;size:255" json:"-"`
	CreatedAt timex.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName 返回表名
func (*User) TableName() string {
	return "user"
}
