// Package model 定义数据模型
package model

import (
	"gorm.io/gorm"
)

// AutoMigrate 迁移指定模型，key 为空时迁移全部
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "Post":
		return db.AutoMigrate(Post{})
	case "Claim":
		return db.AutoMigrate(Claim{})
	case "User":
		return db.AutoMigrate(User{})
	}
	return db.AutoMigrate(Post{}, Claim{}, User{})
}
