// Package domain 定义领域模型和接口
package domain

import "time"

// User 用户领域模型
// 身份子系统只为引擎提供 uid，其余字段保持最小
type User struct {
	UID       int64
	Email     string
	Nickname  string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
