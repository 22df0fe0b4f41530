// Package dto 定义接口层请求与响应结构
package dto

// PostCreateRequest 发布帖子请求
type PostCreateRequest struct {
	Title      string `json:"title" binding:"required,max=255"`
	Content    string `json:"content" binding:"max=10000"`
	PickupNote string `json:"pickupNote" binding:"max=500"`
	ImageURL   string `json:"imageUrl" binding:"omitempty,url,max=1024"`
	// BestBefore 保质期，格式 2006-01-02 15:04:05，留空表示永不过期
	BestBefore string `json:"bestBefore" binding:"omitempty,datetime=2006-01-02 15:04:05"`
}

// PostListRequest 帖子列表查询
type PostListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=available requested reserved collected expired"`
}

// Post 帖子响应
type Post struct {
	ID               int64  `json:"id"`
	OwnerUID         int64  `json:"ownerUid"`
	Title            string `json:"title"`
	Content          string `json:"content"`
	PickupNote       string `json:"pickupNote"`
	ImageURL         string `json:"imageUrl"`
	Status           string `json:"status"`
	BestBefore       string `json:"bestBefore,omitempty"`
	UpdatedTimestamp int64  `json:"updatedTimestamp"`
	CreatedAt        string `json:"createdAt"`
}
