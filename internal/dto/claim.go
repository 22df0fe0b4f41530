package dto

// ClaimCreateRequest 发起领取请求
type ClaimCreateRequest struct {
	PostID  int64  `json:"postId" binding:"required,gt=0"`
	Message string `json:"message" binding:"max=500"`
}

// Claim 领取请求响应
type Claim struct {
	ID               int64  `json:"id"`
	PostID           int64  `json:"postId"`
	RequesterUID     int64  `json:"requesterUid"`
	Status           string `json:"status"`
	Message          string `json:"message"`
	UpdatedTimestamp int64  `json:"updatedTimestamp"`
	CreatedAt        string `json:"createdAt"`
}
