// Package logger 提供统一的日志字段名常量
package logger

// 常用 zap 字段名，保证日志检索时字段命名一致
const (
	FieldUID     = "uid"
	FieldPostID  = "postId"
	FieldClaimID = "claimId"
	FieldTraceID = "traceId"
	FieldEntity  = "entity"
	FieldStatus  = "status"
)
