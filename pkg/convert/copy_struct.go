package convert

import (
	"github.com/jinzhu/copier"
)

// CopyStruct 将 src 的同名字段拷贝到 dst（dst 必须为指针）
// 用于领域模型到 DTO 的转换
func CopyStruct(dst interface{}, src interface{}) error {
	return copier.Copy(dst, src)
}
