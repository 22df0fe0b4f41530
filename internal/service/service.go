// Package service 实现业务逻辑层
package service

import (
	"time"

	"github.com/haierkeys/food-share-service/internal/domain"

	"go.uber.org/zap"
)

// EventPublisher 状态变更事件发布接口
// 事务提交后调用，至少一次投递由通知中心保证
type EventPublisher interface {
	Publish(events ...domain.ChangeEvent)
}

// NopPublisher 空实现，供测试与无推送场景使用
type NopPublisher struct{}

func (NopPublisher) Publish(events ...domain.ChangeEvent) {}

// Options 服务层公共依赖
// Now 可注入，测试中用于控制时钟
type Options struct {
	Store     domain.Store
	Publisher EventPublisher
	Logger    *zap.Logger
	Now       func() time.Time
}

func (o *Options) normalize() {
	if o.Publisher == nil {
		o.Publisher = NopPublisher{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}
