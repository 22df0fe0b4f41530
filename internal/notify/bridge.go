package notify

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/haierkeys/food-share-service/pkg/logger"

	"go.uber.org/zap"
)

// Broadcaster WebSocket 推送端
type Broadcaster interface {
	BroadcastAll(payload []byte)
}

// WSBridge 把通知中心的事件推送给 WebSocket 客户端
// 推送格式为 "Change|{json}"，与客户端约定的消息前缀一致
type WSBridge struct {
	sub    *Subscription
	wss    Broadcaster
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewWSBridge 创建推送桥并开始消费事件
func NewWSBridge(hub *Hub, wss Broadcaster, lg *zap.Logger) *WSBridge {
	if lg == nil {
		lg = zap.NewNop()
	}
	b := &WSBridge{
		sub:    hub.Subscribe(),
		wss:    wss,
		logger: lg,
	}
	b.wg.Add(1)
	go b.run()
	return b
}

func (b *WSBridge) run() {
	defer b.wg.Done()
	for ev := range b.sub.C() {
		payload, err := json.Marshal(ev)
		if err != nil {
			b.logger.Error("marshal change event failed", zap.Error(err))
			continue
		}
		b.wss.BroadcastAll([]byte(fmt.Sprintf("Change|%s", payload)))
		b.logger.Debug("change event pushed",
			zap.String(logger.FieldEntity, string(ev.Entity)),
			zap.Int64("id", ev.ID),
			zap.String(logger.FieldStatus, ev.Status))
	}
}

// Stop 停止推送并等待退出
func (b *WSBridge) Stop() {
	b.sub.Close()
	b.wg.Wait()
}
