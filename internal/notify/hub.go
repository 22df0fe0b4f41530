// Package notify 实现状态变更事件的进程内通知中心
package notify

import (
	"sync"

	"github.com/haierkeys/food-share-service/internal/domain"

	"go.uber.org/zap"
)

// entityKey 单个实体的事件序标识
type entityKey struct {
	Kind domain.EntityKind
	ID   int64
}

// Subscription 单个订阅者
// 事件按发布顺序投递，队列无上限，慢订阅者不会丢事件
type Subscription struct {
	hub    *Hub
	out    chan domain.ChangeEvent
	mu     sync.Mutex
	queue  []domain.ChangeEvent
	wake   chan struct{}
	done   chan struct{}
	closed bool

	// lastSeen 同一实体已投递事件的最大时间戳
	// 晚到的旧事件直接丢弃，订阅者看到的每个实体单调前进
	lastSeen map[entityKey]int64
}

// C 事件接收通道
func (s *Subscription) C() <-chan domain.ChangeEvent {
	return s.out
}

// Close 取消订阅并释放泵协程
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	s.hub.remove(s)
}

// push 入队一条事件，由 Hub 在发布路径调用
func (s *Subscription) push(ev domain.ChangeEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	key := entityKey{Kind: ev.Entity, ID: ev.ID}
	if last, ok := s.lastSeen[key]; ok && ev.UpdatedTimestamp < last {
		s.mu.Unlock()
		return
	}
	s.lastSeen[key] = ev.UpdatedTimestamp

	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// pump 把队列中的事件按序送入接收通道
func (s *Subscription) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
			case <-s.done:
				return
			}
			s.mu.Lock()
		}
		batch := s.queue
		s.queue = nil
		s.mu.Unlock()

		for _, ev := range batch {
			select {
			case s.out <- ev:
			case <-s.done:
				return
			}
		}
	}
}

// Hub 进程内事件通知中心
// 发布方在事务提交后调用 Publish，投递语义为至少一次
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
	logger *zap.Logger
}

// NewHub 创建通知中心
func NewHub(lg *zap.Logger) *Hub {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		logger: lg,
	}
}

// Subscribe 注册一个订阅者，从此刻起接收后续事件
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{
		hub:      h,
		out:      make(chan domain.ChangeEvent),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		lastSeen: make(map[entityKey]int64),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		s.closed = true
		close(s.done)
		close(s.out)
		return s
	}
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	go s.pump()
	return s
}

// Publish 把事件投递到所有订阅者
// 实现 service.EventPublisher
func (h *Hub) Publish(events ...domain.ChangeEvent) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	subs := make([]*Subscription, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, ev := range events {
		for _, s := range subs {
			s.push(ev)
		}
	}
}

// Close 关闭通知中心，所有订阅随之关闭
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := make([]*Subscription, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.subs = make(map[*Subscription]struct{})
	h.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}
