package notify

import (
	"sync"

	"github.com/haierkeys/food-share-service/internal/domain"

	"go.uber.org/zap"
)

// EntityState 影子副本中单个实体的最新已知状态
type EntityState struct {
	Entity           domain.EntityKind
	ID               int64
	Status           string
	UpdatedTimestamp int64
}

// Reconciler 事件消费端的影子副本
// 按实体维护最新状态，只应用时间戳更新的事件
// 重复投递的事件在这里自然幂等
type Reconciler struct {
	mu    sync.RWMutex
	state map[entityKey]EntityState

	sub    *Subscription
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewReconciler 创建影子副本并开始消费事件
func NewReconciler(hub *Hub, lg *zap.Logger) *Reconciler {
	if lg == nil {
		lg = zap.NewNop()
	}
	r := &Reconciler{
		state:  make(map[entityKey]EntityState),
		sub:    hub.Subscribe(),
		logger: lg,
	}
	r.wg.Add(1)
	go r.run()
	return r
}

func (r *Reconciler) run() {
	defer r.wg.Done()
	for ev := range r.sub.C() {
		r.Apply(ev)
	}
}

// Apply 应用一条事件，旧事件不覆盖新状态
func (r *Reconciler) Apply(ev domain.ChangeEvent) {
	key := entityKey{Kind: ev.Entity, ID: ev.ID}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.state[key]; ok && ev.UpdatedTimestamp < cur.UpdatedTimestamp {
		return
	}
	r.state[key] = EntityState{
		Entity:           ev.Entity,
		ID:               ev.ID,
		Status:           ev.Status,
		UpdatedTimestamp: ev.UpdatedTimestamp,
	}
}

// Get 查询某个实体的最新已知状态
func (r *Reconciler) Get(kind domain.EntityKind, id int64) (EntityState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.state[entityKey{Kind: kind, ID: id}]
	return st, ok
}

// Len 影子副本中的实体数量
func (r *Reconciler) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.state)
}

// Stop 停止消费并等待退出
func (r *Reconciler) Stop() {
	r.sub.Close()
	r.wg.Wait()
}
