package task

import (
	"context"
	"time"

	"github.com/haierkeys/food-share-service/internal/app"
	"github.com/haierkeys/food-share-service/internal/domain"

	"go.uber.org/zap"
)

// init 自动注册终态请求清理任务
func init() {
	Register(NewClaimCleanupTask)
}

// ClaimCleanupTask 终态请求清理任务
// 物理删除超过保留时间的 declined/completed/cancelled 请求
type ClaimCleanupTask struct {
	store     domain.Store
	logger    *zap.Logger
	retention time.Duration
	interval  time.Duration
	batchSize int
}

// NewClaimCleanupTask 创建清理任务
func NewClaimCleanupTask(a *app.App) (Task, error) {
	retention := a.Config().GetClaimRetention()
	if retention <= 0 {
		return nil, nil
	}
	return &ClaimCleanupTask{
		store:     a.Dao,
		logger:    a.Logger(),
		retention: retention,
		interval:  a.Config().GetCleanupInterval(),
		batchSize: 500,
	}, nil
}

// Name 返回任务名称
func (t *ClaimCleanupTask) Name() string {
	return "ClaimCleanupTask"
}

// Run 执行一次清理
func (t *ClaimCleanupTask) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-t.retention).UnixMilli()

	deleted := 0
	for {
		claims, err := t.store.Claims().ListTerminalBefore(ctx, cutoff, t.batchSize)
		if err != nil {
			return err
		}
		if len(claims) == 0 {
			break
		}

		err = t.store.InTx(ctx, func(tx domain.Store) error {
			for _, c := range claims {
				if err := tx.Claims().Delete(ctx, c.ID); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		deleted += len(claims)

		if len(claims) < t.batchSize {
			break
		}
	}

	if deleted > 0 {
		t.logger.Info(t.Name()+" completed", zap.Int("deleted", deleted))
	}
	return nil
}

// LoopInterval 返回执行间隔
func (t *ClaimCleanupTask) LoopInterval() time.Duration {
	return t.interval
}

// IsStartupRun 启动时不抢跑，等首个周期
func (t *ClaimCleanupTask) IsStartupRun() bool {
	return false
}
