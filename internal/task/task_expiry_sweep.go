package task

import (
	"context"
	"time"

	"github.com/haierkeys/food-share-service/internal/app"
	"github.com/haierkeys/food-share-service/internal/routers/api_router"
	"github.com/haierkeys/food-share-service/internal/service"

	"go.uber.org/zap"
)

// init 自动注册过期扫描任务
func init() {
	Register(NewExpirySweepTask)
}

// ExpirySweepTask 过期扫描任务
// 把保质期已过的帖子置为过期并级联取消其上的有效请求
// 扫描幂等，错过的周期由下一次执行补上
type ExpirySweepTask struct {
	svc      service.SweepService
	logger   *zap.Logger
	interval time.Duration
	cronSpec string
}

// NewExpirySweepTask 创建过期扫描任务
func NewExpirySweepTask(a *app.App) (Task, error) {
	interval := a.Config().GetSweepInterval()
	if interval <= 0 {
		return nil, nil
	}
	return &ExpirySweepTask{
		svc:      a.SweepService,
		logger:   a.Logger(),
		interval: interval,
		cronSpec: a.Config().Sweep.CronSpec,
	}, nil
}

// Name 返回任务名称
func (t *ExpirySweepTask) Name() string {
	return "ExpirySweepTask"
}

// Run 执行一次扫描
func (t *ExpirySweepTask) Run(ctx context.Context) error {
	result, err := t.svc.Sweep(ctx, time.Now())
	if err != nil {
		return err
	}

	api_router.MetricSweepRuns.Inc()

	if len(result.ExpiredPostIDs) > 0 {
		t.logger.Info(t.Name()+" completed",
			zap.Int("expiredPosts", len(result.ExpiredPostIDs)),
			zap.Int("cancelledClaims", len(result.CancelledClaimIDs)))
	}
	return nil
}

// LoopInterval 返回执行间隔
func (t *ExpirySweepTask) LoopInterval() time.Duration {
	return t.interval
}

// IsStartupRun 启动时先扫一遍，补上停机期间过期的帖子
func (t *ExpirySweepTask) IsStartupRun() bool {
	return true
}

// CronSpec 配置了表达式时改用 cron 调度
func (t *ExpirySweepTask) CronSpec() string {
	return t.cronSpec
}
