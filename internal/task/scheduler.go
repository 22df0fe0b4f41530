// Package task 实现后台定时任务调度
package task

import (
	"context"
	"time"

	"github.com/haierkeys/food-share-service/pkg/safe_close"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	LoopInterval() time.Duration   // 执行间隔
	IsStartupRun() bool            // 是否立即执行一次
}

// CronTask 可选接口，返回非空表达式时任务改用 cron 调度
type CronTask interface {
	Task
	CronSpec() string
}

// Scheduler 任务调度器
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	sc     *safe_close.SafeClose
	cron   *cron.Cron
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	return &Scheduler{
		logger: logger,
		tasks:  make([]Task, 0),
		sc:     sc,
		cron:   cron.New(),
	}
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
}

// Start 启动所有任务
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	s.logger.Info("tasks starting", zap.Int("count", len(s.tasks)))

	cronUsed := false
	for _, task := range s.tasks {
		if ct, ok := task.(CronTask); ok && ct.CronSpec() != "" {
			if s.startCronTask(ct) {
				cronUsed = true
				continue
			}
		}
		s.startTask(task)
	}

	if cronUsed {
		s.cron.Start()
		s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
			defer done()
			<-closeSignal
			<-s.cron.Stop().Done()
			s.logger.Info("cron tasks stopped")
		})
	}
}

// startCronTask 按 cron 表达式调度任务
func (s *Scheduler) startCronTask(task CronTask) bool {
	_, err := s.cron.AddFunc(task.CronSpec(), func() {
		s.runOnce(task, "cronRun")
	})
	if err != nil {
		s.logger.Error("invalid cron spec, falling back to ticker",
			zap.String("name", task.Name()),
			zap.String("spec", task.CronSpec()),
			zap.Error(err))
		return false
	}
	s.logger.Info("task scheduled",
		zap.String("name", task.Name()),
		zap.String("cron", task.CronSpec()))

	if task.IsStartupRun() {
		go s.runOnce(task, "startupRun")
	}
	return true
}

// startTask 按固定间隔调度任务
func (s *Scheduler) startTask(task Task) {

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()

		if task.IsStartupRun() {
			go s.runOnce(task, "startupRun")
		}

		if task.LoopInterval() <= 0 {
			return
		}

		ticker := time.NewTicker(task.LoopInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce(task, "loopRun")
			case <-closeSignal:
				s.logger.Info("task stopped", zap.String("name", task.Name()))
				return
			}
		}
	})
}

func (s *Scheduler) runOnce(task Task, mode string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("name", task.Name()),
				zap.String("mode", mode),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()

	s.logger.Info("task running", zap.String("name", task.Name()), zap.String("mode", mode))
	if err := task.Run(context.Background()); err != nil {
		s.logger.Error("task running error",
			zap.String("name", task.Name()),
			zap.String("mode", mode),
			zap.Error(err))
	}
}
