package service

import (
	"context"
	"sync"
	"time"

	"github.com/haierkeys/food-share-service/internal/domain"
	"github.com/haierkeys/food-share-service/pkg/code"
	"github.com/haierkeys/food-share-service/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// sweepConcurrency 单批内并发处理的帖子数
const sweepConcurrency = 4

// SweepResult 单次过期扫描结果
type SweepResult struct {
	ExpiredPostIDs    []int64 `json:"expiredPostIds"`
	CancelledClaimIDs []int64 `json:"cancelledClaimIds"`
}

// SweepService 过期扫描器
// 同一时刻重复执行是幂等的，已过期的帖子不会被二次处理
type SweepService interface {
	// Sweep 扫描所有已过保质期的非终态帖子，逐个置为过期并级联取消请求
	Sweep(ctx context.Context, now time.Time) (*SweepResult, error)
}

type sweepService struct {
	store     domain.Store
	publisher EventPublisher
	logger    *zap.Logger
	batchSize int
}

// NewSweepService 创建过期扫描器
func NewSweepService(opts Options, batchSize int) SweepService {
	opts.normalize()
	if batchSize <= 0 {
		batchSize = 200
	}
	return &sweepService{
		store:     opts.Store,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		batchSize: batchSize,
	}
}

// Sweep 扫描所有已过保质期的非终态帖子
// 每个帖子单独一个事务，单个失败不影响其余帖子
func (s *sweepService) Sweep(ctx context.Context, now time.Time) (*SweepResult, error) {
	result := &SweepResult{}

	for {
		due, err := s.store.Posts().ListSweepDue(ctx, now, s.batchSize)
		if err != nil {
			return nil, code.ErrorDBQuery.WithDetails(err.Error())
		}
		if len(due) == 0 {
			return result, nil
		}

		var mu sync.Mutex
		progressed := false

		g := new(errgroup.Group)
		g.SetLimit(sweepConcurrency)
		for _, post := range due {
			post := post
			g.Go(func() error {
				var events []domain.ChangeEvent

				err := s.store.InTx(ctx, func(tx domain.Store) error {
					cur, err := tx.Posts().GetByID(ctx, post.ID)
					if err != nil {
						return code.ErrorDBQuery.WithDetails(err.Error())
					}
					if cur == nil || !cur.SweepDue(now) {
						return nil
					}
					events, err = expirePostTx(ctx, tx, cur)
					return err
				})
				if err != nil {
					s.logger.Error("sweep post failed",
						zap.Int64(logger.FieldPostID, post.ID), zap.Error(err))
					return nil
				}
				if len(events) == 0 {
					return nil
				}

				mu.Lock()
				progressed = true
				for _, ev := range events {
					switch ev.Entity {
					case domain.EntityPost:
						result.ExpiredPostIDs = append(result.ExpiredPostIDs, ev.ID)
					case domain.EntityClaim:
						result.CancelledClaimIDs = append(result.CancelledClaimIDs, ev.ID)
					}
				}
				mu.Unlock()
				s.publisher.Publish(events...)
				return nil
			})
		}
		_ = g.Wait()

		// 整批没有任何推进说明剩余帖子都处理失败，避免死循环
		if !progressed {
			return result, nil
		}
	}
}

var _ SweepService = (*sweepService)(nil)
