package service

import (
	"context"
	"time"

	"github.com/haierkeys/food-share-service/internal/domain"
	"github.com/haierkeys/food-share-service/pkg/code"
	"github.com/haierkeys/food-share-service/pkg/logger"

	"go.uber.org/zap"
)

// LifecycleService 领取请求生命周期引擎
// 每个变更操作在单个事务内完成全部前置校验与状态写入
// 事件在事务提交后发布
type LifecycleService interface {
	// CreateClaim 对帖子发起领取请求
	CreateClaim(ctx context.Context, uid, postID int64, message string) (*domain.Claim, error)

	// AcceptClaim 发布者接受请求，级联拒绝其余待处理请求
	AcceptClaim(ctx context.Context, uid, claimID int64) (*domain.Claim, error)

	// DeclineClaim 发布者拒绝请求
	DeclineClaim(ctx context.Context, uid, claimID int64) (*domain.Claim, error)

	// CompleteClaim 当事方确认领取完成，重复调用幂等
	CompleteClaim(ctx context.Context, uid, claimID int64) (*domain.Claim, error)

	// CancelClaim 请求者撤回自己的待处理请求
	CancelClaim(ctx context.Context, uid, claimID int64) (*domain.Claim, error)

	// DeleteClaim 删除已结束的请求记录
	DeleteClaim(ctx context.Context, uid, claimID int64) error
}

type lifecycleService struct {
	store     domain.Store
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewLifecycleService 创建生命周期引擎
func NewLifecycleService(opts Options) LifecycleService {
	opts.normalize()
	return &lifecycleService{
		store:     opts.Store,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		now:       opts.Now,
	}
}

// CreateClaim 对帖子发起领取请求
func (s *lifecycleService) CreateClaim(ctx context.Context, uid, postID int64, message string) (*domain.Claim, error) {
	if err := s.sweepPostIfDue(ctx, postID); err != nil {
		return nil, err
	}

	var claim *domain.Claim
	var events []domain.ChangeEvent

	err := s.store.InTx(ctx, func(tx domain.Store) error {
		post, err := tx.Posts().GetByID(ctx, postID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if post == nil {
			return code.ErrorPostNotFound
		}
		if post.OwnerUID == uid {
			return code.ErrorClaimOwnPost
		}
		switch {
		case post.Status == domain.PostStatusExpired || post.DeadlinePassed(s.now()):
			return code.ErrorPostExpired
		case !post.Status.IsClaimable():
			return code.ErrorPostNotClaimable
		}

		existing, err := tx.Claims().GetActive(ctx, postID, uid)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if existing != nil {
			return code.ErrorDuplicateClaim
		}

		claim, err = tx.Claims().Create(ctx, &domain.Claim{
			PostID:       postID,
			RequesterUID: uid,
			Status:       domain.ClaimStatusPending,
			Message:      message,
		})
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		events = append(events, domain.NewClaimEvent(claim))

		// 首条请求把帖子从 available 推进到 requested
		hit, err := tx.Posts().UpdateStatus(ctx, postID,
			[]domain.PostStatus{domain.PostStatusAvailable}, domain.PostStatusRequested)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if hit {
			if events, err = appendPostEvent(ctx, tx, postID, events); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(events)
	return claim, nil
}

// AcceptClaim 发布者接受请求
// 帖子上的守卫更新 requested -> reserved 是并发接受的仲裁点
func (s *lifecycleService) AcceptClaim(ctx context.Context, uid, claimID int64) (*domain.Claim, error) {
	claim, post, err := s.loadClaimWithPost(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if post.OwnerUID != uid {
		return nil, code.ErrorNotPostOwner
	}
	if err := s.sweepPostIfDue(ctx, post.ID); err != nil {
		return nil, err
	}

	var result *domain.Claim
	var events []domain.ChangeEvent

	err = s.store.InTx(ctx, func(tx domain.Store) error {
		post, err := tx.Posts().GetByID(ctx, claim.PostID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if post == nil {
			return code.ErrorPostNotFound
		}
		if post.Status == domain.PostStatusExpired {
			return code.ErrorPostExpired
		}

		// 帖子守卫先行，并发落败方在触碰任何请求之前即失败
		hit, err := tx.Posts().UpdateStatus(ctx, post.ID,
			[]domain.PostStatus{domain.PostStatusAvailable, domain.PostStatusRequested},
			domain.PostStatusReserved)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if !hit {
			return code.ErrorPostAlreadyReserved
		}

		hit, err = tx.Claims().UpdateStatus(ctx, claimID,
			[]domain.ClaimStatus{domain.ClaimStatusPending}, domain.ClaimStatusAccepted)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if !hit {
			return code.ErrorClaimNotPending
		}

		declined, err := tx.Claims().CascadeStatus(ctx, post.ID,
			[]domain.ClaimStatus{domain.ClaimStatusPending}, domain.ClaimStatusDeclined, claimID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		result, err = tx.Claims().GetByID(ctx, claimID)
		if err != nil || result == nil {
			return code.ErrorDBQuery.WithDetails("claim reload failed")
		}
		events = append(events, domain.NewClaimEvent(result))
		for _, d := range declined {
			events = append(events, domain.NewClaimEvent(d))
		}
		events, err = appendPostEvent(ctx, tx, post.ID, events)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(events)
	s.logger.Info("claim accepted",
		zap.Int64(logger.FieldUID, uid),
		zap.Int64(logger.FieldClaimID, claimID),
		zap.Int64(logger.FieldPostID, claim.PostID))
	return result, nil
}

// DeclineClaim 发布者拒绝请求
// 拒绝后帖子上若再无有效请求则回到 available
func (s *lifecycleService) DeclineClaim(ctx context.Context, uid, claimID int64) (*domain.Claim, error) {
	claim, post, err := s.loadClaimWithPost(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if post.OwnerUID != uid {
		return nil, code.ErrorNotPostOwner
	}
	if err := s.sweepPostIfDue(ctx, post.ID); err != nil {
		return nil, err
	}

	var result *domain.Claim
	var events []domain.ChangeEvent

	err = s.store.InTx(ctx, func(tx domain.Store) error {
		hit, err := tx.Claims().UpdateStatus(ctx, claimID,
			[]domain.ClaimStatus{domain.ClaimStatusPending}, domain.ClaimStatusDeclined)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if !hit {
			return code.ErrorClaimNotPending
		}

		result, err = tx.Claims().GetByID(ctx, claimID)
		if err != nil || result == nil {
			return code.ErrorDBQuery.WithDetails("claim reload failed")
		}
		events = append(events, domain.NewClaimEvent(result))

		events, err = s.recomputePost(ctx, tx, claim.PostID, events)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(events)
	return result, nil
}

// CompleteClaim 当事方确认领取完成
// 已完成的请求再次确认直接返回当前状态，不产生新事件
func (s *lifecycleService) CompleteClaim(ctx context.Context, uid, claimID int64) (*domain.Claim, error) {
	claim, post, err := s.loadClaimWithPost(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !claim.IsParty(uid, post.OwnerUID) {
		return nil, code.ErrorNotClaimParty
	}
	if claim.Status == domain.ClaimStatusCompleted {
		return claim, nil
	}

	var result *domain.Claim
	var events []domain.ChangeEvent

	err = s.store.InTx(ctx, func(tx domain.Store) error {
		hit, err := tx.Claims().UpdateStatus(ctx, claimID,
			[]domain.ClaimStatus{domain.ClaimStatusAccepted}, domain.ClaimStatusCompleted)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if !hit {
			// 并发确认之间只有一方写入，落败方重读后按幂等返回
			cur, err := tx.Claims().GetByID(ctx, claimID)
			if err != nil {
				return code.ErrorDBQuery.WithDetails(err.Error())
			}
			if cur != nil && cur.Status == domain.ClaimStatusCompleted {
				result = cur
				return nil
			}
			return code.ErrorClaimNotAccepted
		}

		if _, err = tx.Posts().UpdateStatus(ctx, claim.PostID,
			domain.ActivePostStatuses(), domain.PostStatusCollected); err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}

		result, err = tx.Claims().GetByID(ctx, claimID)
		if err != nil || result == nil {
			return code.ErrorDBQuery.WithDetails("claim reload failed")
		}
		events = append(events, domain.NewClaimEvent(result))
		events, err = appendPostEvent(ctx, tx, claim.PostID, events)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(events)
	return result, nil
}

// CancelClaim 请求者撤回自己的请求
// 仅待处理的请求可撤回，已接受的请求由完成或过期路径收尾
func (s *lifecycleService) CancelClaim(ctx context.Context, uid, claimID int64) (*domain.Claim, error) {
	claim, _, err := s.loadClaimWithPost(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.RequesterUID != uid {
		return nil, code.ErrorNotClaimRequester
	}

	var result *domain.Claim
	var events []domain.ChangeEvent

	err = s.store.InTx(ctx, func(tx domain.Store) error {
		hit, err := tx.Claims().UpdateStatus(ctx, claimID,
			[]domain.ClaimStatus{domain.ClaimStatusPending}, domain.ClaimStatusCancelled)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if !hit {
			return code.ErrorClaimNotPending
		}

		result, err = tx.Claims().GetByID(ctx, claimID)
		if err != nil || result == nil {
			return code.ErrorDBQuery.WithDetails("claim reload failed")
		}
		events = append(events, domain.NewClaimEvent(result))

		events, err = s.recomputePost(ctx, tx, claim.PostID, events)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(events)
	return result, nil
}

// DeleteClaim 删除已结束的请求记录
// 只有当事方可删，且仅限终态请求，对帖子状态无影响
func (s *lifecycleService) DeleteClaim(ctx context.Context, uid, claimID int64) error {
	claim, post, err := s.loadClaimWithPost(ctx, claimID)
	if err != nil {
		return err
	}
	if !claim.IsParty(uid, post.OwnerUID) {
		return code.ErrorNotClaimParty
	}
	if !claim.Status.IsTerminal() {
		return code.ErrorClaimNotTerminal
	}

	return s.store.InTx(ctx, func(tx domain.Store) error {
		if err := tx.Claims().Delete(ctx, claimID); err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		return nil
	})
}

// loadClaimWithPost 加载请求与所属帖子
func (s *lifecycleService) loadClaimWithPost(ctx context.Context, claimID int64) (*domain.Claim, *domain.Post, error) {
	claim, err := s.store.Claims().GetByID(ctx, claimID)
	if err != nil {
		return nil, nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if claim == nil {
		return nil, nil, code.ErrorClaimNotFound
	}
	post, err := s.store.Posts().GetByID(ctx, claim.PostID)
	if err != nil {
		return nil, nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if post == nil {
		return nil, nil, code.ErrorPostNotFound
	}
	return claim, post, nil
}

// sweepPostIfDue 对单个帖子做惰性过期处理
// 与定时扫描共用同一套事务逻辑，先于任何变更操作执行
func (s *lifecycleService) sweepPostIfDue(ctx context.Context, postID int64) error {
	var events []domain.ChangeEvent

	err := s.store.InTx(ctx, func(tx domain.Store) error {
		post, err := tx.Posts().GetByID(ctx, postID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if post == nil || !post.SweepDue(s.now()) {
			return nil
		}
		events, err = expirePostTx(ctx, tx, post)
		return err
	})
	if err != nil {
		return err
	}

	s.publish(events)
	return nil
}

// recomputePost 请求被拒绝或撤回后推导帖子应处状态
// 帖子状态是请求集合的确定性函数，终态帖子不回退
func (s *lifecycleService) recomputePost(ctx context.Context, tx domain.Store, postID int64, events []domain.ChangeEvent) ([]domain.ChangeEvent, error) {
	post, err := tx.Posts().GetByID(ctx, postID)
	if err != nil {
		return events, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if post == nil || post.Status.IsTerminal() {
		return events, nil
	}

	claims, err := tx.Claims().ListByPost(ctx, postID, 0, 0)
	if err != nil {
		return events, code.ErrorDBQuery.WithDetails(err.Error())
	}
	statuses := make([]domain.ClaimStatus, 0, len(claims))
	for _, c := range claims {
		statuses = append(statuses, c.Status)
	}

	derived := domain.DerivePostStatus(statuses, post.DeadlinePassed(s.now()))
	if derived == post.Status {
		return events, nil
	}

	hit, err := tx.Posts().UpdateStatus(ctx, postID,
		[]domain.PostStatus{post.Status}, derived)
	if err != nil {
		return events, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if !hit {
		return events, nil
	}
	return appendPostEvent(ctx, tx, postID, events)
}

// expirePostTx 在事务内把帖子置为过期并级联取消有效请求
func expirePostTx(ctx context.Context, tx domain.Store, post *domain.Post) ([]domain.ChangeEvent, error) {
	hit, err := tx.Posts().UpdateStatus(ctx, post.ID,
		domain.ActivePostStatuses(), domain.PostStatusExpired)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if !hit {
		return nil, nil
	}

	var events []domain.ChangeEvent
	cancelled, err := tx.Claims().CascadeStatus(ctx, post.ID,
		domain.ActiveClaimStatuses(), domain.ClaimStatusCancelled, 0)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	for _, c := range cancelled {
		events = append(events, domain.NewClaimEvent(c))
	}
	return appendPostEvent(ctx, tx, post.ID, events)
}

// appendPostEvent 重读帖子并追加事件，事件时间戳来自库内已写入值
func appendPostEvent(ctx context.Context, tx domain.Store, postID int64, events []domain.ChangeEvent) ([]domain.ChangeEvent, error) {
	post, err := tx.Posts().GetByID(ctx, postID)
	if err != nil {
		return events, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if post == nil {
		return events, nil
	}
	return append(events, domain.NewPostEvent(post)), nil
}

func (s *lifecycleService) publish(events []domain.ChangeEvent) {
	if len(events) > 0 {
		s.publisher.Publish(events...)
	}
}

var _ LifecycleService = (*lifecycleService)(nil)
