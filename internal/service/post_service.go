package service

import (
	"context"
	"time"

	"github.com/haierkeys/food-share-service/internal/domain"
	"github.com/haierkeys/food-share-service/internal/dto"
	"github.com/haierkeys/food-share-service/pkg/code"
	"github.com/haierkeys/food-share-service/pkg/convert"
	"github.com/haierkeys/food-share-service/pkg/timex"

	"go.uber.org/zap"
)

// PostService 帖子读写服务
// 读路径在返回前对已过保质期的帖子做惰性过期处理
type PostService interface {
	// Offer 发布分享帖子，初始状态为 available
	Offer(ctx context.Context, uid int64, req *dto.PostCreateRequest) (*dto.Post, error)

	// Get 获取单个帖子
	Get(ctx context.Context, postID int64) (*dto.Post, error)

	// List 分页获取指定状态的帖子列表
	List(ctx context.Context, req *dto.PostListRequest, page, pageSize int) ([]*dto.Post, int64, error)

	// ListByOwner 分页获取用户发布的帖子列表
	ListByOwner(ctx context.Context, ownerUID int64, page, pageSize int) ([]*dto.Post, int64, error)

	// ListClaims 发布者查看帖子上的领取请求
	ListClaims(ctx context.Context, uid, postID int64, page, pageSize int) ([]*dto.Claim, int64, error)

	// ListClaimsByRequester 用户查看自己发起的领取请求
	ListClaimsByRequester(ctx context.Context, uid int64, page, pageSize int) ([]*dto.Claim, int64, error)
}

type postService struct {
	store     domain.Store
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewPostService 创建帖子服务
func NewPostService(opts Options) PostService {
	opts.normalize()
	return &postService{
		store:     opts.Store,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		now:       opts.Now,
	}
}

// Offer 发布分享帖子
func (s *postService) Offer(ctx context.Context, uid int64, req *dto.PostCreateRequest) (*dto.Post, error) {
	post := &domain.Post{
		OwnerUID:   uid,
		Title:      req.Title,
		Content:    req.Content,
		PickupNote: req.PickupNote,
		ImageURL:   req.ImageURL,
		Status:     domain.PostStatusAvailable,
	}
	if req.BestBefore != "" {
		t, err := time.ParseInLocation(timex.TimeLayout, req.BestBefore, time.Local)
		if err != nil {
			return nil, code.ErrorInvalidParams.WithDetails(err.Error())
		}
		if !t.After(s.now()) {
			return nil, code.ErrorInvalidParams.WithDetails("bestBefore must be in the future")
		}
		post.BestBefore = &t
	}

	created, err := s.store.Posts().Create(ctx, post)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.publisher.Publish(domain.NewPostEvent(created))
	return toPostDTO(created), nil
}

// Get 获取单个帖子，已过保质期的先惰性置为过期
func (s *postService) Get(ctx context.Context, postID int64) (*dto.Post, error) {
	post, err := s.store.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if post == nil {
		return nil, code.ErrorPostNotFound
	}

	if post.SweepDue(s.now()) {
		if err := s.lazySweep(ctx, post); err != nil {
			return nil, err
		}
		if post, err = s.store.Posts().GetByID(ctx, postID); err != nil {
			return nil, code.ErrorDBQuery.WithDetails(err.Error())
		}
		if post == nil {
			return nil, code.ErrorPostNotFound
		}
	}
	return toPostDTO(post), nil
}

// List 分页获取指定状态的帖子列表
func (s *postService) List(ctx context.Context, req *dto.PostListRequest, page, pageSize int) ([]*dto.Post, int64, error) {
	status := domain.PostStatusAvailable
	if req.Status != "" {
		status = domain.PostStatus(req.Status)
	}

	if err := s.sweepDueForRead(ctx); err != nil {
		return nil, 0, err
	}

	posts, err := s.store.Posts().ListByStatus(ctx, status, page, pageSize)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	count, err := s.store.Posts().CountByStatus(ctx, status)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return toPostDTOs(posts), count, nil
}

// ListByOwner 分页获取用户发布的帖子列表
func (s *postService) ListByOwner(ctx context.Context, ownerUID int64, page, pageSize int) ([]*dto.Post, int64, error) {
	if err := s.sweepDueForRead(ctx); err != nil {
		return nil, 0, err
	}

	posts, err := s.store.Posts().ListByOwner(ctx, ownerUID, page, pageSize)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	count, err := s.store.Posts().CountByOwner(ctx, ownerUID)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return toPostDTOs(posts), count, nil
}

// ListClaims 发布者查看帖子上的领取请求
func (s *postService) ListClaims(ctx context.Context, uid, postID int64, page, pageSize int) ([]*dto.Claim, int64, error) {
	post, err := s.store.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if post == nil {
		return nil, 0, code.ErrorPostNotFound
	}
	if post.OwnerUID != uid {
		return nil, 0, code.ErrorNotPostOwner
	}

	claims, err := s.store.Claims().ListByPost(ctx, postID, page, pageSize)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	count, err := s.store.Claims().CountByPost(ctx, postID)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return toClaimDTOs(claims), count, nil
}

// ListClaimsByRequester 用户查看自己发起的领取请求
func (s *postService) ListClaimsByRequester(ctx context.Context, uid int64, page, pageSize int) ([]*dto.Claim, int64, error) {
	claims, err := s.store.Claims().ListByRequester(ctx, uid, page, pageSize)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	count, err := s.store.Claims().CountByRequester(ctx, uid)
	if err != nil {
		return nil, 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return toClaimDTOs(claims), count, nil
}

// lazySweepLimit 列表读路径单次惰性处理的帖子上限，超出部分交给定时扫描
const lazySweepLimit = 200

// sweepDueForRead 列表读路径前的惰性过期处理
// 保证已过保质期的帖子不会再以 available 出现在列表里
func (s *postService) sweepDueForRead(ctx context.Context) error {
	due, err := s.store.Posts().ListSweepDue(ctx, s.now(), lazySweepLimit)
	if err != nil {
		return code.ErrorDBQuery.WithDetails(err.Error())
	}
	for _, post := range due {
		if err := s.lazySweep(ctx, post); err != nil {
			return err
		}
	}
	return nil
}

// lazySweep 读路径上的单帖过期处理
func (s *postService) lazySweep(ctx context.Context, post *domain.Post) error {
	var events []domain.ChangeEvent
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		cur, err := tx.Posts().GetByID(ctx, post.ID)
		if err != nil {
			return code.ErrorDBQuery.WithDetails(err.Error())
		}
		if cur == nil || !cur.SweepDue(s.now()) {
			return nil
		}
		events, err = expirePostTx(ctx, tx, cur)
		return err
	})
	if err != nil {
		return err
	}
	if len(events) > 0 {
		s.publisher.Publish(events...)
	}
	return nil
}

// toPostDTO 领域模型转响应结构
func toPostDTO(p *domain.Post) *dto.Post {
	out := &dto.Post{}
	_ = convert.CopyStruct(out, p)
	out.Status = string(p.Status)
	if p.BestBefore != nil {
		out.BestBefore = p.BestBefore.Format(timex.TimeLayout)
	} else {
		out.BestBefore = ""
	}
	out.CreatedAt = p.CreatedAt.Format(timex.TimeLayout)
	return out
}

func toPostDTOs(posts []*domain.Post) []*dto.Post {
	out := make([]*dto.Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostDTO(p))
	}
	return out
}

// toClaimDTO 领域模型转响应结构
func toClaimDTO(c *domain.Claim) *dto.Claim {
	out := &dto.Claim{}
	_ = convert.CopyStruct(out, c)
	out.Status = string(c.Status)
	out.CreatedAt = c.CreatedAt.Format(timex.TimeLayout)
	return out
}

func toClaimDTOs(claims []*domain.Claim) []*dto.Claim {
	out := make([]*dto.Claim, 0, len(claims))
	for _, c := range claims {
		out = append(out, toClaimDTO(c))
	}
	return out
}

var _ PostService = (*postService)(nil)
