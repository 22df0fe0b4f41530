package dao

import (
	"context"
	"time"

	"github.com/haierkeys/food-share-service/internal/domain"
	"github.com/haierkeys/food-share-service/internal/model"
	"github.com/haierkeys/food-share-service/pkg/timex"

	"gorm.io/gorm"
)

// postRepository 帖子仓储实现
type postRepository struct {
	dao *Dao
}

// NewPostRepository 创建帖子仓储
func NewPostRepository(dao *Dao) domain.PostRepository {
	return &postRepository{dao: dao}
}

// toDomainPost 数据库模型转领域模型
func toDomainPost(m *model.Post) *domain.Post {
	return &domain.Post{
		ID:               m.ID,
		OwnerUID:         m.OwnerUID,
		Title:            m.Title,
		Content:          m.Content,
		PickupNote:       m.PickupNote,
		ImageURL:         m.ImageURL,
		Status:           domain.PostStatus(m.Status),
		BestBefore:       m.BestBefore,
		UpdatedTimestamp: m.UpdatedTimestamp,
		CreatedAt:        m.CreatedAt.Time(),
		UpdatedAt:        m.UpdatedAt.Time(),
	}
}

// toModelPost 领域模型转数据库模型
func toModelPost(p *domain.Post) *model.Post {
	return &model.Post{
		ID:               p.ID,
		OwnerUID:         p.OwnerUID,
		Title:            p.Title,
		Content:          p.Content,
		PickupNote:       p.PickupNote,
		ImageURL:         p.ImageURL,
		Status:           string(p.Status),
		BestBefore:       p.BestBefore,
		UpdatedTimestamp: p.UpdatedTimestamp,
		CreatedAt:        timex.Time(p.CreatedAt),
		UpdatedAt:        timex.Time(p.UpdatedAt),
	}
}

// GetByID 根据ID获取帖子，不存在时返回 (nil, nil)
func (r *postRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	var m model.Post
	err := r.dao.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainPost(&m), nil
}

// Create 创建帖子
func (r *postRepository) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	m := toModelPost(post)
	now := timex.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	m.UpdatedTimestamp = now.UnixMilli()
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return toDomainPost(m), nil
}

// UpdateStatus 状态守卫的条件更新
// WHERE 子句同时携带状态前置条件，并发写入中只有一方能命中
func (r *postRepository) UpdateStatus(ctx context.Context, id int64, from []domain.PostStatus, to domain.PostStatus) (bool, error) {
	now := timex.Now()
	res := r.dao.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ? AND status IN ?", id, statusStrings(from)).
		Updates(map[string]interface{}{
			"status":            string(to),
			"updated_timestamp": now.UnixMilli(),
			"updated_at":        now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListByStatus 分页获取指定状态的帖子列表
func (r *postRepository) ListByStatus(ctx context.Context, status domain.PostStatus, page, pageSize int) ([]*domain.Post, error) {
	var ms []*model.Post
	db := r.dao.db.WithContext(ctx).Where("status = ?", string(status)).Order("id DESC")
	if pageSize > 0 {
		db = db.Offset(pageOffset(page, pageSize)).Limit(pageSize)
	}
	if err := db.Find(&ms).Error; err != nil {
		return nil, err
	}
	return mapPosts(ms), nil
}

// CountByStatus 获取指定状态的帖子数量
func (r *postRepository) CountByStatus(ctx context.Context, status domain.PostStatus) (int64, error) {
	var count int64
	err := r.dao.db.WithContext(ctx).Model(&model.Post{}).
		Where("status = ?", string(status)).Count(&count).Error
	return count, err
}

// ListByOwner 分页获取用户发布的帖子列表
func (r *postRepository) ListByOwner(ctx context.Context, ownerUID int64, page, pageSize int) ([]*domain.Post, error) {
	var ms []*model.Post
	db := r.dao.db.WithContext(ctx).Where("owner_uid = ?", ownerUID).Order("id DESC")
	if pageSize > 0 {
		db = db.Offset(pageOffset(page, pageSize)).Limit(pageSize)
	}
	if err := db.Find(&ms).Error; err != nil {
		return nil, err
	}
	return mapPosts(ms), nil
}

// CountByOwner 获取用户发布的帖子数量
func (r *postRepository) CountByOwner(ctx context.Context, ownerUID int64) (int64, error) {
	var count int64
	err := r.dao.db.WithContext(ctx).Model(&model.Post{}).
		Where("owner_uid = ?", ownerUID).Count(&count).Error
	return count, err
}

// ListSweepDue 获取保质期已过且仍处于非终态的帖子
func (r *postRepository) ListSweepDue(ctx context.Context, now time.Time, limit int) ([]*domain.Post, error) {
	var ms []*model.Post
	db := r.dao.db.WithContext(ctx).
		Where("best_before IS NOT NULL AND best_before <= ? AND status IN ?",
			now, statusStrings(domain.ActivePostStatuses())).
		Order("id ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&ms).Error; err != nil {
		return nil, err
	}
	return mapPosts(ms), nil
}

func mapPosts(ms []*model.Post) []*domain.Post {
	posts := make([]*domain.Post, 0, len(ms))
	for _, m := range ms {
		posts = append(posts, toDomainPost(m))
	}
	return posts
}

func statusStrings(statuses []domain.PostStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func pageOffset(page, pageSize int) int {
	if page <= 0 {
		page = 1
	}
	return (page - 1) * pageSize
}
