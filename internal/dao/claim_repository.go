package dao

import (
	"context"

	"github.com/haierkeys/food-share-service/internal/domain"
	"github.com/haierkeys/food-share-service/internal/model"
	"github.com/haierkeys/food-share-service/pkg/timex"

	"gorm.io/gorm"
)

// claimRepository 领取请求仓储实现
type claimRepository struct {
	dao *Dao
}

// NewClaimRepository 创建领取请求仓储
func NewClaimRepository(dao *Dao) domain.ClaimRepository {
	return &claimRepository{dao: dao}
}

// toDomainClaim 数据库模型转领域模型
func toDomainClaim(m *model.Claim) *domain.Claim {
	return &domain.Claim{
		ID:               m.ID,
		PostID:           m.PostID,
		RequesterUID:     m.RequesterUID,
		Status:           domain.ClaimStatus(m.Status),
		Message:          m.Message,
		UpdatedTimestamp: m.UpdatedTimestamp,
		CreatedAt:        m.CreatedAt.Time(),
		UpdatedAt:        m.UpdatedAt.Time(),
	}
}

// GetByID 根据ID获取领取请求，不存在时返回 (nil, nil)
func (r *claimRepository) GetByID(ctx context.Context, id int64) (*domain.Claim, error) {
	var m model.Claim
	err := r.dao.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainClaim(&m), nil
}

// GetActive 获取某用户在某帖子上的有效领取请求
func (r *claimRepository) GetActive(ctx context.Context, postID, requesterUID int64) (*domain.Claim, error) {
	var m model.Claim
	err := r.dao.db.WithContext(ctx).
		Where("post_id = ? AND requester_uid = ? AND status IN ?",
			postID, requesterUID, claimStatusStrings(domain.ActiveClaimStatuses())).
		First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomainClaim(&m), nil
}

// Create 创建领取请求
func (r *claimRepository) Create(ctx context.Context, claim *domain.Claim) (*domain.Claim, error) {
	now := timex.Now()
	m := &model.Claim{
		PostID:           claim.PostID,
		RequesterUID:     claim.RequesterUID,
		Status:           string(claim.Status),
		Message:          claim.Message,
		UpdatedTimestamp: now.UnixMilli(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return toDomainClaim(m), nil
}

// UpdateStatus 状态守卫的条件更新
func (r *claimRepository) UpdateStatus(ctx context.Context, id int64, from []domain.ClaimStatus, to domain.ClaimStatus) (bool, error) {
	now := timex.Now()
	res := r.dao.db.WithContext(ctx).Model(&model.Claim{}).
		Where("id = ? AND status IN ?", id, claimStatusStrings(from)).
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

// CascadeStatus 批量状态迁移
// 先查出目标集合再更新，返回迁移后的请求用于生成事件
func (r *claimRepository) CascadeStatus(ctx context.Context, postID int64, from []domain.ClaimStatus, to domain.ClaimStatus, excludeID int64) ([]*domain.Claim, error) {
	db := r.dao.db.WithContext(ctx)

	var ms []*model.Claim
	q := db.Where("post_id = ? AND status IN ?", postID, claimStatusStrings(from))
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Order("id ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.ID)
	}

	now := timex.Now()
	res := db.Model(&model.Claim{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":            string(to),
			"updated_timestamp": now.UnixMilli(),
			"updated_at":        now,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	claims := make([]*domain.Claim, 0, len(ms))
	for _, m := range ms {
		m.Status = string(to)
		m.UpdatedTimestamp = now.UnixMilli()
		m.UpdatedAt = now
		claims = append(claims, toDomainClaim(m))
	}
	return claims, nil
}

// CountActiveByPost 获取帖子上的有效领取请求数量
func (r *claimRepository) CountActiveByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := r.dao.db.WithContext(ctx).Model(&model.Claim{}).
		Where("post_id = ? AND status IN ?", postID, claimStatusStrings(domain.ActiveClaimStatuses())).
		Count(&count).Error
	return count, err
}

// ListByPost 分页获取帖子上的领取请求列表
func (r *claimRepository) ListByPost(ctx context.Context, postID int64, page, pageSize int) ([]*domain.Claim, error) {
	var ms []*model.Claim
	db := r.dao.db.WithContext(ctx).Where("post_id = ?", postID).Order("id ASC")
	if pageSize > 0 {
		db = db.Offset(pageOffset(page, pageSize)).Limit(pageSize)
	}
	if err := db.Find(&ms).Error; err != nil {
		return nil, err
	}
	return mapClaims(ms), nil
}

// CountByPost 获取帖子上的领取请求数量
func (r *claimRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := r.dao.db.WithContext(ctx).Model(&model.Claim{}).
		Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// ListByRequester 分页获取用户发起的领取请求列表
func (r *claimRepository) ListByRequester(ctx context.Context, requesterUID int64, page, pageSize int) ([]*domain.Claim, error) {
	var ms []*model.Claim
	db := r.dao.db.WithContext(ctx).Where("requester_uid = ?", requesterUID).Order("id DESC")
	if pageSize > 0 {
		db = db.Offset(pageOffset(page, pageSize)).Limit(pageSize)
	}
	if err := db.Find(&ms).Error; err != nil {
		return nil, err
	}
	return mapClaims(ms), nil
}

// CountByRequester 获取用户发起的领取请求数量
func (r *claimRepository) CountByRequester(ctx context.Context, requesterUID int64) (int64, error) {
	var count int64
	err := r.dao.db.WithContext(ctx).Model(&model.Claim{}).
		Where("requester_uid = ?", requesterUID).Count(&count).Error
	return count, err
}

// ListTerminalBefore 获取更新时间早于 cutoff 的终态请求
func (r *claimRepository) ListTerminalBefore(ctx context.Context, cutoff int64, limit int) ([]*domain.Claim, error) {
	terminal := []string{
		string(domain.ClaimStatusDeclined),
		string(domain.ClaimStatusCompleted),
		string(domain.ClaimStatusCancelled),
	}
	var ms []*model.Claim
	db := r.dao.db.WithContext(ctx).
		Where("status IN ? AND updated_timestamp < ?", terminal, cutoff).
		Order("id ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&ms).Error; err != nil {
		return nil, err
	}
	return mapClaims(ms), nil
}

// Delete 物理删除领取请求
func (r *claimRepository) Delete(ctx context.Context, id int64) error {
	return r.dao.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Claim{}).Error
}

func mapClaims(ms []*model.Claim) []*domain.Claim {
	claims := make([]*domain.Claim, 0, len(ms))
	for _, m := range ms {
		claims = append(claims, toDomainClaim(m))
	}
	return claims
}

func claimStatusStrings(statuses []domain.ClaimStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
