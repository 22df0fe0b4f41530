package api_router

import (
	"context"

	"github.com/haierkeys/food-share-service/internal/app"
	"github.com/haierkeys/food-share-service/internal/domain"
	"github.com/haierkeys/food-share-service/internal/dto"
	pkgapp "github.com/haierkeys/food-share-service/pkg/app"
	"github.com/haierkeys/food-share-service/pkg/code"
	"github.com/haierkeys/food-share-service/pkg/convert"
	apperrors "github.com/haierkeys/food-share-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClaimHandler 领取请求 API 路由处理器
type ClaimHandler struct {
	*Handler
}

// NewClaimHandler 创建 ClaimHandler 实例
func NewClaimHandler(a *app.App) *ClaimHandler {
	return &ClaimHandler{
		Handler: NewHandler(a),
	}
}

// Create 发起领取请求
func (h *ClaimHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ClaimCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ClaimHandler.Create.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	ctx := c.Request.Context()
	uid := pkgapp.GetUID(c)

	claim, err := h.App.LifecycleService.CreateClaim(ctx, uid, params.PostID, params.Message)
	if err != nil {
		h.logError(ctx, "ClaimHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(claim))
}

// Accept 发布者接受请求
func (h *ClaimHandler) Accept(c *gin.Context) {
	h.transition(c, "ClaimHandler.Accept", h.App.LifecycleService.AcceptClaim)
}

// Decline 发布者拒绝请求
func (h *ClaimHandler) Decline(c *gin.Context) {
	h.transition(c, "ClaimHandler.Decline", h.App.LifecycleService.DeclineClaim)
}

// Complete 当事方确认领取完成
func (h *ClaimHandler) Complete(c *gin.Context) {
	h.transition(c, "ClaimHandler.Complete", h.App.LifecycleService.CompleteClaim)
}

// Cancel 请求者撤回请求
func (h *ClaimHandler) Cancel(c *gin.Context) {
	h.transition(c, "ClaimHandler.Cancel", h.App.LifecycleService.CancelClaim)
}

// Delete 删除已结束的请求记录
func (h *ClaimHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	claimID := convert.StrTo(c.Param("id")).MustInt64()
	if claimID <= 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()
	uid := pkgapp.GetUID(c)

	if err := h.App.LifecycleService.DeleteClaim(ctx, uid, claimID); err != nil {
		h.logError(ctx, "ClaimHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// ListMine 获取当前用户发起的领取请求列表
func (h *ClaimHandler) ListMine(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	ctx := c.Request.Context()
	uid := pkgapp.GetUID(c)
	page := pkgapp.GetPage(c)
	pageSize := pkgapp.GetPageSize(c)

	claims, count, err := h.App.PostService.ListClaimsByRequester(ctx, uid, page, pageSize)
	if err != nil {
		h.logError(ctx, "ClaimHandler.ListMine", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, claims, int(count))
}

// transition 统一处理路径参数形式的状态迁移操作
func (h *ClaimHandler) transition(c *gin.Context, where string, op func(ctx context.Context, uid, claimID int64) (*domain.Claim, error)) {
	response := pkgapp.NewResponse(c)

	claimID := convert.StrTo(c.Param("id")).MustInt64()
	if claimID <= 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()
	uid := pkgapp.GetUID(c)

	claim, err := op(ctx, uid, claimID)
	if err != nil {
		h.logError(ctx, where, err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(claim))
}
