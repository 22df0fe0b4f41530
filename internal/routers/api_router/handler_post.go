package api_router

import (
	"github.com/haierkeys/food-share-service/internal/app"
	"github.com/haierkeys/food-share-service/internal/dto"
	pkgapp "github.com/haierkeys/food-share-service/pkg/app"
	"github.com/haierkeys/food-share-service/pkg/code"
	"github.com/haierkeys/food-share-service/pkg/convert"
	apperrors "github.com/haierkeys/food-share-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PostHandler 帖子 API 路由处理器
type PostHandler struct {
	*Handler
}

// NewPostHandler 创建 PostHandler 实例
func NewPostHandler(a *app.App) *PostHandler {
	return &PostHandler{
		Handler: NewHandler(a),
	}
}

// Offer 发布分享帖子
func (h *PostHandler) Offer(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.PostCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("PostHandler.Offer.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	ctx := c.Request.Context()
	uid := pkgapp.GetUID(c)

	post, err := h.App.PostService.Offer(ctx, uid, params)
	if err != nil {
		h.logError(ctx, "PostHandler.Offer", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(post))
}

// Get 获取单个帖子
func (h *PostHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	postID := convert.StrTo(c.Param("id")).MustInt64()
	if postID <= 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()

	post, err := h.App.PostService.Get(ctx, postID)
	if err != nil {
		h.logError(ctx, "PostHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(post))
}

// List 按状态分页获取帖子列表
func (h *PostHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.PostListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("PostHandler.List.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	ctx := c.Request.Context()
	page := pkgapp.GetPage(c)
	pageSize := pkgapp.GetPageSize(c)

	posts, count, err := h.App.PostService.List(ctx, params, page, pageSize)
	if err != nil {
		h.logError(ctx, "PostHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, posts, int(count))
}

// ListMine 获取当前用户发布的帖子列表
func (h *PostHandler) ListMine(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	ctx := c.Request.Context()
	uid := pkgapp.GetUID(c)
	page := pkgapp.GetPage(c)
	pageSize := pkgapp.GetPageSize(c)

	posts, count, err := h.App.PostService.ListByOwner(ctx, uid, page, pageSize)
	if err != nil {
		h.logError(ctx, "PostHandler.ListMine", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, posts, int(count))
}

// ListClaims 发布者查看帖子上的领取请求
func (h *PostHandler) ListClaims(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	postID := convert.StrTo(c.Param("id")).MustInt64()
	if postID <= 0 {
		response.ToResponse(code.ErrorInvalidParams)
		return
	}

	ctx := c.Request.Context()
	uid := pkgapp.GetUID(c)
	page := pkgapp.GetPage(c)
	pageSize := pkgapp.GetPageSize(c)

	claims, count, err := h.App.PostService.ListClaims(ctx, uid, postID, page, pageSize)
	if err != nil {
		h.logError(ctx, "PostHandler.ListClaims", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, claims, int(count))
}
