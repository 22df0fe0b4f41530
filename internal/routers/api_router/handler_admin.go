package api_router

import (
	"time"

	"github.com/haierkeys/food-share-service/internal/app"
	pkgapp "github.com/haierkeys/food-share-service/pkg/app"
	"github.com/haierkeys/food-share-service/pkg/code"
	apperrors "github.com/haierkeys/food-share-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// AdminHandler 管理接口处理器
type AdminHandler struct {
	*Handler
}

// NewAdminHandler 创建 AdminHandler 实例
func NewAdminHandler(a *app.App) *AdminHandler {
	return &AdminHandler{Handler: NewHandler(a)}
}

// Sweep 手动触发一次过期扫描
// 扫描是幂等的，重复触发不会产生重复迁移
func (h *AdminHandler) Sweep(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	adminUID := h.App.Config().User.AdminUID
	if adminUID > 0 && pkgapp.GetUID(c) != adminUID {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	ctx := c.Request.Context()

	result, err := h.App.SweepService.Sweep(ctx, time.Now())
	if err != nil {
		h.logError(ctx, "AdminHandler.Sweep", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	// 过期帖子数由指标订阅按事件计数，这里只记录一次运行
	MetricSweepRuns.Inc()

	response.ToResponse(code.Success.WithData(result))
}
