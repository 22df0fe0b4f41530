// Package routers 组装 HTTP 路由
package routers

import (
	"time"

	"github.com/haierkeys/food-share-service/internal/app"
	"github.com/haierkeys/food-share-service/internal/domain"
	"github.com/haierkeys/food-share-service/internal/middleware"
	"github.com/haierkeys/food-share-service/internal/notify"
	"github.com/haierkeys/food-share-service/internal/routers/api_router"
	pkgapp "github.com/haierkeys/food-share-service/pkg/app"
	"github.com/haierkeys/food-share-service/pkg/limiter"

	ut "github.com/go-playground/universal-translator"

	"github.com/gin-gonic/gin"
	"github.com/lxzan/gws"
)

var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/api/user",
		FillInterval: time.Second,
		Capacity:     10,
		Quantum:      10,
	},
	limiter.BucketRule{
		Key:          "/api/claim",
		FillInterval: time.Second,
		Capacity:     50,
		Quantum:      50,
	},
)

// NewRouter 创建路由引擎，并接通事件推送
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) (*gin.Engine, *notify.WSBridge) {

	cfg := appContainer.Config()

	wss := pkgapp.NewWebsocketServer(pkgapp.WebsocketServerConfig{
		GWSOption: gws.ServerOption{
			CheckUtf8Enabled:  true,
			ParallelEnabled:   true,
			Recovery:          gws.Recovery,
			PermessageDeflate: gws.PermessageDeflate{Enabled: true},
			ParallelGolimit:   8,
		},
	}, func(token string) (int64, error) {
		claims, err := appContainer.TokenManager.ParseToken(token)
		if err != nil {
			return 0, err
		}
		return claims.UID, nil
	})

	// 事件从通知中心流向 WebSocket 客户端
	bridge := notify.NewWSBridge(appContainer.Hub, wss, appContainer.Logger())

	// 指标订阅：按事件更新业务指标
	go func() {
		sub := appContainer.Hub.Subscribe()
		for ev := range sub.C() {
			switch ev.Entity {
			case domain.EntityClaim:
				api_router.MetricClaimTransitions.WithLabelValues(ev.Status).Inc()
			case domain.EntityPost:
				if ev.Status == string(domain.PostStatusExpired) {
					api_router.MetricPostsExpired.Inc()
				}
			}
		}
	}()

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfo())
		if cfg.Tracer.Enabled {
			api.Use(middleware.TraceMiddleware(cfg.Tracer.Header))
		}
		api.Use(middleware.RateLimiter(methodLimiters))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLog())
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		userHandler := api_router.NewUserHandler(appContainer)
		postHandler := api_router.NewPostHandler(appContainer)
		claimHandler := api_router.NewClaimHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)
		adminHandler := api_router.NewAdminHandler(appContainer)

		api.POST("/user/register", userHandler.Register)
		api.POST("/user/login", userHandler.Login)

		api.GET("/health", healthHandler.Check)
		api.GET("/metrics", api_router.Prometheus())
		api.GET("/debug/vars", api_router.Expvar)

		// 事件推送通道，连接后由 Authorization 消息完成认证
		api.GET("/sync", wss.Run())

		api.GET("/posts", postHandler.List)
		api.GET("/post/:id", postHandler.Get)

		auth := api.Group("", middleware.UserAuthToken(appContainer.TokenManager))
		{
			auth.POST("/post", postHandler.Offer)
			auth.GET("/posts/mine", postHandler.ListMine)
			auth.GET("/post/:id/claims", postHandler.ListClaims)

			auth.POST("/claim", claimHandler.Create)
			auth.GET("/claims/mine", claimHandler.ListMine)
			auth.PUT("/claim/:id/accept", claimHandler.Accept)
			auth.PUT("/claim/:id/decline", claimHandler.Decline)
			auth.PUT("/claim/:id/complete", claimHandler.Complete)
			auth.PUT("/claim/:id/cancel", claimHandler.Cancel)
			auth.DELETE("/claim/:id", claimHandler.Delete)

			auth.POST("/admin/sweep", adminHandler.Sweep)
		}
	}

	return r, bridge
}
