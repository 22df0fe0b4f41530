package api_router

import (
	"expvar"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 生命周期引擎的业务指标
var (
	MetricClaimTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "food_share",
		Name:      "claim_transitions_total",
		Help:      "Number of claim status transitions by resulting status.",
	}, []string{"status"})

	MetricPostsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "food_share",
		Name:      "posts_expired_total",
		Help:      "Number of posts moved to expired by the sweeper.",
	})

	MetricSweepRuns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "food_share",
		Name:      "sweep_runs_total",
		Help:      "Number of expiry sweep executions.",
	})
)

// Prometheus 暴露 prometheus 指标
func Prometheus() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Expvar 导出系统运行时指标
// 将 expvar 导出的 JSON 数据写入响应
func Expvar(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	first := true
	report := func(key string, value interface{}) {
		if !first {
			fmt.Fprintf(c.Writer, ",\n")
		}
		first = false
		if str, ok := value.(string); ok {
			fmt.Fprintf(c.Writer, "%q: %q", key, str)
		} else {
			fmt.Fprintf(c.Writer, "%q: %v", key, value)
		}
	}

	fmt.Fprintf(c.Writer, "{\n")
	expvar.Do(func(kv expvar.KeyValue) {
		report(kv.Key, kv.Value)
	})
	fmt.Fprintf(c.Writer, "\n}\n")
}
