package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RelationshipMutations 关系变更次数，按类型与动作
	RelationshipMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relgraph_relationship_mutations_total",
		Help: "Relationship add/remove operations by status and action",
	}, []string{"status", "action"})

	// Classifications 关系分类结果
	Classifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relgraph_classifications_total",
		Help: "Relationship classifications by result",
	}, []string{"result"})

	ClassifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "relgraph_classify_duration_seconds",
		Help:    "Classification latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	// FriendListLookups 第三方好友列表查询，result: hit / miss / error
	FriendListLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relgraph_friend_list_lookups_total",
		Help: "Social provider friend list lookups by provider and result",
	}, []string{"provider", "result"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relgraph_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relgraph_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// ObserveClassify 记录一次分类
func ObserveClassify(result string, start time.Time) {
	if result == "" {
		result = "none"
	}
	Classifications.WithLabelValues(result).Inc()
	ClassifyDuration.Observe(time.Since(start).Seconds())
}

// Middleware gin 请求计数与耗时，route 使用路由模板避免高基数
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
