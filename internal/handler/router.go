package handler

import (
	"net/http"
	"time"

	"relgraph/config"
	"relgraph/internal/service"
	"relgraph/pkg/jwt"
	"relgraph/pkg/logger"
	"relgraph/pkg/metrics"
	"relgraph/pkg/response"
	"relgraph/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// HealthFunc 返回各依赖组件的状态，值为 "ok" 或错误描述
type HealthFunc func(c *gin.Context) map[string]string

// RouterDeps 路由依赖
type RouterDeps struct {
	Relationships *service.RelationshipService
	Classifier    *service.Classifier
	JWT           *jwt.JWTService
	WS            *websocket.Manager // 为空时不注册 /ws
	WSConfig      config.WebSocketConfig
	Metrics       config.MetricsConfig
	Health        HealthFunc
}

// NewRouter 创建Gin路由
func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(logger.RequestLogger())
	router.Use(logger.Recovery())
	if d.Metrics.Enabled {
		router.Use(metrics.Middleware())
		path := d.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(metrics.Handler()))
	}

	router.GET("/health", func(c *gin.Context) {
		components := map[string]string{}
		if d.Health != nil {
			components = d.Health(c)
		}
		status := "ok"
		for _, v := range components {
			if v != "ok" {
				status = "degraded"
			}
		}
		code := http.StatusOK
		if status != "ok" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, response.Response{
			Code:    code,
			Message: status,
			Data: gin.H{
				"components": components,
				"time":       time.Now().Format(time.RFC3339),
			},
		})
	})

	rels := NewRelationshipHandler(d.Relationships, d.Classifier)
	statuses := NewStatusHandler(d.Relationships.Registry())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/statuses/:slug", rels.ResolveStatus)
		v1.GET("/classify", d.JWT.OptionalAuth(), rels.Classify)

		r := v1.Group("/relationships")
		{
			r.GET("/exists", rels.Exists)
			r.GET("/:user_id", d.JWT.OptionalAuth(), rels.List)
			r.GET("/:user_id/:slug", d.JWT.OptionalAuth(), rels.List)
			r.GET("/:user_id/:slug/subset/:start/:end", d.JWT.OptionalAuth(), rels.Subset)

			// 需要认证的接口
			r.POST("/:user_id/:slug", d.JWT.RequireAuth(), rels.Add)
			r.DELETE("/:user_id/:slug", d.JWT.RequireAuth(), rels.Remove)
		}
	}

	admin := router.Group("/api/admin")
	admin.Use(d.JWT.RequireAdmin())
	{
		admin.GET("/statuses", statuses.List)
		admin.POST("/statuses", statuses.Create)
		admin.POST("/statuses/reload", statuses.Reload)
		admin.PUT("/statuses/:id", statuses.Update)
		admin.DELETE("/statuses/:id", statuses.Delete)
		admin.DELETE("/social/:provider/:username/friends", rels.InvalidateFriends)
	}

	if d.WS != nil {
		router.GET("/ws", d.WS.Handler(d.JWT, d.WSConfig))
	}
	return router
}
