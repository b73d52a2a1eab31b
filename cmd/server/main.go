package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"relgraph/config"
	"relgraph/internal/bootstrap"
	"relgraph/internal/handler"
	"relgraph/pkg/jwt"
	"relgraph/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== relgraph 启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("edge_backend", cfg.Storage.EdgeBackend),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Database),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("nats_enabled", cfg.NATS.URL != ""),
		zap.Int("social_providers", len(cfg.Social.Providers)),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化存储、缓存、事件流与业务服务
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	app, err := bootstrap.Build(initCtx, cfg)
	initCancel()
	if err != nil {
		log.Fatal("服务初始化失败", zap.Error(err))
	}
	defer app.Close()
	log.Info("服务初始化完成")

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. 创建路由
	router := handler.NewRouter(handler.RouterDeps{
		Relationships: app.Relationships,
		Classifier:    app.Classifier,
		JWT:           jwt.NewJWTService(cfg.JWT),
		WS:            app.WS,
		WSConfig:      cfg.WebSocket,
		Metrics:       cfg.Metrics,
		Health: func(c *gin.Context) map[string]string {
			return app.Health(c.Request.Context())
		},
	})

	// 6. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 7. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 8. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}
