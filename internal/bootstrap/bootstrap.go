// Package bootstrap 按配置组装存储、缓存与服务，供 server 与 relctl 共用
package bootstrap

import (
	"context"
	"fmt"

	"relgraph/config"
	"relgraph/internal/model"
	"relgraph/internal/repository"
	"relgraph/internal/service"
	"relgraph/pkg/cache"
	dbPkg "relgraph/pkg/db"
	"relgraph/pkg/events"
	"relgraph/pkg/logger"
	redisPkg "relgraph/pkg/redis"
	"relgraph/pkg/websocket"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	EdgeBackendSQL    = "sql"
	EdgeBackendNeo4j  = "neo4j"
	EdgeBackendMemory = "memory"

	memoryListCacheSize   = 10000
	memoryFriendCacheSize = 1000
)

// Models 需要自动迁移的表
var Models = []interface{}{
	&model.RelationshipStatus{},
	&model.Relationship{},
	&model.User{},
	&model.SocialAccount{},
	&model.Activity{},
}

// App 组装完成的服务
type App struct {
	Config        *config.Config
	DB            *gorm.DB                // memory 后端时为nil
	Redis         *redis.Client           // 未启用时为nil
	Neo4j         neo4j.DriverWithContext // 仅 neo4j 后端
	Events        *events.NatsPublisher   // 未配置时为nil
	Registry      *service.StatusRegistry
	Relationships *service.RelationshipService
	Classifier    *service.Classifier
	WS            *websocket.Manager
	Users         repository.UserWriter
	Social        repository.SocialAccountStore

	closers []func() error
}

type stores struct {
	edges      repository.EdgeStore
	statuses   repository.StatusStore
	users      interface {
		repository.UserStore
		repository.UserWriter
	}
	social     repository.SocialAccountStore
	activities repository.ActivityStore
}

// Build 依次初始化数据库、边存储、缓存、事件流，再组装服务
// 失败时已打开的资源会被关闭
func Build(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	app := &App{Config: cfg}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	st, err := app.openStores(ctx)
	if err != nil {
		return nil, err
	}

	listCache, friendCache, err := app.openCaches(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.NATS.URL != "" {
		pub, err := events.NewNatsPublisher(ctx, cfg.NATS.URL, cfg.NATS.Stream)
		if err != nil {
			return nil, err
		}
		app.Events = pub
		app.closers = append(app.closers, pub.Close)
		logger.Info("NATS事件流已连接", zap.String("stream", cfg.NATS.Stream))
	}

	app.Registry = service.NewStatusRegistry(st.statuses, st.edges, cfg.Relationships)
	if err := app.Registry.Reload(ctx); err != nil {
		return nil, fmt.Errorf("加载关系类型失败: %w", err)
	}
	if cfg.Relationships.SeedDefaults {
		if err := app.Registry.SeedDefaults(ctx); err != nil {
			return nil, fmt.Errorf("写入默认关系类型失败: %w", err)
		}
	}

	app.Relationships = service.NewRelationshipService(app.Registry, st.edges, st.users,
		service.WithListCache(listCache),
		service.WithChunkSize(cfg.Relationships.SubsetChunkSize),
	)
	app.Users = st.users
	app.Social = st.social
	app.WS = app.newWebsocketManager()
	app.registerHooks(listCache, st.activities)

	providers := make([]service.FriendLister, 0, len(cfg.Social.Providers))
	for _, p := range cfg.Social.Providers {
		providers = append(providers, service.NewHTTPFriendLister(p))
	}
	app.Classifier = service.NewClassifier(app.Relationships, st.social, friendCache, providers...)

	return app, nil
}

func (a *App) openStores(ctx context.Context) (*stores, error) {
	backend := a.Config.Storage.EdgeBackend
	if backend == "" {
		backend = EdgeBackendSQL
	}

	if backend == EdgeBackendMemory {
		logger.Warn("使用内存存储，数据不会持久化")
		return &stores{
			edges:      repository.NewMemoryEdgeStore(),
			statuses:   repository.NewMemoryStatusStore(),
			users:      repository.NewMemoryUserStore(),
			social:     repository.NewMemorySocialAccountStore(),
			activities: repository.NewMemoryActivityStore(),
		}, nil
	}

	db, err := dbPkg.InitDB(a.Config.Database)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, dbPkg.CloseDB)
	if err := dbPkg.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("自动迁移失败: %w", err)
	}

	st := &stores{
		statuses:   repository.NewStatusRepository(db),
		users:      repository.NewUserRepository(db),
		social:     repository.NewSocialAccountRepository(db),
		activities: repository.NewActivityRepository(db),
	}

	switch backend {
	case EdgeBackendSQL:
		st.edges = repository.NewRelationshipRepository(db)
	case EdgeBackendNeo4j:
		driver, err := neo4j.NewDriverWithContext(a.Config.Neo4j.URI,
			neo4j.BasicAuth(a.Config.Neo4j.Username, a.Config.Neo4j.Password, ""))
		if err != nil {
			return nil, fmt.Errorf("neo4j驱动创建失败: %w", err)
		}
		a.Neo4j = driver
		a.closers = append(a.closers, func() error { return driver.Close(context.Background()) })
		if err := driver.VerifyConnectivity(ctx); err != nil {
			return nil, fmt.Errorf("neo4j连接失败: %w", err)
		}
		repo := repository.NewNeo4jRelationshipRepository(driver)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("neo4j索引创建失败: %w", err)
		}
		st.edges = repo
	default:
		return nil, fmt.Errorf("unsupported edge backend %q", backend)
	}
	logger.Info("存储初始化完成", zap.String("edge_backend", backend), zap.String("db_driver", a.Config.Database.Driver))
	return st, nil
}

func (a *App) openCaches(ctx context.Context) (list, friends cache.Cache, err error) {
	rc := a.Config.Relationships
	if !a.Config.Redis.Enabled {
		return cache.NewMemoryCache(memoryListCacheSize, rc.ListCacheTTL),
			cache.NewMemoryCache(memoryFriendCacheSize, rc.FriendCacheTTL), nil
	}

	client, err := redisPkg.InitRedis(ctx, a.Config.Redis)
	if err != nil {
		return nil, nil, err
	}
	a.Redis = client
	a.closers = append(a.closers, redisPkg.Close)
	logger.Info("Redis连接成功")
	return redisPkg.NewCache(client, redisPkg.ListCachePrefix, rc.ListCacheTTL),
		redisPkg.NewCache(client, redisPkg.FriendCachePrefix, rc.FriendCacheTTL), nil
}

func (a *App) newWebsocketManager() *websocket.Manager {
	if a.Redis == nil {
		return websocket.NewManager(nil, nil)
	}
	return websocket.NewManager(redisPkg.NewOfflineEvents(a.Redis), redisPkg.NewPresence(a.Redis))
}

func (a *App) registerHooks(listCache cache.Cache, activities repository.ActivityStore) {
	hooks := a.Relationships.Hooks()
	hooks.Register(service.HookAfterCommit, "list-cache", service.ListCacheInvalidator(listCache))
	hooks.Register(service.HookAfterCommit, "activity", service.ActivityRecorder(activities))
	hooks.Register(service.HookAfterCommit, "metrics", service.MetricsHook())
	hooks.Register(service.HookAfterCommit, "websocket", service.NotifyHook(a.WS))
	if a.Events != nil {
		hooks.Register(service.HookAfterCommit, "nats", service.PublishHook(a.Events))
	}
}

// Health 各依赖的连通性
func (a *App) Health(ctx context.Context) map[string]string {
	out := map[string]string{}
	check := func(name string, err error) {
		if err != nil {
			out[name] = err.Error()
			return
		}
		out[name] = "ok"
	}
	if a.DB != nil {
		check("database", dbPkg.HealthCheck())
	}
	if a.Redis != nil {
		check("redis", redisPkg.HealthCheck(ctx))
	}
	if a.Neo4j != nil {
		check("neo4j", a.Neo4j.VerifyConnectivity(ctx))
	}
	return out
}

// Close 按打开的逆序释放资源
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Error("关闭资源失败", zap.Error(err))
		}
	}
	a.closers = nil
}
