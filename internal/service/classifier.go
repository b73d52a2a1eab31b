package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"relgraph/config"
	"relgraph/internal/repository"
	"relgraph/pkg/cache"
	"relgraph/pkg/logger"
	"relgraph/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// 分类结果；第三方网络命中时返回网络名
const (
	ClassSelf   = "self"
	ClassLevel1 = "level1"
	ClassLevel2 = "level2"
	ClassNone   = ""
)

// FriendLister 第三方社交网络的好友列表
type FriendLister interface {
	Name() string
	Friends(ctx context.Context, username string) ([]string, error)
}

// HTTPFriendLister GET {baseURL}/users/{username}/friends，返回 {"friends": [...]}
type HTTPFriendLister struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewHTTPFriendLister(cfg config.SocialProviderConfig) *HTTPFriendLister {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPFriendLister{
		name:    cfg.Name,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (l *HTTPFriendLister) Name() string { return l.name }

func (l *HTTPFriendLister) Friends(ctx context.Context, username string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/users/%s/friends", l.baseURL, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s friend list: %w", l.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s friend list: unexpected status %d", l.name, resp.StatusCode)
	}
	var body struct {
		Friends []string `json:"friends"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s friend list: %w", l.name, err)
	}
	return body.Friends, nil
}

// Classifier 计算两个用户之间的关系类型
type Classifier struct {
	rels      *RelationshipService
	social    repository.SocialAccountStore
	providers []FriendLister // 按优先级
	friends   cache.Cache
	group     singleflight.Group
}

func NewClassifier(rels *RelationshipService, social repository.SocialAccountStore, friends cache.Cache, providers ...FriendLister) *Classifier {
	return &Classifier{
		rels:      rels,
		social:    social,
		providers: providers,
		friends:   friends,
	}
}

// Classify 按顺序判断，命中即返回：
// 本人 -> 第三方好友且已关注 -> 直接关注 -> 二度关注 -> 无
func (c *Classifier) Classify(ctx context.Context, a, b uint) (result string, err error) {
	start := time.Now()
	defer func() {
		if err == nil {
			metrics.ObserveClassify(result, start)
		}
	}()

	if a == b {
		return ClassSelf, nil
	}
	if a == 0 || b == 0 {
		return ClassNone, nil
	}

	following, err := c.rels.registry.DefaultFollowing()
	if err != nil {
		return ClassNone, err
	}
	direct, err := c.rels.edges.Exists(ctx, a, b, following.ID, false)
	if err != nil {
		return ClassNone, err
	}

	if direct {
		// 第三方好友判定要求直接关注成立，未关注时无需远程查询
		if name, ok := c.socialMatch(ctx, a, b); ok {
			return name, nil
		}
		return ClassLevel1, nil
	}

	ids, err := c.rels.FollowingIDs(ctx, a)
	if err != nil {
		return ClassNone, err
	}
	via := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != b && id != a {
			via = append(via, id)
		}
	}
	second, err := c.rels.edges.ExistsAny(ctx, via, b, following.ID)
	if err != nil {
		return ClassNone, err
	}
	if second {
		return ClassLevel2, nil
	}
	return ClassNone, nil
}

// socialMatch 依次检查各网络：a、b 都已绑定且 b 在 a 的好友列表中
func (c *Classifier) socialMatch(ctx context.Context, a, b uint) (string, bool) {
	for _, p := range c.providers {
		accA, found, err := c.social.Get(ctx, a, p.Name())
		if err != nil {
			logger.Warn("查询第三方账号失败", zap.String("provider", p.Name()), zap.Uint("user_id", a), zap.Error(err))
			continue
		}
		if !found {
			continue
		}
		accB, found, err := c.social.Get(ctx, b, p.Name())
		if err != nil || !found {
			continue
		}

		friends, err := c.friendList(ctx, p, accA.ExternalUsername)
		if err != nil {
			logger.Warn("获取第三方好友列表失败", zap.String("provider", p.Name()), zap.Error(err))
			continue
		}
		for _, f := range friends {
			if f == accB.ExternalUsername {
				return p.Name(), true
			}
		}
	}
	return "", false
}

func friendCacheKey(provider, username string) string {
	return "friends:" + provider + ":" + username
}

// friendList 先查缓存，未命中时同一key的并发请求只回源一次
func (c *Classifier) friendList(ctx context.Context, p FriendLister, username string) ([]string, error) {
	key := friendCacheKey(p.Name(), username)
	if c.friends != nil {
		friends, ok, err := cache.GetJSON[[]string](ctx, c.friends, key)
		if err != nil {
			logger.Warn("读取好友列表缓存失败", zap.String("key", key), zap.Error(err))
		} else if ok {
			metrics.FriendListLookups.WithLabelValues(p.Name(), "hit").Inc()
			return friends, nil
		}
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// 共享回源不随发起者取消，耗时由 FriendLister 自身的超时约束
		fetchCtx := context.WithoutCancel(ctx)
		friends, err := p.Friends(fetchCtx, username)
		if err != nil {
			metrics.FriendListLookups.WithLabelValues(p.Name(), "error").Inc()
			return nil, err
		}
		metrics.FriendListLookups.WithLabelValues(p.Name(), "miss").Inc()
		if c.friends != nil {
			if err := cache.SetJSON(fetchCtx, c.friends, key, friends); err != nil {
				logger.Warn("写入好友列表缓存失败", zap.String("key", key), zap.Error(err))
			}
		}
		return friends, nil
	})

	// 每个调用方只等待到自己的 ctx 结束
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]string), nil
	}
}

// InvalidateFriends 显式刷新某个第三方账号的好友列表缓存
func (c *Classifier) InvalidateFriends(ctx context.Context, provider, username string) error {
	if c.friends == nil {
		return nil
	}
	return c.friends.Delete(ctx, friendCacheKey(provider, username))
}
