package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"relgraph/config"
	"relgraph/pkg/jwt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// -------------------- 延迟统计 --------------------

type latencyStats struct {
	mu        sync.Mutex
	latencies []time.Duration
	failed    int
	byCode    map[int]int
}

func newLatencyStats() *latencyStats {
	return &latencyStats{byCode: make(map[int]int)}
}

func (s *latencyStats) add(code int, err error, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil || code >= 500 {
		s.failed++
		return
	}
	s.byCode[code]++
	s.latencies = append(s.latencies, latency)
}

func (s *latencyStats) percentile(p float64) time.Duration {
	if len(s.latencies) == 0 {
		return 0
	}
	idx := int(float64(len(s.latencies)-1) * p)
	return s.latencies[idx]
}

func (s *latencyStats) report(name string, took time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.Slice(s.latencies, func(i, j int) bool { return s.latencies[i] < s.latencies[j] })

	ok := len(s.latencies)
	var sum time.Duration
	for _, l := range s.latencies {
		sum += l
	}
	fmt.Printf("\n=== %s ===\n", name)
	fmt.Printf("耗时: %v 成功: %d 失败: %d 状态码: %v\n", took, ok, s.failed, s.byCode)
	if ok == 0 {
		return
	}
	fmt.Printf("延迟 平均: %v p50: %v p95: %v p99: %v 最大: %v\n",
		sum/time.Duration(ok), s.percentile(0.50), s.percentile(0.95), s.percentile(0.99), s.latencies[ok-1])
	if took > 0 {
		fmt.Printf("QPS: %.2f\n", float64(ok)/took.Seconds())
	}
}

// -------------------- 压测 --------------------

type bench struct {
	base        string
	users       int
	concurrency int
	requests    int
	jwt         *jwt.JWTService
	client      *http.Client
}

func (b *bench) send(ctx context.Context, method, path string, userID uint) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, b.base+path, nil)
	if err != nil {
		return 0, err
	}
	if userID != 0 {
		token, err := b.jwt.GenerateToken(userID, nil)
		if err != nil {
			return 0, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func (b *bench) randomUser(r *rand.Rand) uint {
	return uint(r.Intn(b.users) + 1)
}

// run 并发执行 requests 次 pick 返回的请求
func (b *bench) run(ctx context.Context, name string, pick func(r *rand.Rand) (method, path string, actor uint)) {
	stats := newLatencyStats()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	start := time.Now()
	for i := 0; i < b.requests; i++ {
		seed := int64(i)
		g.Go(func() error {
			r := rand.New(rand.NewSource(seed))
			method, path, actor := pick(r)
			t := time.Now()
			code, err := b.send(ctx, method, path, actor)
			stats.add(code, err, time.Since(t))
			return nil
		})
	}
	_ = g.Wait()
	stats.report(name, time.Since(start))
}

func (b *bench) all(ctx context.Context, follows int) {
	if follows > 0 {
		saved := b.requests
		b.requests = follows
		b.run(ctx, "建立关注 POST /relationships/:id/following", func(r *rand.Rand) (string, string, uint) {
			from, to := b.randomUser(r), b.randomUser(r)
			return http.MethodPost, fmt.Sprintf("/api/v1/relationships/%d/following", to), from
		})
		b.requests = saved
	}

	b.run(ctx, "关系判断 GET /relationships/exists", func(r *rand.Rand) (string, string, uint) {
		return http.MethodGet, fmt.Sprintf("/api/v1/relationships/exists?from=%d&to=%d&status=following",
			b.randomUser(r), b.randomUser(r)), 0
	})
	b.run(ctx, "关系分类 GET /classify", func(r *rand.Rand) (string, string, uint) {
		return http.MethodGet, fmt.Sprintf("/api/v1/classify?a=%d&b=%d", b.randomUser(r), b.randomUser(r)), 0
	})
	b.run(ctx, "首页分块 GET /relationships/:id/followers/subset/0/20", func(r *rand.Rand) (string, string, uint) {
		return http.MethodGet, fmt.Sprintf("/api/v1/relationships/%d/followers/subset/0/20", b.randomUser(r)), 0
	})
	b.run(ctx, "完整列表 GET /relationships/:id/friends", func(r *rand.Rand) (string, string, uint) {
		return http.MethodGet, fmt.Sprintf("/api/v1/relationships/%d/friends", b.randomUser(r)), 0
	})
}

// -------------------- 入口 --------------------

func main() {
	var (
		configPath string
		follows    int
	)
	b := &bench{client: &http.Client{Timeout: 8 * time.Second}}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "relgraph HTTP 接口并发压测",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if b.users < 2 || b.concurrency < 1 || b.requests < 1 {
				return fmt.Errorf("users >= 2, concurrency >= 1, requests >= 1")
			}
			cfg := config.LoadConfigFrom(configPath)
			b.jwt = jwt.NewJWTService(cfg.JWT)

			fmt.Println("=== relgraph 并发测试 ===")
			fmt.Printf("开始时间: %s\n", time.Now().Format("2006-01-02 15:04:05"))
			fmt.Printf("目标: %s 用户数: %d 并发: %d 每项请求: %d\n", b.base, b.users, b.concurrency, b.requests)

			b.all(cmd.Context(), follows)
			fmt.Println("\n=== 测试完成 ===")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "配置文件路径（读取JWT密钥）")
	f.StringVar(&b.base, "base", "http://localhost:8080", "服务地址")
	f.IntVar(&b.users, "users", 100, "参与压测的用户ID范围 1..N")
	f.IntVar(&b.concurrency, "concurrency", 20, "并发数")
	f.IntVar(&b.requests, "requests", 1000, "每个接口的请求数")
	f.IntVar(&follows, "follows", 0, "压测前随机建立的关注数")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
