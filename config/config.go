package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath 默认配置文件路径
const DefaultConfigPath = "config/config.yaml"

// Config 应用配置结构体
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Storage       StorageConfig       `yaml:"storage"`
	Neo4j         Neo4jConfig         `yaml:"neo4j"`
	Redis         RedisConfig         `yaml:"redis"`
	JWT           JWTConfig           `yaml:"jwt"`
	Log           LogConfig           `yaml:"log"`
	Relationships RelationshipsConfig `yaml:"relationships"`
	Social        SocialConfig        `yaml:"social"`
	NATS          NATSConfig          `yaml:"nats"`
	WebSocket     WebSocketConfig     `yaml:"websocket"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// DatabaseConfig 数据库配置（mysql / postgres）
type DatabaseConfig struct {
	Driver        string        `yaml:"driver"`
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	Database      string        `yaml:"database"`
	Charset       string        `yaml:"charset"`  // 仅mysql
	SSLMode       string        `yaml:"sslMode"`  // 仅postgres
	MaxIdle       int           `yaml:"maxIdle"`  // 最大空闲连接数
	MaxOpen       int           `yaml:"maxOpen"`  // 最大打开连接数
	SlowThreshold time.Duration `yaml:"slowThreshold"`
}

// StorageConfig 关系边存储后端
// EdgeBackend: sql / neo4j / memory
type StorageConfig struct {
	EdgeBackend string `yaml:"edgeBackend"`
}

// Neo4jConfig 图数据库配置
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// RedisConfig Redis配置，Enabled=false 时退化为进程内缓存
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig JWT配置（仅用于校验调用方身份，不负责签发会话）
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	Issuer     string        `yaml:"issuer"`
	ExpireTime time.Duration `yaml:"expireTime"` // 仅 relctl / bench 签发测试令牌时使用
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`
	Filename   string `yaml:"filename"`
	MaxSize    int    `yaml:"maxSize"`    // 单个日志文件最大大小(MB)
	MaxBackups int    `yaml:"maxBackups"` // 最大备份文件数
	MaxAge     int    `yaml:"maxAge"`     // 最大保存天数
	Compress   bool   `yaml:"compress"`
	Console    bool   `yaml:"console"` // 同时输出到标准输出
}

// RelationshipsConfig 关系图核心配置
type RelationshipsConfig struct {
	DefaultStatus   string        `yaml:"defaultStatus"`   // 默认列表使用的关系类型（from_slug）
	BlockingStatus  string        `yaml:"blockingStatus"`  // 拉黑关系类型（from_slug）
	SubsetChunkSize int           `yaml:"subsetChunkSize"` // 首页固定分块大小
	ListCacheTTL    time.Duration `yaml:"listCacheTTL"`    // 首页分块缓存TTL
	FriendCacheTTL  time.Duration `yaml:"friendCacheTTL"`  // 第三方好友列表缓存TTL，0表示不过期
	SeedDefaults    bool          `yaml:"seedDefaults"`    // 启动时写入默认关系类型
}

// SocialProviderConfig 第三方社交网络
type SocialProviderConfig struct {
	Name    string        `yaml:"name"`
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

// SocialConfig Providers 按优先级排列
type SocialConfig struct {
	Providers []SocialProviderConfig `yaml:"providers"`
}

// NATSConfig 关系事件流，URL为空时不启用
type NATSConfig struct {
	URL    string `yaml:"url"`
	Stream string `yaml:"stream"`
}

// WebSocketConfig WebSocket 心跳配置
type WebSocketConfig struct {
	PingInterval time.Duration `yaml:"pingInterval"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
}

// MetricsConfig Prometheus 指标
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoadConfig 加载配置（.env + YAML文件 + 环境变量）
func LoadConfig() *Config {
	return LoadConfigFrom(DefaultConfigPath)
}

// LoadConfigFrom 从指定路径加载配置
func LoadConfigFrom(path string) *Config {
	// .env 不存在时直接使用系统环境变量
	_ = godotenv.Load()

	config := loadFromYAML(path)
	overrideWithEnvVars(config)
	return config
}

// loadFromYAML 解析失败或文件不存在时返回默认配置；
// 文件中未出现的字段保留默认值
func loadFromYAML(filePath string) *Config {
	config := getDefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return config
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return getDefaultConfig()
	}
	return config
}

// overrideWithEnvVars 用环境变量覆盖配置
func overrideWithEnvVars(config *Config) {
	if port := getEnv("SERVER_PORT", ""); port != "" {
		config.Server.Port = port
	}
	if timeout := getEnvDuration("SERVER_READ_TIMEOUT", 0); timeout > 0 {
		config.Server.ReadTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_WRITE_TIMEOUT", 0); timeout > 0 {
		config.Server.WriteTimeout = timeout
	}

	// 数据库配置
	if driver := getEnv("DB_DRIVER", ""); driver != "" {
		config.Database.Driver = driver
	}
	if host := getEnv("DB_HOST", ""); host != "" {
		config.Database.Host = host
	}
	if port := getEnvInt("DB_PORT", 0); port > 0 {
		config.Database.Port = port
	}
	if username := getEnv("DB_USERNAME", ""); username != "" {
		config.Database.Username = username
	}
	if password := getEnv("DB_PASSWORD", ""); password != "" {
		config.Database.Password = password
	}
	if database := getEnv("DB_DATABASE", ""); database != "" {
		config.Database.Database = database
	}
	if maxIdle := getEnvInt("DB_MAX_IDLE", 0); maxIdle > 0 {
		config.Database.MaxIdle = maxIdle
	}
	if maxOpen := getEnvInt("DB_MAX_OPEN", 0); maxOpen > 0 {
		config.Database.MaxOpen = maxOpen
	}

	if backend := getEnv("EDGE_BACKEND", ""); backend != "" {
		config.Storage.EdgeBackend = strings.ToLower(backend)
	}
	if uri := getEnv("NEO4J_URI", ""); uri != "" {
		config.Neo4j.URI = uri
	}
	if user := getEnv("NEO4J_USER", ""); user != "" {
		config.Neo4j.Username = user
	}
	if pass := getEnv("NEO4J_PASSWORD", ""); pass != "" {
		config.Neo4j.Password = pass
	}

	// Redis配置
	config.Redis.Enabled = getEnvBool("REDIS_ENABLED", config.Redis.Enabled)
	if host := getEnv("REDIS_HOST", ""); host != "" {
		config.Redis.Host = host
	}
	if port := getEnvInt("REDIS_PORT", 0); port > 0 {
		config.Redis.Port = port
	}
	if password := getEnv("REDIS_PASSWORD", ""); password != "" {
		config.Redis.Password = password
	}
	if db := getEnvInt("REDIS_DB", -1); db >= 0 {
		config.Redis.DB = db
	}

	if secret := getEnv("JWT_SECRET", ""); secret != "" {
		config.JWT.Secret = secret
	}
	if issuer := getEnv("JWT_ISSUER", ""); issuer != "" {
		config.JWT.Issuer = issuer
	}

	// 日志配置
	if level := getEnv("LOG_LEVEL", ""); level != "" {
		config.Log.Level = level
	}
	if filename := getEnv("LOG_FILENAME", ""); filename != "" {
		config.Log.Filename = filename
	}
	config.Log.Console = getEnvBool("LOG_CONSOLE", config.Log.Console)

	// 关系配置
	if slug := getEnv("REL_DEFAULT_STATUS", ""); slug != "" {
		config.Relationships.DefaultStatus = slug
	}
	if slug := getEnv("REL_BLOCKING_STATUS", ""); slug != "" {
		config.Relationships.BlockingStatus = slug
	}
	if size := getEnvInt("REL_SUBSET_CHUNK_SIZE", 0); size > 0 {
		config.Relationships.SubsetChunkSize = size
	}
	if ttl := getEnvDuration("REL_FRIEND_CACHE_TTL", -1); ttl >= 0 {
		config.Relationships.FriendCacheTTL = ttl
	}
	config.Relationships.SeedDefaults = getEnvBool("REL_SEED_DEFAULTS", config.Relationships.SeedDefaults)

	if url := getEnv("NATS_URL", ""); url != "" {
		config.NATS.URL = url
	}
	config.Metrics.Enabled = getEnvBool("METRICS_ENABLED", config.Metrics.Enabled)
}

// getDefaultConfig 获取默认配置
func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:        "mysql",
			Host:          "localhost",
			Port:          3306,
			Username:      "relgraph",
			Password:      "",
			Database:      "relgraph",
			Charset:       "utf8mb4",
			SSLMode:       "disable",
			MaxIdle:       10,
			MaxOpen:       100,
			SlowThreshold: 200 * time.Millisecond,
		},
		Storage: StorageConfig{
			EdgeBackend: "sql",
		},
		Neo4j: Neo4jConfig{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
			Password: "password",
		},
		Redis: RedisConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    6379,
			DB:      0,
		},
		JWT: JWTConfig{
			Secret:     "your-secret-key",
			Issuer:     "relgraph",
			ExpireTime: 24 * time.Hour,
		},
		Log: LogConfig{
			Level:      "info",
			Filename:   "logs/app.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
		Relationships: RelationshipsConfig{
			DefaultStatus:   "following",
			BlockingStatus:  "blocking",
			SubsetChunkSize: 20,
			ListCacheTTL:    10 * time.Minute,
			FriendCacheTTL:  0,
			SeedDefaults:    true,
		},
		NATS: NATSConfig{
			Stream: "RELATIONSHIPS",
		},
		WebSocket: WebSocketConfig{
			PingInterval: 30 * time.Second,
			ReadTimeout:  90 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
