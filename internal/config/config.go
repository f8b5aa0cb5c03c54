package config

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/hkdf"
	"gopkg.in/yaml.v3"
)

// 主配置结构
type Config struct {
	App       App       `yaml:"app"`
	Server    Server    `yaml:"server"`
	Database  DB        `yaml:"database"`
	Cache     Cache     `yaml:"cache"`
	Auth      Auth      `yaml:"auth"`
	Scan      Scan      `yaml:"scan"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Log       Log       `yaml:"log"`
}

// 应用配置
type App struct {
	Name             string `yaml:"name"`
	Mode             string `yaml:"mode"`
	Version          string `yaml:"version"`
	ShortLinkBaseURL string `yaml:"short_link_base_url"`
}

// 服务器配置
type Server struct {
	Port         int `yaml:"port"`
	ReadTimeout  int `yaml:"read_timeout"`
	WriteTimeout int `yaml:"write_timeout"`
}

// 数据库配置，Driver 取值 mysql / postgres / sqlite
type DB struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

// 缓存配置（Redis）
type Cache struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// 认证配置，Secret 为身份提供方签发令牌所用的 HS256 密钥
type Auth struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

// 扫码记录配置
type Scan struct {
	IPHashSecret string        `yaml:"ip_hash_secret"`
	QueueSize    int           `yaml:"queue_size"`
	Workers      int           `yaml:"workers"`
	WritesPerSec float64       `yaml:"writes_per_second"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// 单条限流规则
type Rule struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

// 限流配置
type RateLimit struct {
	Store           string          `yaml:"store"`
	MaxKeys         int             `yaml:"max_keys"`
	CleanupInterval time.Duration   `yaml:"cleanup_interval"`
	Rules           map[string]Rule `yaml:"rules"`
}

// 日志配置
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// 各路由的默认限流规则
var defaultRules = map[string]Rule{
	"redirect":         {Limit: 120, Window: time.Minute},
	"qr-codes:get":     {Limit: 120, Window: time.Minute},
	"qr-codes:post":    {Limit: 40, Window: time.Minute},
	"analytics":        {Limit: 60, Window: time.Minute},
	"analytics:export": {Limit: 20, Window: time.Minute},
}

const hkdfInfo = "dynamic-qr/scan-ip-hash"

// Load 读取 yaml 配置，再用 .env 与环境变量覆盖敏感项
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// .env 不存在时忽略
	_ = godotenv.Load()

	return Parse(f)
}

// Parse 从 reader 解析配置并补全默认值
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.resolveScanSecret(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RuleFor 返回路由对应的限流规则，未配置时使用默认值
func (c *Config) RuleFor(route string) Rule {
	if rule, ok := c.RateLimit.Rules[route]; ok && rule.Limit > 0 && rule.Window > 0 {
		return rule
	}
	if rule, ok := defaultRules[route]; ok {
		return rule
	}
	return Rule{Limit: 60, Window: time.Minute}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("QR_DATABASE_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("QR_IP_HASH_SECRET"); v != "" {
		c.Scan.IPHashSecret = v
	}
	if v := os.Getenv("QR_AUTH_SECRET"); v != "" {
		c.Auth.Secret = v
	}
	if v := os.Getenv("QR_SHORT_LINK_BASE_URL"); v != "" {
		c.App.ShortLinkBaseURL = v
	}
	if v := os.Getenv("QR_REDIS_ADDR"); v != "" {
		host, port := splitHostPort(v)
		c.Cache.Host = host
		if port > 0 {
			c.Cache.Port = port
		}
	}
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "dynamic-qr-codes"
	}
	if c.App.ShortLinkBaseURL == "" {
		c.App.ShortLinkBaseURL = "http://localhost:3000"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Charset == "" {
		c.Database.Charset = "utf8mb4"
	}
	if c.Scan.QueueSize <= 0 {
		c.Scan.QueueSize = 10000
	}
	if c.Scan.Workers <= 0 {
		c.Scan.Workers = 4
	}
	if c.Scan.WritesPerSec <= 0 {
		c.Scan.WritesPerSec = 500
	}
	if c.Scan.WriteTimeout <= 0 {
		c.Scan.WriteTimeout = 5 * time.Second
	}
	if c.RateLimit.Store == "" {
		c.RateLimit.Store = "memory"
	}
	if c.RateLimit.MaxKeys <= 0 {
		c.RateLimit.MaxKeys = 10000
	}
	if c.RateLimit.CleanupInterval <= 0 {
		c.RateLimit.CleanupInterval = time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = "./logs/app.log"
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = 30
	}
}

// resolveScanSecret 未显式配置 IP 哈希密钥时，从认证密钥派生一个专用子密钥
func (c *Config) resolveScanSecret() error {
	if c.Scan.IPHashSecret != "" {
		return nil
	}
	if c.Auth.Secret == "" {
		return errors.New("缺少 scan.ip_hash_secret 或 auth.secret")
	}
	secret, err := DeriveKey(c.Auth.Secret, hkdfInfo)
	if err != nil {
		return fmt.Errorf("派生 IP 哈希密钥失败: %w", err)
	}
	c.Scan.IPHashSecret = secret
	return nil
}

// DeriveKey 用 HKDF-SHA256 从主密钥派生 32 字节子密钥，以 hex 返回
func DeriveKey(master, info string) (string, error) {
	reader := hkdf.New(sha256.New, []byte(master), nil, []byte(info))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", key), nil
}

func splitHostPort(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 0
	}
	return host, port
}
