// Package config 统一配置管理
//
// 配置加载优先级（高→低）：
//  1. 环境变量（通过 .env 文件或 shell/systemd 注入）
//  2. YAML 配置文件（{env}.yaml，如 dev.yaml、test.yaml、prod.yaml）
//  3. 代码硬编码默认值
//
// 凭据单一数据源：
//
//	密码/密钥只存在 .env 文件或环境变量中（YAML 中不存储任何密码）。
//
// 配置路径确定策略：
//  1. --config 命令行参数（显式目录）
//  2. CONFIG_DIR 环境变量
//  3. 按 APP_ENV 选择默认路径：
//     - prod → /etc/trenzy-shop/
//     - dev/test → ./configs/
//
// 环境：
//   - 开发: APP_ENV=dev → configs/dev.yaml + .env.dev
//   - 测试: APP_ENV=test → configs/test.yaml + .env.test
//   - 生产: APP_ENV=prod → /etc/trenzy-shop/prod.yaml
package config

import "time"

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig 统一 YAML 配置文件结构
type YAMLConfig struct {
	APIServer APIServerConfig `yaml:"api_server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
}

// APIServerConfig API Server 配置
type APIServerConfig struct {
	Port           string   `yaml:"port"`            // 监听端口
	TrustedProxies []string `yaml:"trusted_proxies"` // 可信反向代理（IP 或 CIDR），只有来自这些地址的转发头才被采信
}

// AuthConfig 认证配置
// 注意：JWTSecret 只从环境变量读取，不存储在 YAML 中
type AuthConfig struct {
	JWTSecret   string        `yaml:"-"`            // 只从 JWT_SECRET 环境变量读取
	ExpiresIn   string        `yaml:"expires_in"`   // 例如 "7d"、"12h"、"3600"
	LoginRate   int           `yaml:"login_rate"`   // 每个窗口允许的登录尝试次数，0 表示不限
	LoginWindow time.Duration `yaml:"login_window"` // 例如 "1m"
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "mongodb"（默认）, "postgres", or "sqlite"
	Path     string `yaml:"path"`   // SQLite 文件路径
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"` // 只从环境变量读取（DB_PASSWORD / MONGO_ROOT_PASSWORD）
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	URI      string `yaml:"uri"` // 直接指定连接 URI（优先于 host/port）
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"` // 关闭时登录不限流
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"-"`   // 只从 REDIS_PASSWORD 环境变量读取
	URL      string `yaml:"url"` // 直接指定 URL（优先于 host/port/db）
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`  // debug / info / warn / error
	Format string `yaml:"format"` // json / text
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env            Environment
	APIPort        string
	TrustedProxies []string
	DatabaseDriver string // "mongodb", "postgres", or "sqlite"
	DatabaseURL    string
	DatabaseDBName string // MongoDB 数据库名称
	RedisEnabled   bool
	RedisURL       string
	JWTSecret      string
	TokenTTL       time.Duration
	LoginRate      int
	LoginWindow    time.Duration
	Log            LogConfig
	ConfigFilePath string // 实际加载的配置文件路径
}

// yamlConfigInternal 内部包装，记录配置文件来源（不参与 YAML 序列化）
type yamlConfigInternal struct {
	YAMLConfig `yaml:",inline"`
	loadedFrom string
}
