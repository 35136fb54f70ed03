package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// devJWTSecret 仅在 dev/test 环境未配置 JWT_SECRET 时使用
const devJWTSecret = "trenzy-dev-secret"

// Load 加载配置
//  1. 加载 .env.{env}（敏感信息）
//  2. 根据 APP_ENV 加载 {env}.yaml
//  3. 环境变量覆盖并构建最终配置
func Load() (*Config, error) {
	env := parseEnv(getEnv("APP_ENV", "dev"))
	loadEnvFiles(env)
	// .env 中也可能设置 APP_ENV
	env = parseEnv(getEnv("APP_ENV", string(env)))

	yamlCfg, err := loadYAMLConfig(env)
	if err != nil {
		return nil, err
	}
	return build(env, yamlCfg)
}

// build 合并 YAML 与环境变量
func build(env Environment, yamlCfg *yamlConfigInternal) (*Config, error) {
	db := yamlCfg.Database
	db.Password = firstEnv("DB_PASSWORD", "MONGO_ROOT_PASSWORD")

	redisCfg := yamlCfg.Redis
	redisCfg.Password = os.Getenv("REDIS_PASSWORD")

	// 连接串：环境变量 > YAML uri > host/port 构建
	databaseURL := firstEnv("DATABASE_URL", "MONGODB_URI")
	driver := detectDatabaseDriver(db.Driver, databaseURL)
	db.Driver = driver
	if databaseURL == "" {
		databaseURL = buildDatabaseURL(db, db.Password)
	}

	redisURL := os.Getenv("REDIS_URL")
	redisEnabled := redisCfg.Enabled || redisURL != ""
	if redisURL == "" {
		redisURL = buildRedisURL(redisCfg)
	}

	expiresIn := getEnv("EXPIRES_IN", yamlCfg.Auth.ExpiresIn)
	ttl, err := parseTTL(expiresIn)
	if err != nil {
		return nil, fmt.Errorf("config: invalid EXPIRES_IN %q: %w", expiresIn, err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if env == EnvProduction {
			return nil, errors.New("config: JWT_SECRET is required in production")
		}
		log.Printf("WARNING: JWT_SECRET not set, using development secret")
		secret = devJWTSecret
	}

	logCfg := yamlCfg.Log
	logCfg.Level = getEnv("LOG_LEVEL", logCfg.Level)
	logCfg.Format = getEnv("LOG_FORMAT", logCfg.Format)

	return &Config{
		Env:            env,
		APIPort:        getEnv("PORT", yamlCfg.APIServer.Port),
		TrustedProxies: listEnv("TRUSTED_PROXIES", yamlCfg.APIServer.TrustedProxies),
		DatabaseDriver: driver,
		DatabaseURL:    databaseURL,
		DatabaseDBName: getEnv("DB_NAME", db.Name),
		RedisEnabled:   redisEnabled,
		RedisURL:       redisURL,
		JWTSecret:      secret,
		TokenTTL:       ttl,
		LoginRate:      yamlCfg.Auth.LoginRate,
		LoginWindow:    yamlCfg.Auth.LoginWindow,
		Log:            logCfg,
		ConfigFilePath: yamlCfg.loadedFrom,
	}, nil
}

// defaultYAMLConfig 代码硬编码默认值
func defaultYAMLConfig() *yamlConfigInternal {
	return &yamlConfigInternal{YAMLConfig: YAMLConfig{
		APIServer: APIServerConfig{Port: "5000"},
		Database:  DatabaseConfig{Driver: "mongodb", Host: "localhost", Port: 27017, Name: "trenzyshirt", SSLMode: "disable"},
		Redis:     RedisConfig{Host: "localhost", Port: 6379, DB: 0},
		Auth:      AuthConfig{ExpiresIn: "7d", LoginRate: 10, LoginWindow: time.Minute},
		Log:       LogConfig{Level: "info", Format: "text"},
	}}
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → {env}.yaml；文件不存在时使用默认值
func loadYAMLConfig(env Environment) (*yamlConfigInternal, error) {
	cfg := defaultYAMLConfig()

	path := findConfigFile(env)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg.YAMLConfig); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.loadedFrom = path
	return cfg, nil
}

// parseTTL 解析令牌有效期
// 支持纯数字（秒）、"7d" 天数后缀以及 time.ParseDuration 格式
func parseTTL(s string) (time.Duration, error) {
	if s == "" {
		return 0, errors.New("empty duration")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, errors.New("must be positive")
		}
		return time.Duration(n) * time.Second, nil
	}
	if s[len(s)-1] == 'd' {
		n, err := strconv.Atoi(s[:len(s)-1])
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("must be positive")
	}
	return d, nil
}

// listEnv 逗号分隔的环境变量，未设置时使用默认值
func listEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
