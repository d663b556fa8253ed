package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	sharedConfig "github.com/applytrack/applytrack/internal/shared/config"
	apperrors "github.com/applytrack/applytrack/internal/shared/errors"
)

const envPrefix = "APPLYTRACK"

type Config struct {
	Server     sharedConfig.ServerConfig     `mapstructure:"server"`
	Database   sharedConfig.DatabaseConfig   `mapstructure:"database"`
	Logger     sharedConfig.LoggerConfig     `mapstructure:"logger"`
	Redis      sharedConfig.RedisConfig      `mapstructure:"redis"`
	Auth       sharedConfig.AuthConfig       `mapstructure:"auth"`
	RateLimit  sharedConfig.RateLimitConfig  `mapstructure:"rate_limit"`
	Quota      sharedConfig.QuotaConfig      `mapstructure:"quota"`
	Encryption sharedConfig.EncryptionConfig `mapstructure:"encryption"`
	AI         sharedConfig.AIConfig         `mapstructure:"ai"`
	Preview    sharedConfig.PreviewConfig    `mapstructure:"preview"`
	Upload     sharedConfig.UploadConfig     `mapstructure:"upload"`
	Cache      sharedConfig.CacheConfig      `mapstructure:"cache"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml (or configPath), merges
// configs/config.<env>.yaml when present, then applies APPLYTRACK_* env vars.
func Load(env, configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && configPath == "" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to merge %s config: %w", env, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &cfg
	appConfigMu.Unlock()

	return &cfg, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// Validate rejects configurations the server cannot serve features with.
// The encryption key is checked here so a missing key stops startup instead
// of failing the first anonymous request.
func (c *Config) Validate() error {
	var problems []string

	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("database.driver %q must be mysql or sqlite", c.Database.Driver))
	}

	switch c.RateLimit.Store {
	case "redis", "memory":
	default:
		problems = append(problems, fmt.Sprintf("rate_limit.store %q must be redis or memory", c.RateLimit.Store))
	}

	if c.Auth.JWTSecret == "" {
		problems = append(problems, "auth.jwt_secret is required")
	}

	if key, err := base64.StdEncoding.DecodeString(c.Encryption.ContentKey); err != nil || len(key) != 32 {
		problems = append(problems, "encryption.content_key must be a base64 encoded 32 byte key")
	}

	switch c.AI.Provider {
	case "gemini":
		if c.AI.APIKey == "" {
			problems = append(problems, "ai.api_key is required for the gemini provider")
		}
	case "static":
	default:
		problems = append(problems, fmt.Sprintf("ai.provider %q must be gemini or static", c.AI.Provider))
	}

	if c.Preview.TeaserChars <= 0 {
		problems = append(problems, "preview.teaser_chars must be positive")
	}

	if len(problems) > 0 {
		return apperrors.NewConfigurationError("invalid configuration", problems...)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.database", "applytrack_dev")
	v.SetDefault("database.path", "applytrack.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", 2*time.Second)
	v.SetDefault("redis.read_timeout", 500*time.Millisecond)
	v.SetDefault("redis.write_timeout", 500*time.Millisecond)

	v.SetDefault("auth.plan_claim", "plan")
	v.SetDefault("auth.cookie_name", "access_token")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.store", "redis")
	v.SetDefault("rate_limit.key_prefix", "applytrack")
	v.SetDefault("rate_limit.trusted_proxy_header", "X-Forwarded-For")
	v.SetDefault("rate_limit.cdn_header", "CF-Connecting-IP")

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.temperature", 0.4)
	v.SetDefault("ai.max_tokens", 2048)

	v.SetDefault("preview.teaser_chars", 600)
	v.SetDefault("upload.max_bytes", 5<<20)
	v.SetDefault("cache.allowance_ttl", 5*time.Minute)
}
