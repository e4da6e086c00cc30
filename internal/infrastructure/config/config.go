package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// PlaceholderAPIKey 未設定金鑰時的預設值
const PlaceholderAPIKey = "DEMO_KEY"

// Config 應用配置
type Config struct {
	App            AppConfig         `mapstructure:"app"`
	Server         ServerConfig      `mapstructure:"server"`
	FDC            UpstreamConfig    `mapstructure:"fdc"`
	Spoonacular    SpoonacularConfig `mapstructure:"spoonacular"`
	Session        SessionConfig     `mapstructure:"session"`
	RateLimit      RateLimitConfig   `mapstructure:"rate_limit"`
	RequestTimeout time.Duration     `mapstructure:"request_timeout"`
	MaxBodyBytes   int64             `mapstructure:"max_body_bytes"`
	DedupWindow    time.Duration     `mapstructure:"dedup_window"`
	LogLevel       string            `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// UpstreamConfig 外部 API 共用設定
type UpstreamConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
	DataTypes  []string      `mapstructure:"data_types"`
}

// SpoonacularConfig Spoonacular 設定
type SpoonacularConfig struct {
	UpstreamConfig `mapstructure:",squash"`
	MealType       string `mapstructure:"meal_type"`
	SearchLimit    int    `mapstructure:"search_limit"`
}

// SessionConfig 對話上下文儲存設定
type SessionConfig struct {
	Driver          string        `mapstructure:"driver"` // memory | redis | sqlite
	TTL             time.Duration `mapstructure:"ttl"`
	MaxSize         int           `mapstructure:"max_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時只使用環境變數與預設值
	_ = godotenv.Load()

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("fdc.api_key", "FDC_API_KEY")
	viper.BindEnv("fdc.base_url", "FDC_BASE_URL")
	viper.BindEnv("spoonacular.api_key", "SPOONACULAR_API_KEY")
	viper.BindEnv("spoonacular.base_url", "SPOONACULAR_BASE_URL")
	viper.BindEnv("session.driver", "SESSION_DRIVER")
	viper.BindEnv("session.redis_addr", "REDIS_ADDR")
	viper.BindEnv("session.redis_password", "REDIS_PASSWORD")
	viper.BindEnv("session.sqlite_path", "SQLITE_PATH")
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration",
		"fdc_api_key:", maskAPIKey(viper.GetString("fdc.api_key")),
		"spoonacular_api_key:", maskAPIKey(viper.GetString("spoonacular.api_key")),
		"session_driver:", viper.GetString("session.driver"))

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// IsPlaceholderKey 判斷金鑰是否尚未設定
func IsPlaceholderKey(key string) bool {
	k := strings.TrimSpace(key)
	return k == "" || k == PlaceholderAPIKey
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "food-assistant")

	// 伺服器設定
	viper.SetDefault("server.port", 5055)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "60s")
	viper.SetDefault("server.idle_timeout", "120s")

	// FoodData Central 設定
	viper.SetDefault("fdc.api_key", PlaceholderAPIKey)
	viper.SetDefault("fdc.base_url", "https://api.nal.usda.gov/fdc/v1")
	viper.SetDefault("fdc.timeout", "10s")
	viper.SetDefault("fdc.retry_count", 1)
	viper.SetDefault("fdc.data_types", []string{"Foundation", "SR Legacy", "Survey (FNDDS)"})

	// Spoonacular 設定
	viper.SetDefault("spoonacular.api_key", PlaceholderAPIKey)
	viper.SetDefault("spoonacular.base_url", "https://api.spoonacular.com")
	viper.SetDefault("spoonacular.timeout", "10s")
	viper.SetDefault("spoonacular.retry_count", 1)
	viper.SetDefault("spoonacular.meal_type", "main course")
	viper.SetDefault("spoonacular.search_limit", 10)

	// 對話上下文設定
	viper.SetDefault("session.driver", "memory")
	viper.SetDefault("session.ttl", "24h")
	viper.SetDefault("session.max_size", 10000)
	viper.SetDefault("session.cleanup_interval", "10m")
	viper.SetDefault("session.redis_addr", "localhost:6379")
	viper.SetDefault("session.redis_db", 0)
	viper.SetDefault("session.sqlite_path", "data/sessions.db")

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	viper.SetDefault("request_timeout", "30s")
	viper.SetDefault("max_body_bytes", 1<<20)
	viper.SetDefault("dedup_window", "1s")
	viper.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.FDC.BaseURL == "" || config.Spoonacular.BaseURL == "" {
		return fmt.Errorf("upstream base url is required")
	}
	if config.FDC.Timeout <= 0 || config.Spoonacular.Timeout <= 0 {
		return fmt.Errorf("invalid upstream timeout")
	}
	if config.FDC.RetryCount < 0 || config.Spoonacular.RetryCount < 0 {
		return fmt.Errorf("invalid upstream retry count")
	}
	if config.Spoonacular.SearchLimit <= 0 {
		return fmt.Errorf("invalid spoonacular search limit")
	}

	switch config.Session.Driver {
	case "memory":
		if config.Session.MaxSize <= 0 {
			return fmt.Errorf("invalid session max size")
		}
		if config.Session.CleanupInterval <= 0 {
			return fmt.Errorf("invalid session cleanup interval")
		}
	case "redis":
		if config.Session.RedisAddr == "" {
			return fmt.Errorf("redis address is required")
		}
	case "sqlite":
		if config.Session.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("unknown session driver %q", config.Session.Driver)
	}
	if config.Session.TTL <= 0 {
		return fmt.Errorf("invalid session ttl")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	return nil
}
