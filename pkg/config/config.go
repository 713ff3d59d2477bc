package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	GenAI     GenAIConfig
	Chat      ChatConfig
	Analytics AnalyticsConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

// StoreConfig selects the collection store backend. "memory" keeps all
// collections in process, "sqlite" and "redis" persist them.
type StoreConfig struct {
	Backend    string
	SQLitePath string
	RedisAddr  string
	RedisDB    int
	RedisPass  string
}

type GenAIConfig struct {
	Endpoint   string
	APIKey     string
	Model      string
	MaxTokens  int
	Thinking   bool
	TimeoutSec int
}

type ChatConfig struct {
	FallbackText    string
	ReplyDelayMS    int
	SuggestionCount int
}

type AnalyticsConfig struct {
	DefaultWindowDays int
}

type RateLimitConfig struct {
	MaxRequestsPerMinute int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/kbadmin")

	viper.SetEnvPrefix("KBADMIN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 10485760)

	viper.SetDefault("store.backend", "memory")
	viper.SetDefault("store.sqlitePath", "./data/kbadmin.db")
	viper.SetDefault("store.redisAddr", "localhost:6379")
	viper.SetDefault("store.redisDB", 0)

	viper.SetDefault("genai.endpoint", "https://api.openai.com/v1/chat/completions")
	viper.SetDefault("genai.model", "gpt-4")
	viper.SetDefault("genai.maxTokens", 2048)
	viper.SetDefault("genai.thinking", false)
	viper.SetDefault("genai.timeoutSec", 60)

	viper.SetDefault("chat.fallbackText", "抱歉，我暂时无法回答这个问题，已经记录下来，后续会完善相关知识。")
	viper.SetDefault("chat.replyDelayMS", 500)
	viper.SetDefault("chat.suggestionCount", 3)

	viper.SetDefault("analytics.defaultWindowDays", 30)

	viper.SetDefault("ratelimit.maxRequestsPerMinute", 120)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
