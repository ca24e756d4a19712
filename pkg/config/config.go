package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	SensorAPI SensorAPIConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Prompts   PromptsConfig
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

type LLMConfig struct {
	Provider    string
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type SensorAPIConfig struct {
	BaseURL       string
	StatusBaseURL string
	TimeoutSec    int
	MaxAttempts   int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	Enabled bool
	TTLSec  int
}

type PromptsConfig struct {
	Dir string
}

type RateLimitConfig struct {
	MaxRequestsPerMinute int
	MaxQueryLength       int
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
	viper.AddConfigPath("/etc/smartcity-agent")

	viper.SetEnvPrefix("SMARTCITY")
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
	viper.SetDefault("server.port", 8001)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 60)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.baseURL", "")
	viper.SetDefault("llm.model", "mistral-large-latest")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.maxTokens", 1024)
	viper.SetDefault("llm.timeoutSec", 30)

	viper.SetDefault("sensorapi.baseURL", "https://smartcitylivinglab.iiit.ac.in")
	viper.SetDefault("sensorapi.statusBaseURL", "https://smartcitylivinglab.iiit.ac.in/maintenance-dashboard-api")
	viper.SetDefault("sensorapi.timeoutSec", 10)
	viper.SetDefault("sensorapi.maxAttempts", 2)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.ttlSec", 300)

	viper.SetDefault("prompts.dir", "./prompts")

	viper.SetDefault("ratelimit.maxRequestsPerMinute", 60)
	viper.SetDefault("ratelimit.maxQueryLength", 2000)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
