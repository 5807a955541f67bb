package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Knowledge KnowledgeConfig
	Analyzer  AnalyzerConfig
	Usage     UsageConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type LLMConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	Temperature    float32
	MaxTokens      int
	// Prices are USD per 1K tokens, used by the documented
	// word-count based cost estimate.
	InputPricePer1K  float64
	OutputPricePer1K float64
}

type KnowledgeConfig struct {
	TopK      int
	VectorDim int
}

type AnalyzerConfig struct {
	// Year assumed when a query names a month without a year.
	DefaultYear     string
	TrendMonths     int
	IdleUsageBelow  float64
	IdleCostAbove   float64
	UntaggedMinCost float64
}

type UsageConfig struct {
	// 0 keeps hourly buckets forever.
	HourRetentionHours int
	CostRetentionDays  int
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
	viper.AddConfigPath("/etc/cost-copilot")

	viper.SetEnvPrefix("COPILOT")
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
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("sqlite.path", "./data/copilot.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlSec", 300)

	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.embeddingModel", "text-embedding-3-small")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.maxTokens", 2048)
	viper.SetDefault("llm.inputPricePer1K", 0.00025)
	viper.SetDefault("llm.outputPricePer1K", 0.00075)

	viper.SetDefault("knowledge.topK", 5)
	viper.SetDefault("knowledge.vectorDim", 1536)

	viper.SetDefault("analyzer.defaultYear", "2024")
	viper.SetDefault("analyzer.trendMonths", 6)
	viper.SetDefault("analyzer.idleUsageBelow", 5.0)
	viper.SetDefault("analyzer.idleCostAbove", 10.0)
	viper.SetDefault("analyzer.untaggedMinCost", 5.0)

	viper.SetDefault("usage.hourRetentionHours", 0)
	viper.SetDefault("usage.costRetentionDays", 7)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
