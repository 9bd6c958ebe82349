package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	S3         S3Config         `mapstructure:"s3"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Generation GenerationConfig `mapstructure:"generation"`
	LogMode    string           `mapstructure:"log_mode"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	// ArchiveEnabled toggles the best-effort raw-payload archive. The
	// pipeline functions without it.
	ArchiveEnabled bool `mapstructure:"archive_enabled"`
}

// JWTConfig defines JWT specific configuration.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// OpenAIConfig configures the generative text service client.
type OpenAIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

// GenerationConfig carries the pipeline tuning knobs.
type GenerationConfig struct {
	// MaxTokensAnalysis / MaxTokensSession cap the output size of the two
	// call kinds.
	MaxTokensAnalysis int `mapstructure:"max_tokens_analysis"`
	MaxTokensSession  int `mapstructure:"max_tokens_session"`
	// PrefilterTopN is how many candidate exercises each session call sees;
	// PrefilterFloor is the minimum useful candidate count below which the
	// prefilter reverts to the full list.
	PrefilterTopN  int `mapstructure:"prefilter_top_n"`
	PrefilterFloor int `mapstructure:"prefilter_floor"`
	// ProfileContextTTL bounds how long a built profile context is reused
	// across attempts for the same client.
	ProfileContextTTL time.Duration `mapstructure:"profile_context_ttl"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Env override, nested keys use underscores: openai.api_key -> OPENAI_API_KEY.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "program_engine")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("s3.archive_enabled", false)
	viper.SetDefault("jwt.expiration", "1h")
	viper.SetDefault("openai.base_url", "https://api.openai.com")
	viper.SetDefault("openai.model", "gpt-4o")
	viper.SetDefault("openai.call_timeout", "120s")
	viper.SetDefault("generation.max_tokens_analysis", 2048)
	viper.SetDefault("generation.max_tokens_session", 4096)
	viper.SetDefault("generation.prefilter_top_n", 40)
	viper.SetDefault("generation.prefilter_floor", 15)
	viper.SetDefault("generation.profile_context_ttl", "10m")
	viper.SetDefault("log_mode", "dev")

	err = viper.ReadInConfig()
	// A missing config file is fine; env vars and defaults still apply.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
