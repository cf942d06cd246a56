package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Log    LogConfig
	LLM    LLMConfig
	Chat   ChatConfig
	Upload UploadConfig
	Store  StoreConfig
	DB     DBConfig
	Redis  RedisConfig
	S3     S3Config
	CORS   CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LLMProviderConfig holds settings for a single chat-completions provider.
type LLMProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	Endpoint     string `mapstructure:"endpoint"`
	Referer      string `mapstructure:"referer"`
	Title        string `mapstructure:"title"`
	MaxTokens    int    `mapstructure:"max_tokens"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// LLMConfig holds model API settings with an optional secondary provider.
type LLMConfig struct {
	// Flat fields configure the primary provider when Primary is unset.
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	Endpoint     string `mapstructure:"endpoint"`
	Referer      string `mapstructure:"referer"`
	Title        string `mapstructure:"title"`
	MaxTokens    int    `mapstructure:"max_tokens"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	Primary   LLMProviderConfig `mapstructure:"primary"`
	Secondary LLMProviderConfig `mapstructure:"secondary"`
}

// PrimaryConfig returns the primary provider config, falling back to the flat fields.
func (l *LLMConfig) PrimaryConfig() *LLMProviderConfig {
	if l.Primary.Provider != "" {
		return &l.Primary
	}
	return &LLMProviderConfig{
		Provider:     l.Provider,
		APIKey:       l.APIKey,
		DefaultModel: l.DefaultModel,
		Endpoint:     l.Endpoint,
		Referer:      l.Referer,
		Title:        l.Title,
		MaxTokens:    l.MaxTokens,
		TimeoutSecs:  l.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (l *LLMConfig) SecondaryConfig() *LLMProviderConfig {
	if l.Secondary.Provider != "" {
		return &l.Secondary
	}
	return nil
}

// ChatConfig holds conversation settings.
type ChatConfig struct {
	HistoryWindow int `mapstructure:"history_window"`
}

// UploadConfig holds document upload limits.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxBytes returns the upload limit in bytes.
func (u *UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// StoreConfig selects the conversation store backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// S3Config holds object storage settings. An empty Bucket disables upload storage.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

// Load reads configuration from environment variables with the DOCEXTRACT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCEXTRACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	// covers a slow primary provider followed by the secondary
	v.SetDefault("server.write_timeout", "250s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// LLM defaults (flat)
	v.SetDefault("llm.provider", "openrouter")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.default_model", "meta-llama/llama-4-maverick")
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.referer", "https://docextract.local")
	v.SetDefault("llm.title", "Document Field Extractor")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.timeout_secs", 120)

	// LLM primary/secondary defaults
	for _, p := range []string{"primary", "secondary"} {
		v.SetDefault("llm."+p+".provider", "")
		v.SetDefault("llm."+p+".api_key", "")
		v.SetDefault("llm."+p+".default_model", "")
		v.SetDefault("llm."+p+".endpoint", "")
		v.SetDefault("llm."+p+".referer", "")
		v.SetDefault("llm."+p+".title", "")
		v.SetDefault("llm."+p+".max_tokens", 1024)
		v.SetDefault("llm."+p+".timeout_secs", 120)
	}

	// Chat and upload defaults
	v.SetDefault("chat.history_window", 10)
	v.SetDefault("upload.max_file_size_mb", 5)

	// Store defaults
	v.SetDefault("store.driver", StoreDriverPostgres)

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "docextract")
	v.SetDefault("db.password", "docextract_secret")
	v.SetDefault("db.name", "docextract_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "docextract")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                 "DOCEXTRACT_SERVER_PORT",
		"server.read_timeout":         "DOCEXTRACT_SERVER_READ_TIMEOUT",
		"server.write_timeout":        "DOCEXTRACT_SERVER_WRITE_TIMEOUT",
		"server.environment":          "DOCEXTRACT_SERVER_ENVIRONMENT",
		"log.level":                   "DOCEXTRACT_LOG_LEVEL",
		"log.format":                  "DOCEXTRACT_LOG_FORMAT",
		"llm.provider":                "DOCEXTRACT_LLM_PROVIDER",
		"llm.api_key":                 "DOCEXTRACT_LLM_API_KEY",
		"llm.default_model":           "DOCEXTRACT_LLM_DEFAULT_MODEL",
		"llm.endpoint":                "DOCEXTRACT_LLM_ENDPOINT",
		"llm.referer":                 "DOCEXTRACT_LLM_REFERER",
		"llm.title":                   "DOCEXTRACT_LLM_TITLE",
		"llm.max_tokens":              "DOCEXTRACT_LLM_MAX_TOKENS",
		"llm.timeout_secs":            "DOCEXTRACT_LLM_TIMEOUT_SECS",
		"llm.primary.provider":        "DOCEXTRACT_LLM_PRIMARY_PROVIDER",
		"llm.primary.api_key":         "DOCEXTRACT_LLM_PRIMARY_API_KEY",
		"llm.primary.default_model":   "DOCEXTRACT_LLM_PRIMARY_DEFAULT_MODEL",
		"llm.primary.endpoint":        "DOCEXTRACT_LLM_PRIMARY_ENDPOINT",
		"llm.primary.referer":         "DOCEXTRACT_LLM_PRIMARY_REFERER",
		"llm.primary.title":           "DOCEXTRACT_LLM_PRIMARY_TITLE",
		"llm.primary.max_tokens":      "DOCEXTRACT_LLM_PRIMARY_MAX_TOKENS",
		"llm.primary.timeout_secs":    "DOCEXTRACT_LLM_PRIMARY_TIMEOUT_SECS",
		"llm.secondary.provider":      "DOCEXTRACT_LLM_SECONDARY_PROVIDER",
		"llm.secondary.api_key":       "DOCEXTRACT_LLM_SECONDARY_API_KEY",
		"llm.secondary.default_model": "DOCEXTRACT_LLM_SECONDARY_DEFAULT_MODEL",
		"llm.secondary.endpoint":      "DOCEXTRACT_LLM_SECONDARY_ENDPOINT",
		"llm.secondary.referer":       "DOCEXTRACT_LLM_SECONDARY_REFERER",
		"llm.secondary.title":         "DOCEXTRACT_LLM_SECONDARY_TITLE",
		"llm.secondary.max_tokens":    "DOCEXTRACT_LLM_SECONDARY_MAX_TOKENS",
		"llm.secondary.timeout_secs":  "DOCEXTRACT_LLM_SECONDARY_TIMEOUT_SECS",
		"chat.history_window":         "DOCEXTRACT_CHAT_HISTORY_WINDOW",
		"upload.max_file_size_mb":     "DOCEXTRACT_UPLOAD_MAX_FILE_SIZE_MB",
		"store.driver":                "DOCEXTRACT_STORE_DRIVER",
		"db.host":                     "DOCEXTRACT_DB_HOST",
		"db.port":                     "DOCEXTRACT_DB_PORT",
		"db.user":                     "DOCEXTRACT_DB_USER",
		"db.password":                 "DOCEXTRACT_DB_PASSWORD",
		"db.name":                     "DOCEXTRACT_DB_NAME",
		"db.sslmode":                  "DOCEXTRACT_DB_SSLMODE",
		"db.max_open":                 "DOCEXTRACT_DB_MAX_OPEN",
		"db.max_idle":                 "DOCEXTRACT_DB_MAX_IDLE",
		"redis.addr":                  "DOCEXTRACT_REDIS_ADDR",
		"redis.password":              "DOCEXTRACT_REDIS_PASSWORD",
		"redis.db":                    "DOCEXTRACT_REDIS_DB",
		"redis.key_prefix":            "DOCEXTRACT_REDIS_KEY_PREFIX",
		"s3.region":                   "DOCEXTRACT_S3_REGION",
		"s3.bucket":                   "DOCEXTRACT_S3_BUCKET",
		"s3.endpoint":                 "DOCEXTRACT_S3_ENDPOINT",
		"s3.access_key":               "DOCEXTRACT_S3_ACCESS_KEY",
		"s3.secret_key":               "DOCEXTRACT_S3_SECRET_KEY",
		"s3.presign_expiry":           "DOCEXTRACT_S3_PRESIGN_EXPIRY",
		"cors.allowed_origins":        "DOCEXTRACT_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if DOCEXTRACT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCEXTRACT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.LLM = LLMConfig{
		Provider:     v.GetString("llm.provider"),
		APIKey:       v.GetString("llm.api_key"),
		DefaultModel: v.GetString("llm.default_model"),
		Endpoint:     v.GetString("llm.endpoint"),
		Referer:      v.GetString("llm.referer"),
		Title:        v.GetString("llm.title"),
		MaxTokens:    v.GetInt("llm.max_tokens"),
		TimeoutSecs:  v.GetInt("llm.timeout_secs"),
		Primary:      loadProvider(v, "llm.primary"),
		Secondary:    loadProvider(v, "llm.secondary"),
	}
	cfg.Chat = ChatConfig{
		HistoryWindow: v.GetInt("chat.history_window"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Store = StoreConfig{
		Driver: strings.ToLower(v.GetString("store.driver")),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Redis = RedisConfig{
		Addr:      v.GetString("redis.addr"),
		Password:  v.GetString("redis.password"),
		DB:        v.GetInt("redis.db"),
		KeyPrefix: v.GetString("redis.key_prefix"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}

func loadProvider(v *viper.Viper, prefix string) LLMProviderConfig {
	return LLMProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		Endpoint:     v.GetString(prefix + ".endpoint"),
		Referer:      v.GetString(prefix + ".referer"),
		Title:        v.GetString(prefix + ".title"),
		MaxTokens:    v.GetInt(prefix + ".max_tokens"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
	}
}

// Validate checks the settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	primary := c.LLM.PrimaryConfig()
	if primary.Provider == "" {
		return errors.New("llm provider is not configured")
	}
	if primary.APIKey == "" {
		return fmt.Errorf("llm api key is not configured for provider %s", primary.Provider)
	}
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverRedis:
	default:
		return fmt.Errorf("unknown store driver: %s", c.Store.Driver)
	}
	if c.Upload.MaxFileSizeMB <= 0 {
		return errors.New("upload max file size must be positive")
	}
	return nil
}
