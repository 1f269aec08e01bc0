package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all configuration for the HealthAI server
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Security  SecurityConfig  `mapstructure:"security"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address      string `mapstructure:"address"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// StorageConfig holds database settings
type StorageConfig struct {
	DataDir    string `mapstructure:"data_dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
	BadgerPath string `mapstructure:"badger_path"`
}

// LLMConfig holds completion service settings
type LLMConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Timeout     int     `mapstructure:"timeout"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	RPM         int     `mapstructure:"rpm"`
}

// SecurityConfig holds auth settings
type SecurityConfig struct {
	JWTSecret     string   `mapstructure:"jwt_secret"`
	AdminPassword string   `mapstructure:"admin_password"`
	AllowOrigins  []string `mapstructure:"allow_origins"`
}

// AnalyticsConfig holds analytics engine settings
type AnalyticsConfig struct {
	// WeeklySchedule is a cron expression for report precompute
	WeeklySchedule string `mapstructure:"weekly_schedule"`
	// CacheTTLHours bounds how long a cached weekly report is served
	CacheTTLHours int `mapstructure:"cache_ttl_hours"`
	// MaxConcurrent caps simultaneous per-user report builds
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

var (
	watchOnce sync.Once
)

// Load loads configuration from file, env, and defaults
func Load(configPath, dataDir string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if dataDir == "" {
		dataDir = getDefaultDataDir()
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	v.Set("storage.data_dir", dataDir)
	v.SetDefault("storage.sqlite_path", filepath.Join(dataDir, "healthai.db"))
	v.SetDefault("storage.badger_path", filepath.Join(dataDir, "badger"))

	if configPath == "" {
		configPath = filepath.Join(dataDir, "healthai.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Environment variables (HEALTHAI_SERVER_PORT, HEALTHAI_LLM_API_KEY, etc.)
	v.SetEnvPrefix("HEALTHAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Watch reloads mutable settings when the config file changes on disk.
// Only completion-service and analytics settings are hot-swapped; server
// address and storage paths require a restart.
func Watch(configPath string, logger *zap.Logger, onChange func(*Config)) {
	if configPath == "" {
		return
	}
	watchOnce.Do(func() {
		v := viper.New()
		setDefaults(v)
		v.SetConfigFile(configPath)
		v.OnConfigChange(func(e fsnotify.Event) {
			logger.Info("Config file changed", zap.String("file", e.Name))
			if err := v.ReadInConfig(); err != nil {
				logger.Warn("Failed to re-read config", zap.Error(err))
				return
			}
			var cfg Config
			if err := v.Unmarshal(&cfg); err != nil {
				logger.Warn("Failed to unmarshal config", zap.Error(err))
				return
			}
			onChange(&cfg)
		})
		v.WatchConfig()
	})
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com/v1beta/openai")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.timeout", 60)
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.temperature", 0.4)
	v.SetDefault("llm.rpm", 60)

	v.SetDefault("security.allow_origins", []string{"*"})

	// Monday 6am: reports cover the week that just ended
	v.SetDefault("analytics.weekly_schedule", "0 6 * * 1")
	v.SetDefault("analytics.cache_ttl_hours", 24)
	v.SetDefault("analytics.max_concurrent", 4)
}

func getDefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "healthai")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}

	return filepath.Join(home, ".local", "share", "healthai")
}

// loadEnvOverrides loads specific env vars that Viper doesn't bind reliably
func loadEnvOverrides(cfg *Config) {
	getEnv := func(key, fallback string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		return fallback
	}

	cfg.LLM.APIKey = getEnv("HEALTHAI_LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.BaseURL = getEnv("HEALTHAI_LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Model = getEnv("HEALTHAI_LLM_MODEL", cfg.LLM.Model)

	cfg.Server.Address = getEnv("HEALTHAI_SERVER_ADDRESS", cfg.Server.Address)
	if port := os.Getenv("HEALTHAI_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	cfg.Storage.DataDir = getEnv("HEALTHAI_STORAGE_DATA_DIR", cfg.Storage.DataDir)

	cfg.Security.JWTSecret = getEnv("HEALTHAI_SECURITY_JWT_SECRET", cfg.Security.JWTSecret)
	cfg.Security.AdminPassword = getEnv("HEALTHAI_SECURITY_ADMIN_PASSWORD", cfg.Security.AdminPassword)
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}

	if cfg.Analytics.CacheTTLHours <= 0 {
		cfg.Analytics.CacheTTLHours = 24
	}
	if cfg.Analytics.MaxConcurrent <= 0 {
		cfg.Analytics.MaxConcurrent = 4
	}

	if cfg.Security.JWTSecret == "" {
		cfg.Security.JWTSecret = generateRandomString(32)
	}

	return nil
}

func generateRandomString(n int) string {
	bytes := make([]byte, (n+1)/2)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)[:n]
}
