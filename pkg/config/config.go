/*
Package config manages the TOML config for wordfix.
*/
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/bastiangx/wordfix/internal/utils"
	"github.com/charmbracelet/log"
)

// envPrefix is prepended to every environment override.
const envPrefix = "WORDFIX_"

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Corpus CorpusConfig `toml:"corpus"`
	Redis  RedisConfig  `toml:"redis"`
	CLI    CliConfig    `toml:"cli"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxBatch      int  `toml:"max_batch"`
	MaxWordLen    int  `toml:"max_word_len"`
	MaxCandidates int  `toml:"max_candidates"`
	Workers       int  `toml:"workers"`
	CacheSize     int  `toml:"cache_size"`
	EnableFilter  bool `toml:"enable_filter"`
}

// CorpusConfig says where the frequency model is built from.
type CorpusConfig struct {
	Path   string `toml:"path"`
	Format string `toml:"format"`
}

// RedisConfig holds the optional extra vocabulary source.
type RedisConfig struct {
	Enabled   bool   `toml:"enabled"`
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	CountsKey string `toml:"counts_key"`
	WordsKey  string `toml:"words_key"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit    int  `toml:"default_limit"`
	DefaultMinLen   int  `toml:"default_min_len"`
	DefaultMaxLen   int  `toml:"default_max_len"`
	DefaultNoFilter bool `toml:"default_no_filter"`
	ShowCandidates  bool `toml:"show_candidates"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. the platform config dir (~/.config/wordfix, %APPDATA%\wordfix)
// 2. ~/.wordfix
// 3. the temp dir
func GetConfigDir() (string, error) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		log.Errorf("Failed to resolve paths: %v", err)
		return "", err
	}
	return pr.GetConfigPath("config.toml")
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordfix/config.toml
// 3. Builtin defaults
// Environment overrides are applied on top of whichever source won.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	config, path := loadWithPriority(customConfigPath)
	config.ApplyEnv()
	return config, path, nil
}

func loadWithPriority(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), ""
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxBatch:      256,
			MaxWordLen:    60,
			MaxCandidates: 8,
			Workers:       0,
			CacheSize:     4096,
			EnableFilter:  true,
		},
		Corpus: CorpusConfig{
			Path:   "data/big.txt",
			Format: "auto",
		},
		Redis: RedisConfig{
			Enabled:   false,
			Addr:      "localhost:6379",
			DB:        0,
			CountsKey: "wordfix:counts",
			WordsKey:  "wordfix:words",
		},
		CLI: CliConfig{
			DefaultLimit:    5,
			DefaultMinLen:   1,
			DefaultMaxLen:   60,
			DefaultNoFilter: false,
			ShowCandidates:  true,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. Keys missing from the file keep
// their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse salvages the sections that still decode as a generic
// TOML document when the typed decode fails.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "corpus"); ok {
		extractCorpusConfig(section, &config.Corpus)
	}
	if section, ok := utils.ExtractSection(tempConfig, "redis"); ok {
		extractRedisConfig(section, &config.Redis)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_batch"); ok {
		server.MaxBatch = val
	}
	if val, ok := utils.ExtractInt64(data, "max_word_len"); ok {
		server.MaxWordLen = val
	}
	if val, ok := utils.ExtractInt64(data, "max_candidates"); ok {
		server.MaxCandidates = val
	}
	if val, ok := utils.ExtractInt64(data, "workers"); ok {
		server.Workers = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		server.CacheSize = val
	}
	if val, ok := utils.ExtractBool(data, "enable_filter"); ok {
		server.EnableFilter = val
	}
}

func extractCorpusConfig(data map[string]any, corpus *CorpusConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		corpus.Path = val
	}
	if val, ok := utils.ExtractString(data, "format"); ok {
		corpus.Format = val
	}
}

func extractRedisConfig(data map[string]any, redis *RedisConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		redis.Enabled = val
	}
	if val, ok := utils.ExtractString(data, "addr"); ok {
		redis.Addr = val
	}
	if val, ok := utils.ExtractString(data, "password"); ok {
		redis.Password = val
	}
	if val, ok := utils.ExtractInt64(data, "db"); ok {
		redis.DB = val
	}
	if val, ok := utils.ExtractString(data, "counts_key"); ok {
		redis.CountsKey = val
	}
	if val, ok := utils.ExtractString(data, "words_key"); ok {
		redis.WordsKey = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "default_min_len"); ok {
		cli.DefaultMinLen = val
	}
	if val, ok := utils.ExtractInt64(data, "default_max_len"); ok {
		cli.DefaultMaxLen = val
	}
	if val, ok := utils.ExtractBool(data, "default_no_filter"); ok {
		cli.DefaultNoFilter = val
	}
	if val, ok := utils.ExtractBool(data, "show_candidates"); ok {
		cli.ShowCandidates = val
	}
}

// ApplyEnv overrides values from WORDFIX_* environment variables.
// Unparseable values are logged and ignored.
func (c *Config) ApplyEnv() {
	envString("CORPUS", &c.Corpus.Path)
	envString("FORMAT", &c.Corpus.Format)
	envInt("WORKERS", &c.Server.Workers)
	envInt("MAX_BATCH", &c.Server.MaxBatch)
	envBool("REDIS", &c.Redis.Enabled)
	envString("REDIS_ADDR", &c.Redis.Addr)
	envString("REDIS_PASSWORD", &c.Redis.Password)
	envInt("REDIS_DB", &c.Redis.DB)
}

func envString(name string, dst *string) {
	if val, ok := os.LookupEnv(envPrefix + name); ok && val != "" {
		*dst = val
	}
}

func envInt(name string, dst *int) {
	val, ok := os.LookupEnv(envPrefix + name)
	if !ok || val == "" {
		return
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Warnf("Ignoring %s%s=%q: %v", envPrefix, name, val, err)
		return
	}
	*dst = n
}

func envBool(name string, dst *bool) {
	val, ok := os.LookupEnv(envPrefix + name)
	if !ok || val == "" {
		return
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		log.Warnf("Ignoring %s%s=%q: %v", envPrefix, name, val, err)
		return
	}
	*dst = b
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "built-in defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
