package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Site      SiteConfig     `mapstructure:"site"`
	Search    SearchConfig   `mapstructure:"search"`
	Resolver  ResolverConfig `mapstructure:"resolver"`
	Network   NetworkConfig  `mapstructure:"network"`
	Downloads DownloadConfig `mapstructure:"downloads"`
	History   HistoryConfig  `mapstructure:"history"`
}

// SiteConfig selects the catalog mirror and its markup layout
type SiteConfig struct {
	Mirror string `mapstructure:"mirror"` // empty means the first known mirror
	Layout string `mapstructure:"layout"` // empty means the mirror's own layout
	Scheme string `mapstructure:"scheme"`
}

// SearchConfig holds default search filters
type SearchConfig struct {
	Language string `mapstructure:"language"`
	Format   string `mapstructure:"format"`
	Limit    int    `mapstructure:"limit"`
	Decorate bool   `mapstructure:"decorate"`
}

// ResolverConfig holds the mirror page templates tried for direct links
type ResolverConfig struct {
	Candidates []string `mapstructure:"candidates"`
}

// NetworkConfig holds network settings
type NetworkConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
	Proxy           string        `mapstructure:"proxy"`
	Browser         bool          `mapstructure:"browser"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	RetryBaseDelay  time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay   time.Duration `mapstructure:"retry_max_delay"`
	RetryMultiplier float64       `mapstructure:"retry_multiplier"`
}

// DownloadConfig holds download settings
type DownloadConfig struct {
	Path          string `mapstructure:"path"`
	Notifications bool   `mapstructure:"notifications"`
	Verify        bool   `mapstructure:"verify"`
}

// HistoryConfig controls the local search history
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var cfg *Config

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "libgenfic")
}

// GetDBPath returns the database file path
func GetDBPath() string {
	return filepath.Join(GetConfigDir(), "libgenfic.db")
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// SetDefaults registers the default value of every key
func SetDefaults() {
	viper.SetDefault("site.mirror", "")
	viper.SetDefault("site.layout", "")
	viper.SetDefault("site.scheme", "http")
	viper.SetDefault("search.language", "English")
	viper.SetDefault("search.format", "")
	viper.SetDefault("search.limit", 5)
	viper.SetDefault("search.decorate", false)
	viper.SetDefault("resolver.candidates", []string{
		"http://library.lol/fiction/{md5}",
		"http://{host}/get.php?md5={md5}",
	})
	viper.SetDefault("network.timeout", 30*time.Second)
	viper.SetDefault("network.user_agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	viper.SetDefault("network.proxy", "")
	viper.SetDefault("network.browser", false)
	viper.SetDefault("network.retry_attempts", 3)
	viper.SetDefault("network.retry_base_delay", time.Second)
	viper.SetDefault("network.retry_max_delay", 30*time.Second)
	viper.SetDefault("network.retry_multiplier", 2.0)
	viper.SetDefault("downloads.path", "~/Downloads/books")
	viper.SetDefault("downloads.notifications", false)
	viper.SetDefault("downloads.verify", true)
	viper.SetDefault("history.enabled", true)
}

// Init initializes the configuration. A .env file in the working directory is
// loaded into the environment first, so LIBGENFIC_* variables can live there.
func Init(cfgFile string) error {
	_ = godotenv.Load()

	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(GetConfigDir())
	}

	// Environment variable overrides
	viper.SetEnvPrefix("LIBGENFIC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing default config file is fine, an explicit one must exist
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return err
		}
	}

	cfg = nil
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		cfg = &Config{}
		viper.Unmarshal(cfg)
		cfg.Downloads.Path = expandPath(cfg.Downloads.Path)
	}
	return cfg
}

// Set sets a configuration value and writes the config file
func Set(key, value string) error {
	viper.Set(key, value)

	// Ensure config directory exists
	configDir := GetConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	// Reset cached config
	cfg = nil

	return viper.WriteConfigAs(GetConfigPath())
}

// GetValue retrieves a configuration value
func GetValue(key string) interface{} {
	return viper.Get(key)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
