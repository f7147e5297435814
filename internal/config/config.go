// Package config loads the application configuration. Precedence, highest
// first: CLI flags, environment variables (OFFLINEVAULT_*), the TOML config
// file, built-in defaults.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Default values for configuration
const (
	DefaultSavePath             = "downloads"
	DefaultDatabasePath         = "offlinevault.db" // Relative to SavePath if not absolute
	DefaultDatabaseBackend      = "sqlite"
	DefaultIndexPath            = "offlinevault.bleve" // Relative to SavePath if not absolute
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "text"
	DefaultConfigFilePath       = "config.toml"
	DefaultTransferTimeoutSec   = 900
	DefaultTransferChunkKB      = 256
	DefaultPlaylistMaxRetries   = 3
	DefaultPlaylistRetryDelayMs = 1000
)

// Config is the resolved application configuration.
type Config struct {
	SavePath        string `mapstructure:"SavePath"`
	DatabasePath    string `mapstructure:"DatabasePath"`
	DatabaseBackend string `mapstructure:"DatabaseBackend"`
	IndexPath       string `mapstructure:"IndexPath"`
	LogLevel        string `mapstructure:"LogLevel"`
	LogFormat       string `mapstructure:"LogFormat"`

	TransferTimeoutSec   int `mapstructure:"TransferTimeoutSec"`
	TransferChunkKB      int `mapstructure:"TransferChunkKB"`
	PlaylistMaxRetries   int `mapstructure:"PlaylistMaxRetries"`
	PlaylistRetryDelayMs int `mapstructure:"PlaylistRetryDelayMs"`
}

// CliFlags carries explicitly-set command line values. Nil means the flag
// was not provided and must not override lower-precedence sources.
type CliFlags struct {
	ConfigFilePath  *string
	SavePath        *string
	DatabasePath    *string
	DatabaseBackend *string
	IndexPath       *string
	LogLevel        *string
	LogFormat       *string
}

func setViperDefaults(v *viper.Viper) {
	v.SetDefault("SavePath", DefaultSavePath)
	v.SetDefault("DatabasePath", DefaultDatabasePath)
	v.SetDefault("DatabaseBackend", DefaultDatabaseBackend)
	v.SetDefault("IndexPath", DefaultIndexPath)
	v.SetDefault("LogLevel", DefaultLogLevel)
	v.SetDefault("LogFormat", DefaultLogFormat)
	v.SetDefault("TransferTimeoutSec", DefaultTransferTimeoutSec)
	v.SetDefault("TransferChunkKB", DefaultTransferChunkKB)
	v.SetDefault("PlaylistMaxRetries", DefaultPlaylistMaxRetries)
	v.SetDefault("PlaylistRetryDelayMs", DefaultPlaylistRetryDelayMs)
}

// Initialize resolves the configuration from defaults, config file,
// environment and CLI flags.
func Initialize(flags CliFlags) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OFFLINEVAULT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setViperDefaults(v)

	configFilePath := DefaultConfigFilePath
	if flags.ConfigFilePath != nil {
		configFilePath = *flags.ConfigFilePath
	}
	v.SetConfigFile(configFilePath)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || flags.ConfigFilePath == nil {
			log.Debugf("Config file %s not readable, using defaults: %v", configFilePath, err)
		} else {
			return Config{}, fmt.Errorf("reading config file %s: %w", configFilePath, err)
		}
	} else {
		log.Debugf("Loaded config file %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if flags.SavePath != nil {
		cfg.SavePath = *flags.SavePath
	}
	if flags.DatabasePath != nil {
		cfg.DatabasePath = *flags.DatabasePath
	}
	if flags.DatabaseBackend != nil {
		cfg.DatabaseBackend = *flags.DatabaseBackend
	}
	if flags.IndexPath != nil {
		cfg.IndexPath = *flags.IndexPath
	}
	if flags.LogLevel != nil {
		cfg.LogLevel = *flags.LogLevel
	}
	if flags.LogFormat != nil {
		cfg.LogFormat = *flags.LogFormat
	}

	if err := validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ResolvedDatabasePath anchors a relative database path under SavePath.
func (c *Config) ResolvedDatabasePath() string {
	if filepath.IsAbs(c.DatabasePath) {
		return c.DatabasePath
	}
	return filepath.Join(c.SavePath, c.DatabasePath)
}

// ResolvedIndexPath anchors a relative index path under SavePath.
func (c *Config) ResolvedIndexPath() string {
	if filepath.IsAbs(c.IndexPath) {
		return c.IndexPath
	}
	return filepath.Join(c.SavePath, c.IndexPath)
}

func validate(cfg *Config) error {
	if cfg.SavePath == "" {
		return fmt.Errorf("SavePath must not be empty")
	}
	switch cfg.DatabaseBackend {
	case "sqlite", "bitcask":
	default:
		return fmt.Errorf("unknown DatabaseBackend %q (want sqlite or bitcask)", cfg.DatabaseBackend)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown LogFormat %q (want text or json)", cfg.LogFormat)
	}
	if cfg.TransferChunkKB <= 0 {
		cfg.TransferChunkKB = DefaultTransferChunkKB
	}
	if cfg.TransferTimeoutSec <= 0 {
		cfg.TransferTimeoutSec = DefaultTransferTimeoutSec
	}
	return nil
}
