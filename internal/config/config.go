package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/KofuCodes/ReMind/internal/models"
)

// Conf holds the application configuration, making it accessible globally.
var Conf *Config

// Config struct is the top-level configuration structure.
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Scoring  ScoringConfig   `mapstructure:"scoring"`
	Baseline models.Baseline `mapstructure:"baseline"`
	Store    StoreConfig     `mapstructure:"store"`
	Database DatabaseConfig  `mapstructure:"database"`
	Sync     SyncConfig      `mapstructure:"sync"`
	Logging  LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Port          string `mapstructure:"port"`
	SessionSecret string `mapstructure:"session_secret"`
}

// ScoringConfig selects the deviation formula variant.
type ScoringConfig struct {
	Variant string `mapstructure:"variant"`
}

// StoreConfig selects the session store driver.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

// DatabaseConfig holds archive database connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// SyncConfig holds remote mirror settings. An empty URL disables that side.
type SyncConfig struct {
	PushURL             string `mapstructure:"push_url"`
	PollURL             string `mapstructure:"poll_url"`
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5050")
	v.SetDefault("server.session_secret", "change-me")

	// Scoring defaults
	v.SetDefault("scoring.variant", "score")
	v.SetDefault("baseline.expected_score", 9.5)
	v.SetDefault("baseline.accuracy", 0.9)
	v.SetDefault("baseline.mean_reaction_ms", 1800)

	// Store defaults
	v.SetDefault("store.driver", "memory")

	// Database defaults (only used when store.driver is postgres)
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "remind-db")

	// Sync defaults
	v.SetDefault("sync.push_url", "")
	v.SetDefault("sync.poll_url", "")
	v.SetDefault("sync.poll_interval_seconds", 30)

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs
}

// Init initializes the configuration with Viper. onReload, if non-nil, is
// invoked after every successful hot reload so runtime state (such as the
// active baseline) can pick up file edits.
func Init(projectRoot string, log *zap.Logger, onReload func(*Config)) error {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// --- File Configuration ---
	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// --- Environment Variable Binding ---
	v.SetEnvPrefix("REMIND") // e.g., REMIND_SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read the initial configuration from the file.
	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal the config into our global Conf variable
	if err := v.Unmarshal(&Conf); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Set up a watch for configuration changes for hot-reloading
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		if err := v.Unmarshal(&Conf); err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		if onReload != nil {
			onReload(Conf)
		}
	})

	log.Info("Configuration loaded successfully")
	return nil
}
