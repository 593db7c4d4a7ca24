// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all application configuration knobs loaded via Viper.
type Config struct {
	Archive ArchiveConfig `mapstructure:"archive"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Cache   CacheConfig   `mapstructure:"cache"`
	DB      DBConfig      `mapstructure:"db"`
	Export  ExportConfig  `mapstructure:"export"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ArchiveConfig points the crawler at the trivia archive site.
type ArchiveConfig struct {
	SeasonsURL string `mapstructure:"seasons_url"`
	BaseURL    string `mapstructure:"base_url"`
}

// FetchConfig governs the HTTP fetch layer and the courtesy delay applied
// before each network request.
type FetchConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	DelayMinMs     int    `mapstructure:"delay_min_ms"`
	DelayMaxMs     int    `mapstructure:"delay_max_ms"`
}

// CacheConfig selects and parameterizes the page cache backend.
type CacheConfig struct {
	Provider string `mapstructure:"provider"`
	Dir      string `mapstructure:"dir"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	Provider string `mapstructure:"provider"`
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int    `mapstructure:"max_conns"`
}

// ExportConfig sets where static site artifacts are written and optionally
// mirrored.
type ExportConfig struct {
	DistDir      string `mapstructure:"dist_dir"`
	MirrorBucket string `mapstructure:"mirror_bucket"`
}

// NotifyConfig holds metadata for publish-subscribe run notifications.
type NotifyConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// ServerConfig controls HTTP server behavior for the serve command.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("JARCHIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("archive.seasons_url", "http://www.j-archive.com/listseasons.php")
	v.SetDefault("archive.base_url", "http://www.j-archive.com/")
	v.SetDefault("fetch.user_agent", "jarchive-bot/0.1")
	v.SetDefault("fetch.timeout_seconds", 15)
	v.SetDefault("fetch.delay_min_ms", 200)
	v.SetDefault("fetch.delay_max_ms", 2000)
	v.SetDefault("cache.provider", "local")
	v.SetDefault("cache.dir", "cache")
	v.SetDefault("db.provider", "postgres")
	v.SetDefault("db.table", "clues")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("export.dist_dir", "dist")
	v.SetDefault("notify.provider", "noop")
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Archive.SeasonsURL == "" {
		return fmt.Errorf("archive.seasons_url must be set")
	}
	if c.Archive.BaseURL == "" {
		return fmt.Errorf("archive.base_url must be set")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Fetch.DelayMinMs < 0 {
		return fmt.Errorf("fetch.delay_min_ms must be >= 0")
	}
	if c.Fetch.DelayMaxMs <= c.Fetch.DelayMinMs {
		return fmt.Errorf("fetch.delay_max_ms must be > fetch.delay_min_ms")
	}
	switch c.Cache.Provider {
	case "local":
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache.dir must be set for the local cache provider")
		}
	case "memory":
	default:
		return fmt.Errorf("cache.provider must be one of local, memory")
	}
	switch c.DB.Provider {
	case "postgres":
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn must be set for the postgres provider")
		}
	case "noop":
	default:
		return fmt.Errorf("db.provider must be one of postgres, noop")
	}
	if c.DB.Table == "" {
		return fmt.Errorf("db.table must be set")
	}
	switch c.Notify.Provider {
	case "noop":
	case "pubsub":
		if c.Notify.ProjectID == "" || c.Notify.TopicName == "" {
			return fmt.Errorf("notify.project_id and notify.topic_name must be set for the pubsub provider")
		}
	default:
		return fmt.Errorf("notify.provider must be one of noop, pubsub")
	}
	if c.Export.DistDir == "" {
		return fmt.Errorf("export.dist_dir must be set")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// FetchTimeout converts the fetch timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// DelayBounds returns the half-open courtesy delay interval [min, max).
func (c Config) DelayBounds() (time.Duration, time.Duration) {
	return time.Duration(c.Fetch.DelayMinMs) * time.Millisecond,
		time.Duration(c.Fetch.DelayMaxMs) * time.Millisecond
}
