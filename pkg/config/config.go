// Package config loads harvester settings from an optional YAML file and
// ADS_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"ads-harvest/pkg/httpclient"
	"ads-harvest/pkg/logger"
	"ads-harvest/pkg/query"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. ADS_MONGO_URI.
const EnvPrefix = "ADS"

type Config struct {
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Log      LogConfig      `mapstructure:"log"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
	Download DownloadConfig `mapstructure:"download"`
}

type ArchiveConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	AcceptLanguage string        `mapstructure:"accept_language"`
	PrefsCookie    string        `mapstructure:"prefs_cookie"`
	UserAgent      string        `mapstructure:"user_agent"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type PostgresConfig struct {
	DSN          string        `mapstructure:"dsn"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	ConnMaxIdle  time.Duration `mapstructure:"conn_max_idle"`
	ConnMaxLife  time.Duration `mapstructure:"conn_max_life"`
}

type SupabaseConfig struct {
	URL              string `mapstructure:"url"`
	Key              string `mapstructure:"key"`
	Table            string `mapstructure:"table"`
	ConnectionString string `mapstructure:"connection_string"`
	Password         string `mapstructure:"password"`
}

// DownloadConfig controls the PDF metadata stage.
type DownloadConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	TempDir string `mapstructure:"temp_dir"` // "" uses os.TempDir
}

// Default returns a freshly built configuration with every default applied.
func Default() *Config {
	http := httpclient.DefaultConfig()
	return &Config{
		Archive: ArchiveConfig{
			BaseURL:        query.DefaultBaseURL,
			AcceptLanguage: http.AcceptLanguage,
			PrefsCookie:    http.Cookie,
			Timeout:        http.Timeout,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Mongo: MongoConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "ads",
			Collection: "documents",
		},
		Supabase: SupabaseConfig{
			Table: "documents",
		},
	}
}

// Load reads the config file at path (skipped when path is empty) and
// applies environment overrides on top of Default.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("archive.base_url", d.Archive.BaseURL)
	v.SetDefault("archive.accept_language", d.Archive.AcceptLanguage)
	v.SetDefault("archive.prefs_cookie", d.Archive.PrefsCookie)
	v.SetDefault("archive.user_agent", d.Archive.UserAgent)
	v.SetDefault("archive.timeout", d.Archive.Timeout)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)

	v.SetDefault("mongo.uri", d.Mongo.URI)
	v.SetDefault("mongo.database", d.Mongo.Database)
	v.SetDefault("mongo.collection", d.Mongo.Collection)

	v.SetDefault("postgres.dsn", d.Postgres.DSN)
	v.SetDefault("postgres.max_open_conns", d.Postgres.MaxOpenConns)
	v.SetDefault("postgres.max_idle_conns", d.Postgres.MaxIdleConns)
	v.SetDefault("postgres.conn_max_idle", d.Postgres.ConnMaxIdle)
	v.SetDefault("postgres.conn_max_life", d.Postgres.ConnMaxLife)

	v.SetDefault("supabase.url", d.Supabase.URL)
	v.SetDefault("supabase.key", d.Supabase.Key)
	v.SetDefault("supabase.table", d.Supabase.Table)
	v.SetDefault("supabase.connection_string", d.Supabase.ConnectionString)
	v.SetDefault("supabase.password", d.Supabase.Password)

	v.SetDefault("download.enabled", d.Download.Enabled)
	v.SetDefault("download.temp_dir", d.Download.TempDir)
}

// HTTP converts the archive section into client settings.
func (c *Config) HTTP() httpclient.Config {
	return httpclient.Config{
		AcceptLanguage: c.Archive.AcceptLanguage,
		Cookie:         c.Archive.PrefsCookie,
		UserAgent:      c.Archive.UserAgent,
		Timeout:        c.Archive.Timeout,
	}
}

// Logger converts the log section into logger options.
func (c *Config) Logger() logger.Options {
	return logger.Options{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		Writer:     os.Stderr,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
		Compress:   c.Log.Compress,
	}
}
