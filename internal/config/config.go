// Package config provides application configuration management. Values
// load from a YAML file with environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/database"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/logger"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// VNNEWS_DATABASE_HOST overrides database.host.
const EnvPrefix = "VNNEWS"

// Defaults applied when the file and environment leave a value unset.
const (
	defaultUserAgent      = "Mozilla/5.0 (compatible; vnnews-crawler/1.0)"
	defaultAcceptLanguage = "vi-VN,vi;q=0.9,en;q=0.5"
	defaultSitesFile      = "config/sites.yaml"
)

// ErrMissingDatabase is returned when no database name is configured.
var ErrMissingDatabase = errors.New("config: database.dbname is required")

// Crawl holds run-wide crawl settings.
type Crawl struct {
	// UserAgent sent on every request.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
	// AcceptLanguage sent on every request when non-empty.
	AcceptLanguage string `yaml:"accept_language" mapstructure:"accept_language"`
	// SitesFile is the path of the site profile YAML file.
	SitesFile string `yaml:"sites_file" mapstructure:"sites_file"`
}

// Config is the application configuration.
type Config struct {
	Log      logger.Config   `yaml:"log" mapstructure:"log"`
	Database database.Config `yaml:"database" mapstructure:"database"`
	Crawl    Crawl           `yaml:"crawl" mapstructure:"crawl"`
}

// Validate checks the values a crawl run cannot start without.
func (c *Config) Validate() error {
	if c.Database.DBName == "" {
		return ErrMissingDatabase
	}
	return nil
}

// Load reads the configuration file at path, layering environment
// overrides on top. An empty path searches for config.yaml in the working
// directory; a missing file is not an error, the defaults and environment
// carry a minimal run.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers the default value of every key so viper's env
// override lookup knows about them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("crawl.user_agent", defaultUserAgent)
	v.SetDefault("crawl.accept_language", defaultAcceptLanguage)
	v.SetDefault("crawl.sites_file", defaultSitesFile)
}
