// Package config loads settings from an optional YAML file, a .env file and
// ARSENAL_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/erazemk/arsenal/internal/db"
	"github.com/erazemk/arsenal/internal/model"
)

// EnvPrefix prefixes environment overrides, e.g. ARSENAL_DATA_DIR.
const EnvPrefix = "ARSENAL"

type Config struct {
	Env        string `mapstructure:"env"`
	Addr       string `mapstructure:"addr"`
	DataDir    string `mapstructure:"data_dir"`
	UploadsDir string `mapstructure:"uploads_dir"`
	BackupsDir string `mapstructure:"backups_dir"`
	LogFile    string `mapstructure:"log_file"`
	AdminLogin string `mapstructure:"admin_login"`

	Auth struct {
		HashPasswords bool `mapstructure:"hash_passwords"`
	} `mapstructure:"auth"`

	Session struct {
		Backend      string        `mapstructure:"backend"`
		TTL          time.Duration `mapstructure:"ttl"`
		CookieSecure bool          `mapstructure:"cookie_secure"`
	} `mapstructure:"session"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`

	Tracing struct {
		Endpoint    string  `mapstructure:"endpoint"`
		Insecure    bool    `mapstructure:"insecure"`
		SampleRatio float64 `mapstructure:"sample_ratio"`
	} `mapstructure:"tracing"`

	Items model.ItemDefaults `mapstructure:"items"`
}

// Dev reports whether the server runs in development mode.
func (c Config) Dev() bool {
	return c.Env == "dev"
}

func setDefaults(v *viper.Viper) {
	d := model.DefaultItemDefaults()

	v.SetDefault("env", "prod")
	v.SetDefault("addr", ":3000")
	v.SetDefault("data_dir", "data")
	v.SetDefault("uploads_dir", "uploads")
	v.SetDefault("backups_dir", "backups")
	v.SetDefault("log_file", "")
	v.SetDefault("admin_login", "admin")
	v.SetDefault("auth.hash_passwords", true)
	v.SetDefault("session.backend", "sqlite")
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("items.default_category", d.Category)
	v.SetDefault("items.default_warehouse", d.Warehouse)
	v.SetDefault("items.default_code", d.Code)
	v.SetDefault("items.default_min_quantity", d.MinQuantity)
	v.SetDefault("items.default_unit_price", d.UnitPrice)
}

// Load reads the configuration. path may be empty, in which case only
// defaults, .env and the environment are used.
func Load(path string) (Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.Session.Backend {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.DataDir == "" {
		return errors.New("data_dir must be set")
	}
	return nil
}

// SessionDBPath is the SQLite session database inside the data directory.
func (c Config) SessionDBPath() string {
	return filepath.Join(c.DataDir, db.FileName)
}
