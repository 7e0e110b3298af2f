// Package config loads server and CLI settings from file, environment and defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. REFLECT_DATABASE_DSN.
const EnvPrefix = "REFLECT"

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type AuthConfig struct {
	HS256Secret        string        `mapstructure:"hs256_secret"`
	RS256PublicKeyFile string        `mapstructure:"rs256_public_key_file"`
	Issuer             string        `mapstructure:"issuer"`
	DevTokenTTL        time.Duration `mapstructure:"dev_token_ttl"`
}

type LimiterConfig struct {
	Backend    string        `mapstructure:"backend"` // redis | postgres
	Window     time.Duration `mapstructure:"window"`
	Max        int64         `mapstructure:"max"`
	BlockAfter int64         `mapstructure:"block_after"`
	BlockFor   time.Duration `mapstructure:"block_for"`
}

type PixabayConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type QuoteConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
	URL string        `mapstructure:"url"`
}

type InvalidateConfig struct {
	Channel string `mapstructure:"channel"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ClientConfig struct {
	ServerURL string `mapstructure:"server_url"`
	DataDir   string `mapstructure:"data_dir"`
}

// Config holds the application configuration.
type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Limiter    LimiterConfig    `mapstructure:"limiter"`
	Pixabay    PixabayConfig    `mapstructure:"pixabay"`
	Quote      QuoteConfig      `mapstructure:"quote"`
	Invalidate InvalidateConfig `mapstructure:"invalidate"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Client     ClientConfig     `mapstructure:"client"`
}

// DefaultDataDir returns ~/.reflect.
func DefaultDataDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".reflect"
	}
	return filepath.Join(home, ".reflect")
}

// Load reads configuration from .env, an optional file, REFLECT_* variables and defaults.
func Load(configPath string) (*Config, error) {
	// a missing .env is the normal case outside development
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("database.dsn", "")
	v.SetDefault("redis.url", "")
	v.SetDefault("auth.hs256_secret", "")
	v.SetDefault("auth.rs256_public_key_file", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.dev_token_ttl", "24h")
	v.SetDefault("limiter.backend", "postgres")
	v.SetDefault("limiter.window", "1m")
	v.SetDefault("limiter.max", 30)
	v.SetDefault("limiter.block_after", 120)
	v.SetDefault("limiter.block_for", "15m")
	v.SetDefault("pixabay.api_key", "")
	v.SetDefault("pixabay.base_url", "")
	v.SetDefault("quote.ttl", "24h")
	v.SetDefault("quote.url", "")
	v.SetDefault("invalidate.channel", "reflect:invalidate")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("client.server_url", "http://localhost:8080")
	v.SetDefault("client.data_dir", DefaultDataDir())

	if configPath != "" {
		expanded, err := homedir.Expand(configPath)
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(expanded)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultDataDir())
		v.SetConfigName("reflect")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) || configPath != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if dir, err := homedir.Expand(cfg.Client.DataDir); err == nil {
		cfg.Client.DataDir = dir
	}
	return cfg, nil
}

// ValidateServer checks the keys the server cannot start without.
func (c *Config) ValidateServer() error {
	var problems []error
	if c.Database.DSN == "" {
		problems = append(problems, errors.New("database.dsn is required"))
	}
	if c.Auth.HS256Secret == "" && c.Auth.RS256PublicKeyFile == "" {
		problems = append(problems, errors.New("auth.hs256_secret or auth.rs256_public_key_file is required"))
	}
	switch c.Limiter.Backend {
	case "postgres":
	case "redis":
		if c.Redis.URL == "" {
			problems = append(problems, errors.New("redis.url is required for the redis limiter"))
		}
	default:
		problems = append(problems, fmt.Errorf("limiter.backend %q is not one of redis, postgres", c.Limiter.Backend))
	}
	if c.Limiter.Window <= 0 || c.Limiter.Max <= 0 {
		problems = append(problems, errors.New("limiter.window and limiter.max must be positive"))
	}
	return errors.Join(problems...)
}

// ValidateClient checks the CLI settings.
func (c *Config) ValidateClient() error {
	if c.Client.ServerURL == "" {
		return errors.New("client.server_url is required")
	}
	if c.Client.DataDir == "" {
		return errors.New("client.data_dir is required")
	}
	return nil
}
