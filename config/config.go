// Package config loads jobly's runtime settings: defaults, then an optional
// TOML file, then environment variables (a .env file is read first when
// present).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"

	// DevSecret signs tokens when SECRET_KEY is unset outside production.
	DevSecret = "secret-dev"
)

// Config is the complete runtime configuration.
type Config struct {
	Env       string        `toml:"env" mapstructure:"env"`
	Port      int           `toml:"port" mapstructure:"port"`
	SecretKey string        `toml:"secret_key" mapstructure:"secret_key"`
	TokenTTL  time.Duration `toml:"token_ttl" mapstructure:"token_ttl"`
	LogLevel  string        `toml:"log_level" mapstructure:"log_level"`

	Database DatabaseConfig `toml:"database" mapstructure:"database"`
}

// DatabaseConfig feeds db.Config.
type DatabaseConfig struct {
	Driver          string        `toml:"driver" mapstructure:"driver"`
	URL             string        `toml:"url" mapstructure:"url"`
	MaxOpenConns    int           `toml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	QueryTimeout    time.Duration `toml:"query_timeout" mapstructure:"query_timeout"`
	SlowQuery       time.Duration `toml:"slow_query" mapstructure:"slow_query"`
	LogArgs         bool          `toml:"log_args" mapstructure:"log_args"`
	AutoMigrate     bool          `toml:"auto_migrate" mapstructure:"auto_migrate"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Env:      EnvDevelopment,
		Port:     3001,
		LogLevel: "info",
		Database: DatabaseConfig{
			Driver:          "postgres",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: 5 * time.Minute,
			QueryTimeout:    10 * time.Second,
			SlowQuery:       200 * time.Millisecond,
		},
	}
}

// envKeys maps environment variables onto mapstructure paths.
var envKeys = map[string][]string{
	"GO_ENV":         {"env"},
	"PORT":           {"port"},
	"SECRET_KEY":     {"secret_key"},
	"TOKEN_TTL":      {"token_ttl"},
	"LOG_LEVEL":      {"log_level"},
	"DB_DRIVER":      {"database", "driver"},
	"DATABASE_URL":   {"database", "url"},
	"DB_MAX_CONNS":   {"database", "max_open_conns"},
	"DB_SLOW_QUERY":  {"database", "slow_query"},
	"DB_LOG_ARGS":    {"database", "log_args"},
	"DB_AUTOMIGRATE": {"database", "auto_migrate"},
}

// Load builds the configuration. dotenv lists the .env files to read; with
// none given ".env" is tried. Missing .env files are not an error. The TOML
// file named by JOBLY_CONFIG, if set, must exist.
func Load(dotenv ...string) (Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: %s: %w", f, err)
		}
	}

	cfg := Default()
	if path := os.Getenv("JOBLY_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.fillDerived()
	return cfg, cfg.Validate()
}

// applyEnv overlays the non-empty variables in envKeys. Values are
// strings, so the decoder runs weakly typed.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	raw := map[string]any{}
	for name, path := range envKeys {
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		m := raw
		for _, p := range path[:len(path)-1] {
			next, ok := m[p].(map[string]any)
			if !ok {
				next = map[string]any{}
				m[p] = next
			}
			m = next
		}
		m[path[len(path)-1]] = v
	}
	if len(raw) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

func (c *Config) fillDerived() {
	if c.Database.URL == "" {
		c.Database.URL = DefaultDatabaseURL(c.Env)
	}
	if c.SecretKey == "" && c.Env != EnvProduction {
		c.SecretKey = DevSecret
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
}

// DefaultDatabaseURL points at the local jobly database, or jobly_test in
// the test environment.
func DefaultDatabaseURL(env string) string {
	if env == EnvTest {
		return "postgres:///jobly_test?sslmode=disable"
	}
	return "postgres:///jobly?sslmode=disable"
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required in production"))
	}
	if c.TokenTTL < 0 {
		errs = append(errs, errors.New("token_ttl must not be negative"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func (c Config) IsProduction() bool { return c.Env == EnvProduction }
