package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server      ServerConfig   `koanf:"server"`
	Database    DatabaseConfig `koanf:"database"`
	Log         LogConfig      `koanf:"log"`
	AutoMigrate bool           `koanf:"auto_migrate"`
}

type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Driver   string `koanf:"driver" validate:"required,oneof=pgx sqlite"`
	URL      string `koanf:"url"`
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`

	MaxOpen     int           `koanf:"max_open" validate:"gte=0"`
	MaxIdle     int           `koanf:"max_idle" validate:"gte=0"`
	MaxLifetime time.Duration `koanf:"max_lifetime" validate:"gte=0"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
}

// envKeys maps the recognised environment variables to config paths.
// Anything else in the environment is ignored.
var envKeys = map[string]string{
	"PORT":                    "server.port",
	"SERVER_SHUTDOWN_TIMEOUT": "server.shutdown_timeout",
	"DATABASE_DRIVER":         "database.driver",
	"DATABASE_URL":            "database.url",
	"DATABASE_HOST":           "database.host",
	"DATABASE_PORT":           "database.port",
	"DATABASE_USER":           "database.user",
	"DATABASE_PASSWORD":       "database.password",
	"DATABASE_NAME":           "database.name",
	"DATABASE_SSLMODE":        "database.sslmode",
	"DATABASE_MAX_OPEN":       "database.max_open",
	"DATABASE_MAX_IDLE":       "database.max_idle",
	"DATABASE_MAX_LIFETIME":   "database.max_lifetime",
	"LOG_LEVEL":               "log.level",
	"LOG_JSON":                "log.json",
	"AUTO_MIGRATE":            "auto_migrate",
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:      DriverPostgres,
			Host:        "localhost",
			Port:        "5432",
			User:        "postgres",
			Name:        "posts",
			SSLMode:     "disable",
			MaxOpen:     25,
			MaxIdle:     25,
			MaxLifetime: 5 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
		AutoMigrate: true,
	}
}

// Load reads the optional .env files (default ".env"), then layers the
// environment over Default and validates the result.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load env file: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}
	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			path, ok := envKeys[key]
			if !ok {
				return "", nil
			}
			return path, value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	if c.Database.Driver == DriverSQLite && c.Database.URL == "" {
		return errors.New("config: invalid: DATABASE_URL is required for the sqlite driver")
	}
	return nil
}

// DSN returns the configured URL, or builds a postgres URL from the
// individual connection fields when none is set.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + d.Port,
		Path:   "/" + d.Name,
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}
