// Package config loads service settings from defaults, an optional YAML
// file and BINRENT_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"binrent/internal/logging"
	"binrent/internal/opt"
	"binrent/internal/telemetry"
)

const envPrefix = "BINRENT"

type Config struct {
	Server    Server           `mapstructure:"server"`
	Log       logging.Config   `mapstructure:"log"`
	Solver    Solver           `mapstructure:"solver"`
	RateLimit RateLimit        `mapstructure:"ratelimit"`
	Redis     Redis            `mapstructure:"redis"`
	Auth      Auth             `mapstructure:"auth"`
	Callbacks Callbacks        `mapstructure:"callbacks"`
	Tracing   telemetry.Config `mapstructure:"tracing"`
	Exact     Exact            `mapstructure:"exact"`
}

type Server struct {
	Addr              string        `mapstructure:"addr" validate:"required"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
}

// Solver holds the defaults applied to solve requests that leave a field
// unset. Admins can overlay them at runtime.
type Solver struct {
	Algorithm string `mapstructure:"algorithm" json:"algorithm" validate:"required"`
	MaxIter   int    `mapstructure:"max_iter" json:"maxIter" validate:"min=1,max=1000000"`
	Workers   int    `mapstructure:"workers" json:"workers" validate:"min=1,max=64"`
	ItemOrder string `mapstructure:"item_order" json:"itemOrder" validate:"oneof=w p/w p"`
	BinOrder  string `mapstructure:"bin_order" json:"binOrder" validate:"oneof=W W/C C"`
}

type RateLimit struct {
	RPS   float64 `mapstructure:"rps" validate:"gte=0"` // 0 disables
	Burst int     `mapstructure:"burst" validate:"gte=0"`
}

type Redis struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

type Auth struct {
	Mode       string `mapstructure:"mode" validate:"oneof=dev hmac"`
	HMACSecret string `mapstructure:"hmac_secret" validate:"required_if=Mode hmac"`
}

type Callbacks struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"min=1"`
	Interval    time.Duration `mapstructure:"interval" validate:"gt=0"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type Exact struct {
	NodeLimit int           `mapstructure:"node_limit" validate:"min=1"`
	TimeLimit time.Duration `mapstructure:"time_limit" validate:"gt=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_header_timeout", 5*time.Second)
	v.SetDefault("server.max_body_bytes", 4<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("solver.algorithm", opt.AlgGRASP)
	v.SetDefault("solver.max_iter", opt.DefaultMaxIter)
	v.SetDefault("solver.workers", 1)
	v.SetDefault("solver.item_order", string(opt.ItemsByRatio))
	v.SetDefault("solver.bin_order", string(opt.BinsByCapacity))
	v.SetDefault("ratelimit.rps", 20)
	v.SetDefault("ratelimit.burst", 40)
	v.SetDefault("redis.url", "")
	v.SetDefault("auth.mode", "dev")
	v.SetDefault("auth.hmac_secret", "")
	v.SetDefault("callbacks.max_attempts", 5)
	v.SetDefault("callbacks.interval", 2*time.Second)
	v.SetDefault("callbacks.timeout", 5*time.Second)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("exact.node_limit", 5_000_000)
	v.SetDefault("exact.time_limit", 30*time.Second)
}

// Default returns the built-in settings.
func Default() *Config {
	cfg, err := load(viper.New(), "")
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads path (skipped when empty) and the environment over the
// defaults, then validates the result. PORT, when set, overrides the port of
// server.addr.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	cfg, err := load(v, path)
	if err != nil {
		return nil, err
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	return cfg, nil
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that the default algorithm exists.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return c.Solver.Validate()
}

// Validate checks a solver defaults overlay on its own.
func (s Solver) Validate() error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	if !opt.Known(s.Algorithm) {
		return errors.Join(opt.ErrUnknownAlgorithm, fmt.Errorf("solver.algorithm %q", s.Algorithm))
	}
	return nil
}

// Options converts the defaults into solver options.
func (s Solver) Options() (opt.Options, error) {
	items, err := opt.ParseItemOrder(s.ItemOrder)
	if err != nil {
		return opt.Options{}, err
	}
	bins, err := opt.ParseBinOrder(s.BinOrder)
	if err != nil {
		return opt.Options{}, err
	}
	return opt.Options{MaxIter: s.MaxIter, ItemOrder: items, BinOrder: bins, Workers: s.Workers}, nil
}
