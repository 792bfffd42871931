// Package config loads process settings with viper and validates them.
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	_ "github.com/spf13/viper/remote"
)

type Config struct {
	Server  Server  `mapstructure:"server"`
	Routes  Routes  `mapstructure:"routes"`
	Log     Log     `mapstructure:"log"`
	Metrics Metrics `mapstructure:"metrics"`
	Remote  Remote  `mapstructure:"remote"`
}

type Server struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type Routes struct {
	Prefix             string `mapstructure:"prefix" validate:"required,startswith=/"`
	Namespace          string `mapstructure:"namespace" validate:"omitempty,ident"`
	InvalidParamStatus int    `mapstructure:"invalid_param_status" validate:"oneof=400 404"`
}

type Log struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type Metrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"startswith=/"`
}

// Remote names an etcd, consul or firestore key holding YAML config. An empty
// Provider disables it.
type Remote struct {
	Provider string `mapstructure:"provider" validate:"omitempty,oneof=etcd consul firestore"`
	Endpoint string `mapstructure:"endpoint" validate:"required_with=Provider"`
	Path     string `mapstructure:"path" validate:"required_with=Provider"`
}

var validate = newValidator()

// newValidator adds "ident": ASCII letters, digits and underscores.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for i := 0; i < len(s); i++ {
			c := s[i]
			if c != '_' && (c < '0' || c > '9') && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
				return false
			}
		}
		return true
	})
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("routes.prefix", "/api/analytics/")
	v.SetDefault("routes.namespace", "analytics")
	v.SetDefault("routes.invalid_param_status", 404)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("remote.provider", "")
	v.SetDefault("remote.endpoint", "")
	v.SetDefault("remote.path", "")
}

// Loader owns a viper instance. A missing config file is not an error:
// defaults and environment still apply.
type Loader struct {
	v *viper.Viper

	mu      sync.RWMutex
	current *Config
}

// NewLoader reads "config.yaml" from dir, or the file itself when path
// names one, and overlays SERVER_ADDR style environment variables.
func NewLoader(path string) (*Loader, error) {
	v := viper.New()
	setDefaults(v)

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		v.SetConfigFile(path)
	} else {
		if path == "" {
			path = "."
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(path)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// An incomplete remote section is left for Config to reject.
	p, ep, kp := v.GetString("remote.provider"), v.GetString("remote.endpoint"), v.GetString("remote.path")
	if p != "" && ep != "" && kp != "" {
		if err := v.AddRemoteProvider(p, ep, kp); err != nil {
			return nil, fmt.Errorf("adding remote provider: %w", err)
		}
		v.SetConfigType("yaml")
		if err := v.ReadRemoteConfig(); err != nil {
			return nil, fmt.Errorf("reading remote config: %w", err)
		}
	}

	return &Loader{v: v}, nil
}

// Config decodes and validates the current settings.
func (l *Loader) Config() (*Config, error) {
	var c Config
	if err := l.v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	l.mu.Lock()
	l.current = &c
	l.mu.Unlock()
	return &c, nil
}

// Current is the last settings that passed validation, or nil before the
// first successful Config.
func (l *Loader) Current() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// File is the config file in use, or "" when running on defaults.
func (l *Loader) File() string { return l.v.ConfigFileUsed() }

// Watch calls fn with the new settings each time the config file changes
// and validates. Invalid edits are reported to onErr and leave Current
// unchanged. Watch reports false and does nothing when no file is in use.
func (l *Loader) Watch(fn func(*Config), onErr func(error)) bool {
	if l.File() == "" {
		return false
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		c, err := l.Config()
		if err != nil {
			if onErr != nil {
				onErr(fmt.Errorf("%s: %w", e.Name, err))
			}
			return
		}
		fn(c)
	})
	l.v.WatchConfig()
	return true
}

// Load is NewLoader followed by Config.
func Load(path string) (*Config, error) {
	l, err := NewLoader(path)
	if err != nil {
		return nil, err
	}
	return l.Config()
}
