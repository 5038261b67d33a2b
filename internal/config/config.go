// Package config loads the server configuration from a YAML file, .env files
// and the environment, in that order of precedence (last wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load
const (
	EnvPort            = "RAILMAP_PORT"
	EnvRouteServiceURL = "RAILMAP_ROUTE_SERVICE_URL"
	EnvNetworkFile     = "RAILMAP_NETWORK_FILE"
	EnvLogLevel        = "RAILMAP_LOG_LEVEL"
)

// DefaultRouteServiceURL is where the route service listens by default
const DefaultRouteServiceURL = "http://127.0.0.1:5000"

// AppConfig is the application configuration
type AppConfig struct {
	Server       ServerConfig       `yaml:"server"`
	RouteService RouteServiceConfig `yaml:"route_service"`
	Network      NetworkConfig      `yaml:"network"`
	Sessions     SessionConfig      `yaml:"sessions"`
	Log          LogConfig          `yaml:"log"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port           int      `yaml:"port" validate:"gt=0,lte=65535"`
	AllowedOrigins []string `yaml:"allowed_origins" validate:"dive,required"`
}

// RouteServiceConfig configures the journey planner client
type RouteServiceConfig struct {
	URL       string `yaml:"url" validate:"required,url"`
	TimeoutMS int    `yaml:"timeout_ms" validate:"gte=0"`
	CacheSize int    `yaml:"cache_size" validate:"gte=0"`
	CacheTTL  string `yaml:"cache_ttl"`
}

// NetworkConfig selects the map to serve. An empty file means the built-in map.
type NetworkConfig struct {
	File string `yaml:"file"`
}

// SessionConfig controls idle session expiry
type SessionConfig struct {
	TTL           string `yaml:"ttl"`
	SweepInterval string `yaml:"sweep_interval"`
}

// LogConfig controls the log level
type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns the configuration used when no file is given
func Default() AppConfig {
	return AppConfig{
		Server:       ServerConfig{Port: 8080, AllowedOrigins: []string{"*"}},
		RouteService: RouteServiceConfig{URL: DefaultRouteServiceURL, TimeoutMS: 30000, CacheSize: 256, CacheTTL: "5m"},
		Sessions:     SessionConfig{TTL: "30m", SweepInterval: "1m"},
		Log:          LogConfig{Level: "info"},
	}
}

// Load builds the configuration. path may be empty; a missing file at a
// non-empty path is an error. envFiles are loaded with godotenv, later files
// overriding earlier ones; missing env files are skipped.
func Load(path string, envFiles ...string) (AppConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return AppConfig{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	for i, f := range envFiles {
		load := godotenv.Load
		if i > 0 {
			load = godotenv.Overload
		}
		if err := load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return AppConfig{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return AppConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and duration syntax
func (c AppConfig) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	durations := map[string]string{
		"route_service.cache_ttl": c.RouteService.CacheTTL,
		"sessions.ttl":            c.Sessions.TTL,
		"sessions.sweep_interval": c.Sessions.SweepInterval,
	}
	for field, value := range durations {
		if _, err := parseDuration(value); err != nil {
			return fmt.Errorf("invalid config: %s: %w", field, err)
		}
	}
	return nil
}

// RouteServiceTimeout returns the request timeout
func (c AppConfig) RouteServiceTimeout() time.Duration {
	return time.Duration(c.RouteService.TimeoutMS) * time.Millisecond
}

// CacheTTL returns how long journeys stay cached; zero disables expiry
func (c AppConfig) CacheTTL() time.Duration {
	d, _ := parseDuration(c.RouteService.CacheTTL)
	return d
}

// SessionTTL returns how long an idle session lives; zero disables expiry
func (c AppConfig) SessionTTL() time.Duration {
	d, _ := parseDuration(c.Sessions.TTL)
	return d
}

// SweepInterval returns how often idle sessions are collected
func (c AppConfig) SweepInterval() time.Duration {
	d, _ := parseDuration(c.Sessions.SweepInterval)
	if d <= 0 {
		return time.Minute
	}
	return d
}

// LogLevel maps the configured level to a slog level
func (c AppConfig) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func applyEnv(cfg *AppConfig) error {
	if value := os.Getenv(EnvPort); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Server.Port = port
	}
	if value := os.Getenv(EnvRouteServiceURL); value != "" {
		cfg.RouteService.URL = value
	}
	if value := os.Getenv(EnvNetworkFile); value != "" {
		cfg.Network.File = value
	}
	if value := os.Getenv(EnvLogLevel); value != "" {
		cfg.Log.Level = value
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
