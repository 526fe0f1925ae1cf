package server

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/thinui/internal/core/application"
	"github.com/zeusync/thinui/internal/core/observability/log"
	"github.com/zeusync/thinui/internal/core/session"
)

// Config holds server configuration
type Config struct {
	Server   ListenConfig   `yaml:"server"`
	Session  SessionConfig  `yaml:"session"`
	Watchdog WatchdogConfig `yaml:"watchdog"`
	Log      LogConfig      `yaml:"log"`
}

type ListenConfig struct {
	Listen        string      `yaml:"listen"`
	Path          string      `yaml:"path"`
	WebSocketPath string      `yaml:"websocket_path"`
	HTTP3         HTTP3Config `yaml:"http3"`
}

// HTTP3Config enables the QUIC listener when Listen is set. Without a
// certificate pair a self-signed development certificate is used.
type HTTP3Config struct {
	Listen   string `yaml:"listen"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type SessionConfig struct {
	Lifetime        time.Duration `yaml:"lifetime"`
	CoalesceUpdates bool          `yaml:"coalesce_updates"`
}

type WatchdogConfig struct {
	Period         time.Duration `yaml:"period"`
	ReportInterval time.Duration `yaml:"report_interval"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Server: ListenConfig{
			Listen:        "127.0.0.1:8080",
			Path:          "/api",
			WebSocketPath: "/ws",
		},
		Session: SessionConfig{
			Lifetime: session.DefaultLifetime,
		},
		Watchdog: WatchdogConfig{
			Period:         application.DefaultWatchdogPeriod,
			ReportInterval: application.DefaultReportInterval,
		},
		Log: LogConfig{
			Level: log.LevelInfo.String(),
		},
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseConfig(f)
}

// ParseConfig decodes YAML over the defaults and validates the result.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Server.Listen == "":
		return fmt.Errorf("%w: server.listen is empty", ErrInvalidConfig)
	case !strings.HasPrefix(c.Server.Path, "/"):
		return fmt.Errorf("%w: server.path must start with /", ErrInvalidConfig)
	case c.Server.WebSocketPath != "" && !strings.HasPrefix(c.Server.WebSocketPath, "/"):
		return fmt.Errorf("%w: server.websocket_path must start with /", ErrInvalidConfig)
	case c.Server.WebSocketPath == c.Server.Path:
		return fmt.Errorf("%w: server.path and server.websocket_path collide", ErrInvalidConfig)
	case (c.Server.HTTP3.CertFile == "") != (c.Server.HTTP3.KeyFile == ""):
		return fmt.Errorf("%w: http3 needs both cert_file and key_file", ErrInvalidConfig)
	case c.Session.Lifetime <= 0:
		return fmt.Errorf("%w: session.lifetime must be positive", ErrInvalidConfig)
	case c.Watchdog.Period <= 0:
		return fmt.Errorf("%w: watchdog.period must be positive", ErrInvalidConfig)
	case c.Watchdog.ReportInterval < 0:
		return fmt.Errorf("%w: watchdog.report_interval is negative", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// LogLevel returns the parsed log level. Validate guarantees it parses.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.LevelInfo
	}
	return lvl
}
