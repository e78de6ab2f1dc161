package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/framelink/internal/logging"
)

// Config is the framelinkd daemon configuration.
type Config struct {
	Name string `toml:"name"`
	// LogLevel seeds the process log level; empty keeps the profile
	// default, and the environment override still wins.
	LogLevel  string          `toml:"log_level"`
	Transport TransportConfig `toml:"transport"`
	Admin     AdminConfig     `toml:"admin"`
}

// TransportConfig selects and addresses the byte transport.
type TransportConfig struct {
	// Kind is "socket" (net.Conn) or "netpoll" (event-loop engine).
	Kind    string `toml:"kind"`
	Network string `toml:"network"`
	Addr    string `toml:"addr"`
	// ChunkSize bounds one transport read in the drain cycle.
	ChunkSize int `toml:"chunk_size"`
}

// AdminConfig addresses the optional health/metrics server. Empty Addr
// disables it.
type AdminConfig struct {
	Addr string `toml:"addr"`
}

func Default() Config {
	return Config{
		Name: "framelink",
		Transport: TransportConfig{
			Kind:      "socket",
			Network:   "tcp",
			Addr:      "127.0.0.1:12344",
			ChunkSize: 64,
		},
	}
}

// Load reads a TOML config file, applying defaults for unset fields.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("config missing name")
	}
	if cfg.LogLevel != "" && !logging.ValidLevel(cfg.LogLevel) {
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}
	switch cfg.Transport.Kind {
	case "socket", "netpoll":
	default:
		return fmt.Errorf("unknown transport kind %q", cfg.Transport.Kind)
	}
	switch cfg.Transport.Network {
	case "tcp", "unix":
	default:
		return fmt.Errorf("unknown transport network %q", cfg.Transport.Network)
	}
	if strings.TrimSpace(cfg.Transport.Addr) == "" {
		return fmt.Errorf("config missing transport addr")
	}
	if cfg.Transport.ChunkSize <= 0 {
		return fmt.Errorf("transport chunk_size must be positive, got %d", cfg.Transport.ChunkSize)
	}
	return nil
}
