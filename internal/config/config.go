package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath overrides the default config file location.
const EnvConfigPath = "PADCTL_CONFIG"

// DefaultPath is used when neither a flag nor EnvConfigPath names a file.
const DefaultPath = "padctl.toml"

var ErrInvalidConfig = errors.New("config: invalid")

// Config is the resolved client configuration.
type Config struct {
	Tool    string        `toml:"tool"`
	Timeout time.Duration `toml:"timeout"`
	Remote  RemoteConfig  `toml:"remote"`
	Bridge  BridgeConfig  `toml:"bridge"`
}

// RemoteConfig selects SSH execution of the admin tool.
type RemoteConfig struct {
	Enabled                     bool          `toml:"enabled"`
	Host                        string        `toml:"host"`
	Port                        string        `toml:"port"`
	User                        string        `toml:"user"`
	KeyPath                     string        `toml:"key_path"`
	KnownHostsPath              string        `toml:"known_hosts_path"`
	InsecureSkipHostKeyChecking bool          `toml:"insecure_skip_host_key_checking"`
	DialTimeout                 time.Duration `toml:"dial_timeout"`
}

// BridgeConfig configures the local HTTP surface used by the UI.
type BridgeConfig struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
	AuthToken   string   `toml:"auth_token"`
	// RateLimit is operation requests per second; zero disables limiting.
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`
}

func DefaultConfig() Config {
	return Config{
		Tool:    "vpad",
		Timeout: 10 * time.Second,
		Remote: RemoteConfig{
			Port:        "22",
			DialTimeout: 5 * time.Second,
		},
		Bridge: BridgeConfig{
			Addr:        "127.0.0.1:9410",
			CorsOrigins: []string{"http://localhost:3000"},
			RateLimit:   20,
			RateBurst:   40,
		},
	}
}

// fileConfig mirrors the TOML layout; durations are strings so that
// "10s" and "1500ms" both parse.
type fileConfig struct {
	Tool    string     `toml:"tool"`
	Timeout string     `toml:"timeout"`
	Remote  fileRemote `toml:"remote"`
	Bridge  fileBridge `toml:"bridge"`
}

type fileRemote struct {
	Enabled                     bool   `toml:"enabled"`
	Host                        string `toml:"host"`
	Port                        string `toml:"port"`
	User                        string `toml:"user"`
	KeyPath                     string `toml:"key_path"`
	KnownHostsPath              string `toml:"known_hosts_path"`
	InsecureSkipHostKeyChecking bool   `toml:"insecure_skip_host_key_checking"`
	DialTimeout                 string `toml:"dial_timeout"`
}

type fileBridge struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
	AuthToken   string   `toml:"auth_token"`
	RateLimit   float64  `toml:"rate_limit"`
	RateBurst   int      `toml:"rate_burst"`
}

// ResolvePath picks the explicit path, then EnvConfigPath, then DefaultPath.
func ResolvePath(explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads path over DefaultConfig. Keys absent from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("tool") {
		cfg.Tool = strings.TrimSpace(raw.Tool)
	}
	if meta.IsDefined("timeout") {
		d, err := parseDuration(raw.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}

	if meta.IsDefined("remote", "enabled") {
		cfg.Remote.Enabled = raw.Remote.Enabled
	}
	if meta.IsDefined("remote", "host") {
		cfg.Remote.Host = strings.TrimSpace(raw.Remote.Host)
	}
	if meta.IsDefined("remote", "port") {
		cfg.Remote.Port = strings.TrimSpace(raw.Remote.Port)
	}
	if meta.IsDefined("remote", "user") {
		cfg.Remote.User = strings.TrimSpace(raw.Remote.User)
	}
	if meta.IsDefined("remote", "key_path") {
		cfg.Remote.KeyPath = strings.TrimSpace(raw.Remote.KeyPath)
	}
	if meta.IsDefined("remote", "known_hosts_path") {
		cfg.Remote.KnownHostsPath = strings.TrimSpace(raw.Remote.KnownHostsPath)
	}
	if meta.IsDefined("remote", "insecure_skip_host_key_checking") {
		cfg.Remote.InsecureSkipHostKeyChecking = raw.Remote.InsecureSkipHostKeyChecking
	}
	if meta.IsDefined("remote", "dial_timeout") {
		d, err := parseDuration(raw.Remote.DialTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse remote.dial_timeout: %w", err)
		}
		cfg.Remote.DialTimeout = d
	}

	if meta.IsDefined("bridge", "addr") {
		cfg.Bridge.Addr = strings.TrimSpace(raw.Bridge.Addr)
	}
	if meta.IsDefined("bridge", "cors_origins") {
		cfg.Bridge.CorsOrigins = normalizeOrigins(raw.Bridge.CorsOrigins)
	}
	if meta.IsDefined("bridge", "auth_token") {
		cfg.Bridge.AuthToken = strings.TrimSpace(raw.Bridge.AuthToken)
	}
	if meta.IsDefined("bridge", "rate_limit") {
		cfg.Bridge.RateLimit = raw.Bridge.RateLimit
	}
	if meta.IsDefined("bridge", "rate_burst") {
		cfg.Bridge.RateBurst = raw.Bridge.RateBurst
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns DefaultConfig when path does not exist.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Tool) == "" {
		return invalid("tool is required")
	}
	if cfg.Timeout < 0 {
		return invalid("timeout must not be negative")
	}
	if cfg.Remote.Enabled {
		if strings.TrimSpace(cfg.Remote.Host) == "" {
			return invalid("remote.host required when remote is enabled")
		}
		if strings.TrimSpace(cfg.Remote.User) == "" {
			return invalid("remote.user required when remote is enabled")
		}
		if strings.TrimSpace(cfg.Remote.KeyPath) == "" {
			return invalid("remote.key_path required when remote is enabled")
		}
	}
	if cfg.Remote.DialTimeout < 0 {
		return invalid("remote.dial_timeout must not be negative")
	}
	if strings.TrimSpace(cfg.Bridge.Addr) == "" {
		return invalid("bridge.addr is required")
	}
	for _, origin := range cfg.Bridge.CorsOrigins {
		if !validOrigin(origin) {
			return invalid(fmt.Sprintf("bridge.cors_origins entry %q must be \"*\" or start with http:// or https://", origin))
		}
	}
	if cfg.Bridge.RateLimit < 0 {
		return invalid("bridge.rate_limit must not be negative")
	}
	if cfg.Bridge.RateLimit > 0 && cfg.Bridge.RateBurst < 1 {
		return invalid("bridge.rate_burst must be at least 1 when rate_limit is set")
	}
	return nil
}

func validOrigin(origin string) bool {
	origin = strings.TrimSpace(origin)
	return origin == "*" ||
		strings.HasPrefix(origin, "http://") ||
		strings.HasPrefix(origin, "https://")
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, reason)
}

func parseDuration(raw string) (time.Duration, error) {
	return time.ParseDuration(strings.TrimSpace(raw))
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
