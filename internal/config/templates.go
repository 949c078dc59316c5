package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var ErrUnknownKind = errors.New("config: unknown template kind")

const templateHeader = "# padctl client configuration\n\n"

// Template renders a starter config. "local" runs the admin tool on this
// host; "remote" runs it over SSH.
func Template(kind string) (string, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "local":
	case "remote":
		cfg.Remote.Enabled = true
		cfg.Remote.Host = "pad-host.local"
		cfg.Remote.User = "pad"
		cfg.Remote.KeyPath = "~/.ssh/id_ed25519"
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	data, err := toml.Marshal(toFile(cfg))
	if err != nil {
		return "", fmt.Errorf("render %s template: %w", kind, err)
	}
	return templateHeader + string(data), nil
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

func toFile(cfg Config) fileConfig {
	return fileConfig{
		Tool:    cfg.Tool,
		Timeout: cfg.Timeout.String(),
		Remote: fileRemote{
			Enabled:                     cfg.Remote.Enabled,
			Host:                        cfg.Remote.Host,
			Port:                        cfg.Remote.Port,
			User:                        cfg.Remote.User,
			KeyPath:                     cfg.Remote.KeyPath,
			KnownHostsPath:              cfg.Remote.KnownHostsPath,
			InsecureSkipHostKeyChecking: cfg.Remote.InsecureSkipHostKeyChecking,
			DialTimeout:                 cfg.Remote.DialTimeout.String(),
		},
		Bridge: fileBridge{
			Addr:        cfg.Bridge.Addr,
			CorsOrigins: cfg.Bridge.CorsOrigins,
			AuthToken:   cfg.Bridge.AuthToken,
			RateLimit:   cfg.Bridge.RateLimit,
			RateBurst:   cfg.Bridge.RateBurst,
		},
	}
}
