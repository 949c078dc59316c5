package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danmuck/padctl/internal/config"
	"github.com/danmuck/padctl/internal/padctl"
	"github.com/danmuck/padctl/internal/tools"
	"github.com/rs/zerolog/log"
)

// app carries flag state shared by every subcommand.
type app struct {
	configPath string
	tool       string
	timeout    time.Duration

	out       io.Writer
	newRunner func(config.Config) tools.CommandRunner
	exitCode  int
}

func newApp(out io.Writer) *app {
	return &app{
		out:       out,
		newRunner: runnerFor,
	}
}

// loadConfig reads the config file and applies flag overrides. An explicit
// --config must exist; the implicit default path may be absent.
func (a *app) loadConfig(toolSet, timeoutSet bool) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if strings.TrimSpace(a.configPath) != "" {
		cfg, err = config.Load(a.configPath)
	} else {
		cfg, err = config.LoadOrDefault(config.ResolvePath(""))
	}
	if err != nil {
		return config.Config{}, err
	}
	if toolSet {
		cfg.Tool = strings.TrimSpace(a.tool)
	}
	if timeoutSet {
		cfg.Timeout = a.timeout
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (a *app) client(cfg config.Config) *padctl.Client {
	return padctl.NewClient(a.newRunner(cfg), cfg.Tool, padctl.WithLogger(log.Logger))
}

// emit prints res as one JSON line and records its code as the exit status.
func (a *app) emit(res padctl.Result) error {
	line, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if _, err := fmt.Fprintln(a.out, string(line)); err != nil {
		return err
	}
	a.exitCode = res.Code
	return nil
}

func runnerFor(cfg config.Config) tools.CommandRunner {
	if cfg.Remote.Enabled {
		return tools.SSHRunner{
			Host:                        cfg.Remote.Host,
			Port:                        cfg.Remote.Port,
			User:                        cfg.Remote.User,
			KeyPath:                     expandHome(cfg.Remote.KeyPath),
			KnownHostsPath:              expandHome(cfg.Remote.KnownHostsPath),
			InsecureSkipHostKeyChecking: cfg.Remote.InsecureSkipHostKeyChecking,
			DialTimeout:                 cfg.Remote.DialTimeout,
			Timeout:                     cfg.Timeout,
		}
	}
	return tools.ExecRunner{Timeout: cfg.Timeout}
}
