// Package config assembles the client configuration from an optional TOML
// file and the TFTP_* environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Wa4h1h/tftpc/pkg/client"
	"github.com/Wa4h1h/tftpc/pkg/utils"
)

const (
	EnvConfig       = "TFTP_CONFIG"
	EnvServer       = "TFTP_SERVER"
	EnvPort         = "TFTP_PORT"
	EnvTimeout      = "TFTP_TIMEOUT"
	EnvNumTries     = "TFTP_NUM_TRIES"
	EnvMode         = "TFTP_MODE"
	EnvTrace        = "TFTP_TRACE"
	EnvLogLevel     = "TFTP_LOG_LEVEL"
	DefaultLogLevel = "info"
)

type Config struct {
	Server   string
	LogLevel string
	Client   client.Config
}

type fileConfig struct {
	Server      string `toml:"server"`
	Timeout     string `toml:"timeout"`
	Mode        string `toml:"mode"`
	LogLevel    string `toml:"log_level"`
	Port        int    `toml:"port"`
	MaxAttempts int    `toml:"max_attempts"`
	Trace       bool   `toml:"trace"`
}

func Default() Config {
	return Config{LogLevel: DefaultLogLevel, Client: client.DefaultConfig()}
}

// Load reads path when it is not empty, then applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Client.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads the file named by TFTP_CONFIG. A missing default file
// is not an error.
func LoadFromEnv() (Config, error) {
	path := os.Getenv(EnvConfig)
	if path == "" {
		return Load("")
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config file %s not found", path)
	}

	return Load(path)
}

func applyFile(cfg *Config, path string) error {
	var raw fileConfig

	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("server") {
		cfg.Server = strings.TrimSpace(raw.Server)
	}

	if meta.IsDefined("port") {
		cfg.Client.Port = raw.Port
	}

	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return fmt.Errorf("parse timeout: %w", err)
		}

		cfg.Client.Timeout = d
	}

	if meta.IsDefined("max_attempts") {
		cfg.Client.MaxAttempts = raw.MaxAttempts
	}

	if meta.IsDefined("mode") {
		cfg.Client.Mode = strings.ToLower(strings.TrimSpace(raw.Mode))
	}

	if meta.IsDefined("trace") {
		cfg.Client.Trace = raw.Trace
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	return nil
}

func applyEnv(cfg *Config) error {
	if v, ok, err := utils.LookupEnv[string](EnvServer); err != nil {
		return err
	} else if ok {
		cfg.Server = v
	}

	if v, ok, err := utils.LookupEnv[uint](EnvPort); err != nil {
		return err
	} else if ok {
		cfg.Client.Port = int(v)
	}

	if v, ok, err := utils.LookupEnv[uint](EnvTimeout); err != nil {
		return err
	} else if ok {
		cfg.Client.Timeout = time.Duration(v) * time.Second
	}

	if v, ok, err := utils.LookupEnv[uint](EnvNumTries); err != nil {
		return err
	} else if ok {
		cfg.Client.MaxAttempts = int(v)
	}

	if v, ok, err := utils.LookupEnv[string](EnvMode); err != nil {
		return err
	} else if ok {
		cfg.Client.Mode = strings.ToLower(v)
	}

	if v, ok, err := utils.LookupEnv[bool](EnvTrace); err != nil {
		return err
	} else if ok {
		cfg.Client.Trace = v
	}

	if v, ok, err := utils.LookupEnv[string](EnvLogLevel); err != nil {
		return err
	} else if ok {
		cfg.LogLevel = v
	}

	return nil
}
