// Package config reads the process configuration from the environment, optionally seeded from
// a dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvHost    = "HOST"
	EnvPort    = "PORT"
	EnvFactory = "APP_FACTORY"
	EnvDebug   = "APP_DEBUG"
)

// Defaults match the local development server: loopback only, port 5000.
const (
	DefaultHost    = "127.0.0.1"
	DefaultPort    = 5000
	DefaultFactory = "default"
)

// Config is the resolved process configuration.
type Config struct {
	Host    string
	Port    int
	Factory string
	Debug   bool
	// Version is the build version reported by the API. It is set by the binary, not the environment.
	Version string
}

// Addr returns the host:port the server binds to.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Load reads the given dotenv files (missing files are skipped, variables already set in the
// process win) and then resolves Config from the environment.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup resolves Config using lookup, which has the signature of os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Config{
		Host:    DefaultHost,
		Port:    DefaultPort,
		Factory: DefaultFactory,
	}

	if v, ok := nonEmpty(lookup, EnvHost); ok {
		cfg.Host = v
	}
	if v, ok := nonEmpty(lookup, EnvPort); ok {
		port, err := parsePort(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Port = port
	}
	if v, ok := nonEmpty(lookup, EnvFactory); ok {
		cfg.Factory = v
	}
	if v, ok := nonEmpty(lookup, EnvDebug); ok {
		debug, err := parseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvDebug, err)
		}
		cfg.Debug = debug
	}
	return cfg, nil
}

func nonEmpty(lookup func(string) (string, bool), key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// parsePort accepts 0 (ephemeral) through 65535.
func parsePort(v string) (int, error) {
	port, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", v)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 0-65535", port)
	}
	return port, nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", v)
	}
}
