// Package config loads server settings from magma.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the loaded, validated configuration. It is never mutated after
// Load returns, so it may be shared by every connection.
type Config struct {
	Port    int
	Bind    string
	Players int
	Motd    string

	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	HealthEnabled bool
	HealthPort    int

	LogLevel string

	// File is the config file that was read or written, if any.
	File string
}

// MaxPlayers is the advertised player cap.
func (c *Config) MaxPlayers() int { return c.Players }

// MOTD is the status description text.
func (c *Config) MOTD() string { return c.Motd }

// ServerPort is the game listener port.
func (c *Config) ServerPort() int { return c.Port }

// BindAddress is the game listener host; empty binds every interface.
func (c *Config) BindAddress() string { return c.Bind }

// HealthAddr is the listen address of the HTTP health endpoint. It shares
// the game listener's bind address.
func (c *Config) HealthAddr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.HealthPort))
}

// Error describes an invalid configuration value.
type Error struct {
	Key     string
	Value   interface{}
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s=%v: %s", e.Key, e.Value, e.Message)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return &Error{Key: "server.port", Value: c.Port, Message: "must be between 1 and 65535"}
	}
	if c.Players < 0 {
		return &Error{Key: "server.max_players", Value: c.Players, Message: "must not be negative"}
	}
	if c.IdleTimeout <= 0 {
		return &Error{Key: "connection.idle_timeout", Value: c.IdleTimeout, Message: "must be positive"}
	}
	if c.ShutdownTimeout <= 0 {
		return &Error{Key: "connection.shutdown_timeout", Value: c.ShutdownTimeout, Message: "must be positive"}
	}
	if c.HealthEnabled && (c.HealthPort < 1 || c.HealthPort > 65535) {
		return &Error{Key: "health.port", Value: c.HealthPort, Message: "must be between 1 and 65535"}
	}
	if c.HealthEnabled && c.HealthPort == c.Port {
		return &Error{Key: "health.port", Value: c.HealthPort, Message: "must differ from server.port"}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 25565)
	v.SetDefault("server.bind_address", "")
	v.SetDefault("server.max_players", 20)
	v.SetDefault("server.motd", "A Minecraft Server")

	v.SetDefault("connection.idle_timeout", "30s")
	v.SetDefault("connection.shutdown_timeout", "10s")

	v.SetDefault("health.enabled", true)
	v.SetDefault("health.port", 8080)

	v.SetDefault("log.level", "info")
}

var envBindings = map[string]string{
	"server.port":         "SERVER_PORT",
	"server.bind_address": "SERVER_IP",
	"server.max_players":  "MAX_PLAYERS",
	"server.motd":         "MOTD",
	"health.port":         "HEALTH_PORT",
}

// Load reads configuration. With an empty path magma.yaml is searched for in
// the working directory and written with defaults when missing; with an
// explicit path the file must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("magma")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
			if err := v.SafeWriteConfig(); err != nil {
				return nil, fmt.Errorf("write sample config: %w", err)
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	c := &Config{
		Port:            v.GetInt("server.port"),
		Bind:            strings.TrimSpace(v.GetString("server.bind_address")),
		Players:         v.GetInt("server.max_players"),
		Motd:            v.GetString("server.motd"),
		IdleTimeout:     v.GetDuration("connection.idle_timeout"),
		ShutdownTimeout: v.GetDuration("connection.shutdown_timeout"),
		HealthEnabled:   v.GetBool("health.enabled"),
		HealthPort:      v.GetInt("health.port"),
		LogLevel:        v.GetString("log.level"),
		File:            v.ConfigFileUsed(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Default returns the built-in configuration without touching the
// filesystem or environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	c, _ := fromViper(v)
	return c
}
