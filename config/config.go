// Package config holds the runtime configuration shared by the inspector
// endpoint's demo host and the controller bridge CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config is the top-level configuration structure.
type Config struct {
	Name        string      `json:"name"`
	Version     string      `json:"version"`
	Description string      `json:"description"`
	Endpoint    Endpoint    `json:"endpoint"`
	Bridge      Bridge      `json:"bridge"`
	Server      Server      `json:"server"`
	Logging     Logging     `json:"logging"`
}

// Endpoint configures the inspector endpoint side.
type Endpoint struct {
	RendezvousPrefix       string `json:"rendezvous_prefix"`
	MarshalerTimeoutMS     int    `json:"marshaler_timeout_ms"`
	BindingErrorBufferSize int    `json:"binding_error_buffer_size"`
	NotifyQueueCapacity    int    `json:"notify_queue_capacity"`
}

// Bridge configures the controller bridge side.
type Bridge struct {
	ConnectionTimeoutMS int `json:"connection_timeout_ms"`
	RequestTimeoutMS    int `json:"request_timeout_ms"`
}

// Server configures the bridge's optional read-only status HTTP surface.
type Server struct {
	Host  string `json:"host"`
	Port  int    `json:"port"`
	Debug bool   `json:"debug"`
}

// Logging represents logging configuration.
type Logging struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	Path   string `json:"path"`
}

func (e Endpoint) MarshalerTimeout() time.Duration {
	return time.Duration(e.MarshalerTimeoutMS) * time.Millisecond
}

func (b Bridge) ConnectionTimeout() time.Duration {
	return time.Duration(b.ConnectionTimeoutMS) * time.Millisecond
}

func (b Bridge) RequestTimeout() time.Duration {
	return time.Duration(b.RequestTimeoutMS) * time.Millisecond
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	return &Config{
		Name:        "uiinspect-go",
		Version:     "0.1.0",
		Description: "Cross-process UI inspection protocol for live graphical applications",
		Endpoint: Endpoint{
			RendezvousPrefix:       "wpf_inspector_",
			MarshalerTimeoutMS:     10000,
			BindingErrorBufferSize: 1000,
			NotifyQueueCapacity:    256,
		},
		Bridge: Bridge{
			ConnectionTimeoutMS: 5000,
			RequestTimeoutMS:    30000,
		},
		Server: Server{
			Host:  "localhost",
			Port:  9081,
			Debug: false,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
			Path:   filepath.Join(home, ".uiinspect", "logs", "uiinspect.log"),
		},
	}
}

// LoadConfig loads the configuration from a file, then applies
// environment overrides and normalization, in that order.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig writes cfg to path, normalizing and validating first.
func SaveConfig(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) {
	if prefix := os.Getenv("UIINSPECT_RENDEZVOUS_PREFIX"); prefix != "" {
		cfg.Endpoint.RendezvousPrefix = prefix
	}

	if v := os.Getenv("UIINSPECT_MARSHALER_TIMEOUT_MS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Endpoint.MarshalerTimeoutMS = parsed
		} else {
			log.Printf("warning: ignoring invalid UIINSPECT_MARSHALER_TIMEOUT_MS value %q: %v", v, err)
		}
	}

	if v := os.Getenv("UIINSPECT_BINDING_ERROR_BUFFER_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Endpoint.BindingErrorBufferSize = parsed
		} else {
			log.Printf("warning: ignoring invalid UIINSPECT_BINDING_ERROR_BUFFER_SIZE value %q: %v", v, err)
		}
	}

	if v := os.Getenv("UIINSPECT_CONNECTION_TIMEOUT_MS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Bridge.ConnectionTimeoutMS = parsed
		} else {
			log.Printf("warning: ignoring invalid UIINSPECT_CONNECTION_TIMEOUT_MS value %q: %v", v, err)
		}
	}

	if v := os.Getenv("UIINSPECT_REQUEST_TIMEOUT_MS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Bridge.RequestTimeoutMS = parsed
		} else {
			log.Printf("warning: ignoring invalid UIINSPECT_REQUEST_TIMEOUT_MS value %q: %v", v, err)
		}
	}

	if host := os.Getenv("UIINSPECT_HOST"); host != "" {
		cfg.Server.Host = host
	}

	if v := os.Getenv("UIINSPECT_PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = parsed
		} else {
			log.Printf("warning: ignoring invalid UIINSPECT_PORT value %q: %v", v, err)
		}
	}

	if v := os.Getenv("UIINSPECT_DEBUG"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.Server.Debug = parsed
		} else {
			log.Printf("warning: ignoring invalid UIINSPECT_DEBUG value %q: %v", v, err)
		}
	}

	if logLevel := os.Getenv("UIINSPECT_LOG_LEVEL"); logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if logPath := os.Getenv("UIINSPECT_LOG_PATH"); logPath != "" {
		cfg.Logging.Path = logPath
	}
}

// Normalize canonicalizes config values so downstream validation and
// runtime logic operate on stable representations.
func (c *Config) Normalize() {
	c.Endpoint.RendezvousPrefix = strings.TrimSpace(c.Endpoint.RendezvousPrefix)
	if c.Endpoint.MarshalerTimeoutMS == 0 {
		c.Endpoint.MarshalerTimeoutMS = 10000
	}
	if c.Endpoint.BindingErrorBufferSize == 0 {
		c.Endpoint.BindingErrorBufferSize = 1000
	}
	if c.Endpoint.NotifyQueueCapacity == 0 {
		c.Endpoint.NotifyQueueCapacity = 256
	}
	if c.Bridge.ConnectionTimeoutMS == 0 {
		c.Bridge.ConnectionTimeoutMS = 5000
	}
	if c.Bridge.RequestTimeoutMS == 0 {
		c.Bridge.RequestTimeoutMS = 30000
	}
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Path = strings.TrimSpace(c.Logging.Path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Endpoint.RendezvousPrefix == "" {
		return errors.New("endpoint rendezvous prefix cannot be empty")
	}
	if c.Endpoint.MarshalerTimeoutMS <= 0 {
		return errors.New("endpoint marshaler timeout must be positive")
	}
	if c.Endpoint.BindingErrorBufferSize <= 0 {
		return errors.New("endpoint binding error buffer size must be positive")
	}
	if c.Bridge.ConnectionTimeoutMS <= 0 {
		return errors.New("bridge connection timeout must be positive")
	}
	if c.Bridge.RequestTimeoutMS <= 0 {
		return errors.New("bridge request timeout must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid port number")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return errors.New("invalid log level")
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return errors.New("invalid log format")
	}

	return nil
}

// ResolveConfigPath returns the path that should be used for configuration.
func ResolveConfigPath() (string, error) {
	if path := strings.TrimSpace(os.Getenv("UIINSPECT_CONFIG_PATH")); path != "" {
		return path, nil
	}

	if _, err := os.Stat("config/uiinspect_config.json"); err == nil {
		return "config/uiinspect_config.json", nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".uiinspect", "config", "uiinspect_config.json"), nil
}

// EnsureDefaultConfig creates a default config file if one does not exist.
func EnsureDefaultConfig(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path cannot be empty")
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	defaultConfig := NewConfig()
	defaultConfig.Normalize()
	data, err := json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}
