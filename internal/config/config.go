// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/ragchat/internal/api"
	"github.com/jeranaias/ragchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ragchat configuration.
type Config struct {
	Backend BackendConfig `toml:"backend" json:"backend" yaml:"backend"`
	UI      UIConfig      `toml:"ui" json:"ui" yaml:"ui"`
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// BackendConfig describes how to reach the chat backend.
type BackendConfig struct {
	// URL is the backend base address.
	URL string `toml:"url" json:"url" yaml:"url"`

	// HealthIntervalSecs is the period of the liveness poll.
	HealthIntervalSecs int `toml:"health_interval_secs" json:"health_interval_secs" yaml:"health_interval_secs"`

	// HealthTimeoutSecs bounds a single liveness check.
	HealthTimeoutSecs int `toml:"health_timeout_secs" json:"health_timeout_secs" yaml:"health_timeout_secs"`

	// RequestTimeoutSecs bounds chat, upload, reset and stats calls.
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs" yaml:"request_timeout_secs"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	StartRoute     string `toml:"start_route" json:"start_route" yaml:"start_route"`
	Theme          string `toml:"theme" json:"theme" yaml:"theme"`
	ShowTimestamps bool   `toml:"show_timestamps" json:"show_timestamps" yaml:"show_timestamps"`
}

// LoggingConfig controls the zerolog output.
type LoggingConfig struct {
	Level string `toml:"level" json:"level" yaml:"level"`
	File  string `toml:"file" json:"file" yaml:"file"`
}

// Routes known to the UI. A launch target or start_route must be one of
// these.
var Routes = []string{"/", "/widget", "/admin", "/login"}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:                api.DefaultBaseURL,
			HealthIntervalSecs: 30,
			HealthTimeoutSecs:  2,
			RequestTimeoutSecs: 300,
		},
		UI: UIConfig{
			StartRoute:     "/",
			Theme:          "auto",
			ShowTimestamps: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// HealthInterval returns the poll period as a duration.
func (b BackendConfig) HealthInterval() time.Duration {
	return time.Duration(b.HealthIntervalSecs) * time.Second
}

// ClientConfig builds the API client configuration.
func (c *Config) ClientConfig() *api.ClientConfig {
	return &api.ClientConfig{
		BaseURL:        c.Backend.URL,
		HealthTimeout:  time.Duration(c.Backend.HealthTimeoutSecs) * time.Second,
		RequestTimeout: time.Duration(c.Backend.RequestTimeoutSecs) * time.Second,
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the ragchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ragchat"), nil
}

// ConfigPaths returns the candidate config files in precedence order.
func ConfigPaths() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return []string{
		filepath.Join(dir, "config.toml"),
		filepath.Join(dir, "config.json"),
		filepath.Join(dir, "config.yaml"),
	}, nil
}

// HistoryPath returns the REPL history file location.
func HistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load finds the first existing config file, applies .env and environment
// overrides and validates the result. With no config file the defaults are
// used.
func Load() (*Config, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}
	return finish(Default())
}

// LoadFromPath loads configuration from a specific file. The format is
// chosen by extension; anything other than .json, .yaml or .yml is read as
// TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		_, err = toml.Decode(string(data), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	LoadDotEnv(".env")
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from path into the environment without
// overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	return godotenv.Load(path) == nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes the configuration to path with owner-only permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# ragchat configuration file\n")
	buf.WriteString("# Generated by ragchat - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS AND OVERRIDES
// =============================================================================

// SetDefaults fills zero values with their defaults.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Backend.URL == "" {
		c.Backend.URL = d.Backend.URL
	}
	if c.Backend.HealthIntervalSecs == 0 {
		c.Backend.HealthIntervalSecs = d.Backend.HealthIntervalSecs
	}
	if c.Backend.HealthTimeoutSecs == 0 {
		c.Backend.HealthTimeoutSecs = d.Backend.HealthTimeoutSecs
	}
	if c.Backend.RequestTimeoutSecs == 0 {
		c.Backend.RequestTimeoutSecs = d.Backend.RequestTimeoutSecs
	}
	if c.UI.StartRoute == "" {
		c.UI.StartRoute = d.UI.StartRoute
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	c.Backend.URL = strings.TrimRight(c.Backend.URL, "/")
}

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - RAGCHAT_BACKEND_URL: overrides backend.url
//   - RAGCHAT_HEALTH_INTERVAL: overrides backend.health_interval_secs
//   - RAGCHAT_START_ROUTE: overrides ui.start_route
//   - RAGCHAT_LOG_LEVEL: overrides logging.level
//   - RAGCHAT_LOG_FILE: overrides logging.file
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RAGCHAT_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("RAGCHAT_HEALTH_INTERVAL"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Backend.HealthIntervalSecs = secs
		}
	}
	if v := os.Getenv("RAGCHAT_START_ROUTE"); v != "" {
		c.UI.StartRoute = v
	}
	if v := os.Getenv("RAGCHAT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("RAGCHAT_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if err := ValidateBackendURL(c.Backend.URL); err != nil {
		errs = append(errs, ValidationError{Field: "backend.url", Message: err.Error()})
	}
	if c.Backend.HealthIntervalSecs < 0 {
		errs = append(errs, ValidationError{Field: "backend.health_interval_secs", Message: "must be positive"})
	}
	if c.Backend.HealthTimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "backend.health_timeout_secs", Message: "must be positive"})
	}
	if c.Backend.RequestTimeoutSecs < 0 {
		errs = append(errs, ValidationError{Field: "backend.request_timeout_secs", Message: "must be positive"})
	}
	if !IsRoute(c.UI.StartRoute) {
		errs = append(errs, ValidationError{
			Field:   "ui.start_route",
			Message: fmt.Sprintf("unknown route %q (valid: %s)", c.UI.StartRoute, strings.Join(Routes, ", ")),
		})
	}
	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{Field: "ui.theme", Message: "must be auto, dark or light"})
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		errs = append(errs, ValidationError{Field: "logging.level", Message: err.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateBackendURL checks that raw is an absolute http or https URL.
func ValidateBackendURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("scheme must be http or https")
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// IsRoute reports whether route is a known UI route.
func IsRoute(route string) bool {
	for _, r := range Routes {
		if r == route {
			return true
		}
	}
	return false
}
