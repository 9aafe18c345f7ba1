package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = ".podboard"
	configFileName = "config.yaml"
)

var allowedLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

type Config struct {
	Backend BackendConfig `yaml:"backend" json:"backend"`
	UI      UIConfig      `yaml:"ui" json:"ui"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Server  ServerConfig  `yaml:"server" json:"server"`
}

type BackendConfig struct {
	URL     string `yaml:"url" json:"url"`
	Token   string `yaml:"token,omitempty" json:"token,omitempty"`
	Timeout string `yaml:"timeout" json:"timeout"` // "0" disables the timeout
}

type UIConfig struct {
	AltScreen bool `yaml:"altScreen" json:"altScreen"`
	Colors    bool `yaml:"colors" json:"colors"`
}

type LogConfig struct {
	Level      string `yaml:"level" json:"level"`
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB" json:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups" json:"maxBackups"`
}

type ServerConfig struct {
	Listen         string   `yaml:"listen" json:"listen"`
	AllowedOrigins []string `yaml:"allowedOrigins" json:"allowedOrigins"`
	Kubeconfig     string   `yaml:"kubeconfig,omitempty" json:"kubeconfig,omitempty"`
	Context        string   `yaml:"context,omitempty" json:"context,omitempty"`
}

func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:     "http://localhost:5000",
			Timeout: "0",
		},
		UI: UIConfig{
			AltScreen: true,
			Colors:    true,
		},
		Log: LogConfig{
			Level:      "info",
			File:       "podboard.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Server: ServerConfig{
			Listen:         ":5000",
			AllowedOrigins: []string{"*"},
		},
	}
}

func FilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// Load reads the YAML file at path over the defaults. An empty path means
// FilePath(); a missing or empty file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := FilePath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides values from PODBOARD_* environment variables.
func (c *Config) ApplyEnv() {
	c.Backend.URL = envOrDefault("PODBOARD_BACKEND_URL", c.Backend.URL)
	c.Backend.Token = envOrDefault("PODBOARD_BACKEND_TOKEN", c.Backend.Token)
	c.Backend.Timeout = envOrDefault("PODBOARD_BACKEND_TIMEOUT", c.Backend.Timeout)
	c.UI.Colors = parseBool("PODBOARD_COLORS", c.UI.Colors)
	c.Log.Level = strings.ToLower(envOrDefault("PODBOARD_LOG_LEVEL", c.Log.Level))
	c.Log.File = envOrDefault("PODBOARD_LOG_FILE", c.Log.File)
	c.Server.Listen = envOrDefault("PODBOARD_LISTEN", c.Server.Listen)
	c.Server.Kubeconfig = envOrDefault("PODBOARD_KUBECONFIG", c.Server.Kubeconfig)
	c.Server.Context = envOrDefault("PODBOARD_KUBE_CONTEXT", c.Server.Context)
	if origins := parseStringSlice("PODBOARD_ALLOWED_ORIGINS"); len(origins) > 0 {
		c.Server.AllowedOrigins = origins
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	var errs []error

	u, err := url.Parse(c.Backend.URL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("backend.url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("backend.url must use http:// or https:// (got %q)", c.Backend.URL))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("backend.url has no host (got %q)", c.Backend.URL))
	}

	if _, err := parseDuration(c.Backend.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("backend.timeout: %w", err))
	}

	if _, ok := allowedLevels[c.Log.Level]; !ok {
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level))
	}
	if c.Log.MaxSizeMB < 1 {
		errs = append(errs, fmt.Errorf("log.maxSizeMB must be >= 1, got %d", c.Log.MaxSizeMB))
	}
	if c.Log.MaxBackups < 0 {
		errs = append(errs, fmt.Errorf("log.maxBackups must be >= 0, got %d", c.Log.MaxBackups))
	}

	if strings.TrimSpace(c.Server.Listen) == "" {
		errs = append(errs, errors.New("server.listen cannot be empty"))
	}

	return errors.Join(errs...)
}

// RequestTimeout is the parsed backend timeout; zero means none.
func (c *Config) RequestTimeout() time.Duration {
	d, err := parseDuration(c.Backend.Timeout)
	if err != nil {
		return 0
	}
	return d
}

func Save(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func parseBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func parseStringSlice(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDuration accepts Go durations and plain integer seconds.
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}

	if d, err := time.ParseDuration(v); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("must be >= 0, got %s", v)
		}
		return d, nil
	}

	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	if secs < 0 {
		return 0, fmt.Errorf("must be >= 0, got %s", v)
	}
	return time.Duration(secs) * time.Second, nil
}
