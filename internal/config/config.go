package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"
)

// AppName is the application name used for keyring and config
const AppName = "tiptap"

const (
	// DefaultTable is the posts table name on the hosted database
	DefaultTable = "posts"
	// DefaultRecentLimit is how many recent posts are checked for slug collisions
	DefaultRecentLimit = 20
)

var tablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// KeyringBackends are the accepted keyring_backend values.
var KeyringBackends = []string{"auto", "keychain", "file"}

// Config holds CLI configuration. The json tags name fields in
// validation errors.
type Config struct {
	BaseURL        string `yaml:"base_url,omitempty" json:"base_url"`
	APIKey         string `yaml:"api_key,omitempty" json:"api_key"`
	Table          string `yaml:"table,omitempty" json:"table"`
	KeyringBackend string `yaml:"keyring_backend,omitempty" json:"keyring_backend"`
	OutputFormat   string `yaml:"output_format,omitempty" json:"output_format"`
	RecentLimit    int    `yaml:"recent_limit,omitempty" json:"recent_limit"`
	Timeout        string `yaml:"timeout,omitempty" json:"timeout"` // Go duration, e.g. 30s
}

// Validate checks the fields that have a fixed shape. Empty fields are
// valid and fall back to defaults.
func (c *Config) Validate() error {
	backends := make([]interface{}, len(KeyringBackends))
	for i, b := range KeyringBackends {
		backends[i] = b
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, is.URL),
		validation.Field(&c.Table, validation.Match(tablePattern).Error("must be a plain table name")),
		validation.Field(&c.KeyringBackend, validation.In(backends...)),
		validation.Field(&c.RecentLimit, validation.Min(1)),
		validation.Field(&c.Timeout, validation.By(func(interface{}) error {
			_, err := c.TimeoutDuration()
			return err
		})),
	)
}

// TableName returns the configured table or DefaultTable.
func (c *Config) TableName() string {
	if c == nil || strings.TrimSpace(c.Table) == "" {
		return DefaultTable
	}
	return strings.TrimSpace(c.Table)
}

// Recent returns the configured recent-post limit or DefaultRecentLimit.
func (c *Config) Recent() int {
	if c == nil || c.RecentLimit <= 0 {
		return DefaultRecentLimit
	}
	return c.RecentLimit
}

// TimeoutDuration parses Timeout. Zero means the client default.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c == nil || strings.TrimSpace(c.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(c.Timeout))
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid timeout %q: must be positive", c.Timeout)
	}
	return d, nil
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// DefaultConfigPath returns the default config file path
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureKeyringDir ensures the keyring directory exists and returns its path
func EnsureKeyringDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	keyringDir := filepath.Join(dir, "keyring")
	if err := os.MkdirAll(keyringDir, 0o700); err != nil {
		return "", fmt.Errorf("creating keyring directory: %w", err)
	}
	return keyringDir, nil
}

// ReadConfig reads the config file from the default location
func ReadConfig() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Load loads config from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save saves config to the given path
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
