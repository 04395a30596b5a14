// Package file loads the TOML configuration file.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the pipeline configuration, stored as TOML. Zero values
// are filled with defaults on load.
type Config struct {
	// DataDir holds the SQLite database and search index.
	DataDir string `toml:"data_dir"`

	// ListenAddr is the HTTP API bind address.
	ListenAddr string `toml:"listen_addr"`

	Queue   QueueConfig   `toml:"queue"`
	Drive   DriveConfig   `toml:"drive"`
	Storage StorageConfig `toml:"storage"`
	Import  ImportConfig  `toml:"import"`
}

// QueueConfig tunes the conversion worker pool.
type QueueConfig struct {
	// Workers bounds conversion concurrency.
	Workers int `toml:"workers"`

	// MaxAttempts is the per-document delivery ceiling.
	MaxAttempts int `toml:"max_attempts"`

	// BackoffBase is the delay before the first retry, doubling after.
	BackoffBase time.Duration `toml:"backoff_base"`
}

// DriveConfig points at the Google Drive conversion credentials.
type DriveConfig struct {
	// CredentialsFile is the OAuth2 client credentials JSON.
	CredentialsFile string `toml:"credentials_file"`

	// TokenFile is the stored OAuth2 token JSON.
	TokenFile string `toml:"token_file"`
}

// StorageConfig points at the external file storage service.
type StorageConfig struct {
	// ServiceURL is the storage service endpoint.
	ServiceURL string `toml:"service_url"`
}

// ImportConfig controls the bulk import watcher.
type ImportConfig struct {
	// WatchDir is scanned for course description JSON files; empty
	// disables the watcher.
	WatchDir string `toml:"watch_dir"`
}

// DefaultPath returns the default config file location,
// ~/.karmanotes/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".karmanotes", "config.toml"), nil
}

// Load reads the config file at path, falling back to the default
// location when path is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config as TOML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.DataDir = filepath.Join(home, ".karmanotes", "data")
		}
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8642"
	}
	if c.Queue.Workers <= 0 {
		c.Queue.Workers = 4
	}
	if c.Queue.MaxAttempts <= 0 {
		c.Queue.MaxAttempts = 5
	}
	if c.Queue.BackoffBase <= 0 {
		c.Queue.BackoffBase = 2 * time.Second
	}
}
