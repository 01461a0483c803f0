package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Config holds server, store and logging settings.
type Config struct {
	Addr      string `json:"addr" yaml:"addr"`
	Store     string `json:"store" yaml:"store"`
	StorePath string `json:"storePath" yaml:"store_path"`
	// Encrypt seals the JSON history file with a key derived from the master key.
	Encrypt        bool   `json:"encrypt" yaml:"encrypt"`
	KeyFile        string `json:"keyFile" yaml:"key_file"`
	DedupWindowSec int    `json:"dedupWindowSec" yaml:"dedup_window_sec"`
	LogLevel       string `json:"logLevel" yaml:"log_level"`
	LogFile        string `json:"logFile" yaml:"log_file"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Addr:           ":8080",
		Store:          StoreJSON,
		KeyFile:        "master.key",
		DedupWindowSec: 2,
		LogLevel:       "info",
	}
}

var configNames = []string{"config.json", "config.yaml", "config.yml"}

// LoadConfig reads path (JSON or YAML by extension) over the defaults, then
// applies QRSCAN_* environment overrides. An empty path searches the project
// root for config.json, config.yaml or config.yml and falls back to defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		for _, name := range configNames {
			p := filepath.Join(GetProjectRoot(), name)
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, cfg)
		default:
			err = json.Unmarshal(data, cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("QRSCAN_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("QRSCAN_STORE"); v != "" {
		c.Store = v
	}
	if v := os.Getenv("QRSCAN_STORE_PATH"); v != "" {
		c.StorePath = v
	}
	if v := os.Getenv("QRSCAN_ENCRYPT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("QRSCAN_ENCRYPT: %w", err)
		}
		c.Encrypt = b
	}
	if v := os.Getenv("QRSCAN_KEY_FILE"); v != "" {
		c.KeyFile = v
	}
	if v := os.Getenv("QRSCAN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("QRSCAN_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	return nil
}

// Validate normalises the store settings and rejects unusable values.
func (c *Config) Validate() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case "":
		c.Store = StoreJSON
	case StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreJSON, StoreSQLite)
	}
	if c.Encrypt && c.Store != StoreJSON {
		return fmt.Errorf("encrypt is only supported by the %s store", StoreJSON)
	}
	if c.DedupWindowSec < 0 {
		return fmt.Errorf("dedupWindowSec must not be negative")
	}
	if c.StorePath == "" {
		name := "scans.json"
		if c.Store == StoreSQLite {
			name = "scans.db"
		}
		c.StorePath = filepath.Join(GetDataDir(), name)
	}
	return nil
}

// DedupWindow is the window within which a repeated payload is rejected.
func (c *Config) DedupWindow() time.Duration {
	return time.Duration(c.DedupWindowSec) * time.Second
}
