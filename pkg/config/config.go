// Package config loads go-search configuration from a YAML file, .env files
// and environment variables, in that order of increasing priority.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/adfharrison1/go-search/pkg/logger"
)

const (
	// DefaultRetrieveDocumentsOffset is the browse offset used when none is given
	DefaultRetrieveDocumentsOffset = 0
	// DefaultRetrieveDocumentsLimit is the browse limit used when none is given
	DefaultRetrieveDocumentsLimit = 20

	DefaultPort            = "7700"
	DefaultDataDir         = "data.gosearch"
	DefaultSnapshotFile    = "snapshot.gose"
	DefaultQueueSize       = 1000
	DefaultChunkSize       = 64 * 1024
	DefaultShutdownTimeout = 30 * time.Second
	DefaultReadTimeout     = 5 * time.Minute
)

// Config is the root configuration of the service
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Updates UpdatesConfig `yaml:"updates"`
	Logging logger.Config `yaml:"logging"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port            string        `yaml:"port" env:"GOSEARCH_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"GOSEARCH_READ_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"GOSEARCH_SHUTDOWN_TIMEOUT"`
}

// StorageConfig configures the index store
type StorageConfig struct {
	DataDir      string `yaml:"data_dir" env:"GOSEARCH_DATA_DIR"`
	SnapshotFile string `yaml:"snapshot_file" env:"GOSEARCH_SNAPSHOT_FILE"`
	// BackgroundSave is the snapshot interval, zero disables background saves
	BackgroundSave time.Duration `yaml:"background_save" env:"GOSEARCH_BACKGROUND_SAVE"`
}

// UpdatesConfig configures the update queue and payload streaming
type UpdatesConfig struct {
	QueueSize int    `yaml:"queue_size" env:"GOSEARCH_QUEUE_SIZE"`
	ChunkSize int    `yaml:"chunk_size" env:"GOSEARCH_CHUNK_SIZE"`
	SpoolDir  string `yaml:"spool_dir" env:"GOSEARCH_SPOOL_DIR"`
}

// SetDefaults fills every unset field
func (c *Config) SetDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = DefaultDataDir
	}
	if c.Storage.SnapshotFile == "" {
		c.Storage.SnapshotFile = DefaultSnapshotFile
	}
	if c.Updates.QueueSize <= 0 {
		c.Updates.QueueSize = DefaultQueueSize
	}
	if c.Updates.ChunkSize <= 0 {
		c.Updates.ChunkSize = DefaultChunkSize
	}
	if c.Updates.SpoolDir == "" {
		c.Updates.SpoolDir = filepath.Join(c.Storage.DataDir, "updates")
	}
	c.Logging.SetDefaults()
}

// SnapshotPath returns the absolute location of the snapshot file
func (c *Config) SnapshotPath() string {
	if filepath.IsAbs(c.Storage.SnapshotFile) {
		return c.Storage.SnapshotFile
	}
	return filepath.Join(c.Storage.DataDir, c.Storage.SnapshotFile)
}

// Validate checks values SetDefaults cannot repair
func (c *Config) Validate() error {
	if c.Updates.ChunkSize > 16*1024*1024 {
		return fmt.Errorf("updates.chunk_size %d exceeds 16MiB", c.Updates.ChunkSize)
	}
	if c.Storage.BackgroundSave < 0 {
		return fmt.Errorf("storage.background_save cannot be negative")
	}
	return nil
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and defaults, then validates the result.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles loads ENV_FILE when set, otherwise .env.local then .env.
// Missing files are ignored.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}
