package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for fv.
type Config struct {
	HostID      string            `toml:"host_id"`
	BaseDir     string            `toml:"base_dir"`
	LogDir      string            `toml:"log_dir"`
	Store       StoreConfig       `toml:"store"`
	Index       IndexConfig       `toml:"index"`
	Staging     StagingConfig     `toml:"staging"`
	Fingerprint FingerprintConfig `toml:"fingerprint"`
	Encryption  EncryptionConfig  `toml:"encryption"`
	Versioning  VersioningConfig  `toml:"versioning"`
	Filesystem  FilesystemConfig  `toml:"filesystem"`
}

// StoreConfig selects the snapshot storage backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type string `toml:"type"` // "filesystem" (default), "memory" or "s3"

	// Filesystem-specific (Type == "filesystem")
	Root string `toml:"root,omitempty"`

	// S3-specific (Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// IndexConfig selects where version metadata is persisted.
type IndexConfig struct {
	Type    string `toml:"type"`               // "sqlite", "memory" or "none"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// StagingConfig configures the capture area used while backing up.
type StagingConfig struct {
	Type       string `toml:"type"`                  // "filesystem" or "memory"
	StagingDir string `toml:"staging_dir,omitempty"` // only used for type=filesystem
	MaxSize    int64  `toml:"max_size,omitempty"`    // largest file that can be captured; 0 = no limit
}

// FingerprintConfig selects the content digest.
type FingerprintConfig struct {
	Algorithm string `toml:"algorithm"` // "sha256" (default) or "blake2b"
}

// EncryptionConfig holds paths to the age key pair used to encrypt snapshots at rest.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default), "age" or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// VersioningConfig controls version id assignment and restore targets.
type VersioningConfig struct {
	IDPolicy      string `toml:"id_policy"`             // "monotonic" (default) or "count"
	RestorePolicy string `toml:"restore_policy"`        // "workdir" (default) or "source"
	RestoreDir    string `toml:"restore_dir,omitempty"` // workdir policy target; empty = cwd
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	Ignore []string `toml:"ignore"`
}

// NewConfig creates a Config for a freshly initialised host: filesystem
// snapshots, on-disk staging and a SQLite index under baseDir, unencrypted.
func NewConfig(hostID, baseDir string) *Config {
	return &Config{
		HostID:  hostID,
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Store: StoreConfig{
			Type: "filesystem",
			Root: filepath.Join(baseDir, "backup_storage"),
		},
		Index: IndexConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Staging: StagingConfig{
			Type:       "filesystem",
			StagingDir: filepath.Join(baseDir, "staging"),
		},
		Encryption: EncryptionConfig{
			Type:           "none",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "fv.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "fv.key"),
		},
		Versioning: VersioningConfig{
			IDPolicy:      "monotonic",
			RestorePolicy: "workdir",
		},
	}
}

// Default returns the configuration used when no config file exists:
// snapshots in ./backup_storage and metadata kept in memory only.
func Default(baseDir string) *Config {
	cfg := NewConfig("local", baseDir)
	cfg.Store.Root = "backup_storage"
	cfg.Index = IndexConfig{Type: "none"}
	return cfg
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// ReadOrDefault reads the config at path, falling back to Default(baseDir)
// when the file does not exist.
func ReadOrDefault(path, baseDir string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(baseDir), nil
	}
	return ReadFromFile(path)
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
