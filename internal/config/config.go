package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	MaxDiagnostics  int      `json:"maxDiagnostics" yaml:"maxDiagnostics"`
	IndentSize      int      `json:"indentSize" yaml:"indentSize"`
	InsertSpaces    bool     `json:"insertSpaces" yaml:"insertSpaces"`
	FileExtensions  []string `json:"fileExtensions" yaml:"fileExtensions"`
	CacheCapacity   int      `json:"cacheCapacity" yaml:"cacheCapacity"`
	CacheTTLSeconds int      `json:"cacheTTL" yaml:"cacheTTL"`
	DatabasePath    string   `json:"databasePath" yaml:"databasePath"` // empty: under $XDG_STATE_HOME
	ScanWorkspace   bool     `json:"scanWorkspace" yaml:"scanWorkspace"`
	DiagnosticDelay int      `json:"diagnosticDelayMs" yaml:"diagnosticDelayMs"`
}

var defaultConfig = Config{
	MaxDiagnostics:  100,
	IndentSize:      2,
	InsertSpaces:    true,
	FileExtensions:  []string{".hql"},
	CacheCapacity:   8,
	CacheTTLSeconds: 600,
	ScanWorkspace:   true,
	DiagnosticDelay: 200,
}

func Default() Config {
	cfg := defaultConfig
	cfg.FileExtensions = append([]string(nil), defaultConfig.FileExtensions...)
	return cfg
}

// Load overlays v, typically the client's initializationOptions, on the
// defaults. Only fields present in v are overwritten.
func Load(v any) (Config, error) {
	return Default().Merge(v)
}

// Merge overlays v on c.
func (c Config) Merge(v any) (Config, error) {
	cfg := c
	cfg.FileExtensions = append([]string(nil), c.FileExtensions...)
	if v == nil {
		return cfg, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return Config{}, fmt.Errorf("failed to marshal source: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal into Config: %w", err)
	}
	return cfg, nil
}

// LoadYAML reads a YAML document from r over the defaults.
func LoadYAML(r io.Reader) (Config, error) {
	cfg := Default()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads a YAML config file.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()
	return LoadYAML(f)
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c Config) DiagnosticsDelay() time.Duration {
	return time.Duration(c.DiagnosticDelay) * time.Millisecond
}

// HasExtension reports whether path ends in one of the configured file
// extensions.
func (c Config) HasExtension(path string) bool {
	for _, ext := range c.FileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
