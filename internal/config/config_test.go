package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hql/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	cfg, err := config.Load(map[string]any{
		"maxDiagnostics": 5,
		"insertSpaces":   false,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxDiagnostics)
	assert.False(t, cfg.InsertSpaces)
	assert.Equal(t, 2, cfg.IndentSize)
	assert.Equal(t, []string{".hql"}, cfg.FileExtensions)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL())
}

func TestLoadNil(t *testing.T) {
	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadRejectsWrongTypes(t *testing.T) {
	_, err := config.Load(map[string]any{"indentSize": "four"})
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	cfg, err := config.LoadYAML(strings.NewReader("indentSize: 4\nfileExtensions: [.hql, .lisp]\ncacheTTL: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.IndentSize)
	assert.Equal(t, time.Second, cfg.CacheTTL())
	assert.True(t, cfg.HasExtension("src/main.lisp"))
	assert.False(t, cfg.HasExtension("README.md"))

	cfg, err = config.LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hql.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxDiagnostics: 3\ndatabasePath: /tmp/x.db\n"), 0o644))
	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxDiagnostics)
	assert.Equal(t, "/tmp/x.db", cfg.DatabasePath)

	_, err = config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	base, err := config.LoadYAML(strings.NewReader("indentSize: 4\n"))
	require.NoError(t, err)
	cfg, err := base.Merge(map[string]any{"maxDiagnostics": 1})
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.IndentSize)
	assert.Equal(t, 1, cfg.MaxDiagnostics)
	assert.Equal(t, 100, base.MaxDiagnostics)
}
