package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justingibbs/crabgrass/internal/registry"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesAndDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
database: /var/lib/crabgrass/ideas.db
poll_interval: 1s
batch_size: 25
`))
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/crabgrass/ideas.db", cfg.Database)
	assert.Equal(t, Duration(time.Second), cfg.PollInterval)
	assert.Equal(t, 25, cfg.BatchSize)

	// Untouched keys keep their defaults.
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, Duration(5*time.Minute), cfg.ReclaimAfter)
	assert.Equal(t, Duration(24*time.Hour), cfg.CompletedTTL)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("databse: typo.db\n"))
	require.Error(t, err)
	assert.True(t, registry.IsConfigurationError(err))
}

func TestParseCollectsValidationProblems(t *testing.T) {
	_, err := Parse([]byte(`
batch_size: -1
max_attempts: -1
`))
	require.Error(t, err)
	require.True(t, registry.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "batch_size")
	assert.Contains(t, err.Error(), "max_attempts")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: from-file.db\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file.db", cfg.Database)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
