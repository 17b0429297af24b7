package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "main", cfg.Trunk)
	assert.Equal(t, 2*time.Second, cfg.AdapterTimeout)
	assert.Equal(t, 4, cfg.AggregateParallelism)
	assert.False(t, cfg.JSON)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".grove"), 0o755))
	yaml := "trunk: develop\nadapter_timeout: 5s\naggregate_parallelism: 8\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".grove", "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "develop", cfg.Trunk)
	assert.Equal(t, 5*time.Second, cfg.AdapterTimeout)
	assert.Equal(t, 8, cfg.AggregateParallelism)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GSTACK_TRUNK", "master")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "master", cfg.Trunk)
}

func TestLoadClampsParallelism(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".grove"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".grove", "config.yaml"), []byte("aggregate_parallelism: 0\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.AggregateParallelism)
}
