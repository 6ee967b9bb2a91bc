package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultQueueSize, cfg.Updates.QueueSize)
	assert.Equal(t, DefaultChunkSize, cfg.Updates.ChunkSize)
	assert.Equal(t, filepath.Join(DefaultDataDir, "updates"), cfg.Updates.SpoolDir)
	assert.Equal(t, filepath.Join(DefaultDataDir, DefaultSnapshotFile), cfg.SnapshotPath())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "config.yml")
	yml := `
server:
  port: "9000"
  shutdown_timeout: 10s
storage:
  data_dir: /var/lib/gosearch
  background_save: 1m
updates:
  queue_size: 5
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("GOSEARCH_PORT", "9100")
	t.Setenv("GOSEARCH_CHUNK_SIZE", "1024")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, time.Minute, cfg.Storage.BackgroundSave)
	assert.Equal(t, 5, cfg.Updates.QueueSize)
	assert.Equal(t, 1024, cfg.Updates.ChunkSize)
	assert.Equal(t, "/var/lib/gosearch/updates", cfg.Updates.SpoolDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GOSEARCH_QUEUE_SIZE=42\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("GOSEARCH_QUEUE_SIZE") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Updates.QueueSize)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	_, err := Load(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("server: ["), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	huge := filepath.Join(dir, "huge.yml")
	require.NoError(t, os.WriteFile(huge, []byte("updates:\n  chunk_size: 999999999\n"), 0o644))
	_, err = Load(huge)
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
