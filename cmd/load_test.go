package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/go-search/pkg/config"
	"github.com/adfharrison1/go-search/pkg/logger"
	"github.com/adfharrison1/go-search/pkg/server"
)

func TestStreamBatch(t *testing.T) {
	var buf bytes.Buffer
	_, err := buf.ReadFrom(streamBatch(rand.New(rand.NewSource(1)), 10, 3))
	require.NoError(t, err)

	var docs []movie
	require.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
	require.Len(t, docs, 3)
	assert.Equal(t, "m10", docs[0].ID)
	assert.Equal(t, "m12", docs[2].ID)
}

func TestLoadCommand(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.DataDir = t.TempDir()
	cfg.SetDefaults()
	srv, err := server.NewServer(cfg, logger.NewNop())
	require.NoError(t, err)
	defer srv.Close(context.Background())

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	var out bytes.Buffer
	cmd := loadCmd
	cmd.SetOut(&out)
	require.NoError(t, cmd.Flags().Set("url", ts.URL))
	require.NoError(t, cmd.Flags().Set("docs", "250"))
	require.NoError(t, cmd.Flags().Set("batch", "100"))
	require.NoError(t, runLoad(cmd, nil))
	assert.Contains(t, out.String(), "Documents accepted:  250/250")

	// three batches: update ids 0, 1 and 2
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	record, err := srv.Controller().Wait(ctx, "movies", 2)
	require.NoError(t, err)
	assert.Equal(t, 50, record.Affected)
}

func TestApplyFlags(t *testing.T) {
	cfg := &config.Config{}
	cfg.SetDefaults()

	cmd := rootCmd
	require.NoError(t, cmd.Flags().Set("data-dir", "/tmp/gs-test"))
	require.NoError(t, cmd.Flags().Set("background-save", "30s"))
	require.NoError(t, applyFlags(cmd, cfg))

	assert.Equal(t, "/tmp/gs-test", cfg.Storage.DataDir)
	assert.Equal(t, "/tmp/gs-test/updates", cfg.Updates.SpoolDir)
	assert.Equal(t, 30*time.Second, cfg.Storage.BackgroundSave)
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
}
