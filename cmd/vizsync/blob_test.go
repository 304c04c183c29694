package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/vizsync/blobstore"
	"github.com/hupe1980/vizsync/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBlobStore(t *testing.T) {
	ctx := context.Background()

	cfg := config.DefaultConfig()
	_, err := newBlobStore(ctx, cfg)
	assert.Error(t, err)

	cfg.Upload = config.UploadConfig{Backend: config.UploadLocal, Dir: t.TempDir()}
	bs, err := newBlobStore(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, bs)

	cfg.Upload = config.UploadConfig{Backend: config.UploadMinio, Endpoint: "localhost:9000", Bucket: "b"}
	_, err = newBlobStore(ctx, cfg)
	require.NoError(t, err)
}

func TestDemoRecordAndUpload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	out := filepath.Join(dir, "scene.db")
	blobs := filepath.Join(dir, "blobs")

	cfgPath := filepath.Join(dir, "vizsync.yaml")
	cfg := config.DefaultConfig()
	cfg.Log.Level = "error"
	cfg.Demo.Steps = 3
	cfg.Demo.Rings = 3
	cfg.Demo.Segments = 4
	cfg.Upload = config.UploadConfig{Backend: config.UploadLocal, Dir: blobs, Name: "runs/scene.db"}
	require.NoError(t, cfg.Save(cfgPath))

	require.NoError(t, runDemo(ctx, []string{"-config", cfgPath, "-out", out}))

	names, err := blobstore.NewLocalStore(blobs).List(ctx, "runs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/scene.db"}, names)
	assert.True(t, strings.HasSuffix(out, "scene.db"))
}
