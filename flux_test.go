package flux_test

import (
	"archive/tar"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvanwing/flux"
)

func TestPackExtractInspectRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("hello world"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "b.txt"), []byte("nested file"), 0o644))

	client, err := flux.NewClient()
	require.NoError(t, err)

	var buf bytes.Buffer
	opts := flux.PackOptions{Mode: flux.ModeExplicit, Algorithm: flux.Store}
	require.NoError(t, client.Pack(context.Background(), src, &buf, "archive.tar", opts))

	archiveBytes := buf.Bytes()
	entries, err := client.Inspect(context.Background(), bytes.NewReader(archiveBytes), int64(len(archiveBytes)), "archive.tar")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Path)
	}
	assert.Contains(t, names, "src/a.txt")
	assert.Contains(t, names, "src/sub/b.txt")

	destDir := filepath.Join(dir, "restore")
	result, err := client.Extract(context.Background(), bytes.NewReader(archiveBytes), int64(len(archiveBytes)), "archive.tar", destDir, flux.DefaultExtractOptions())
	require.NoError(t, err)
	assert.Zero(t, result.Failed)

	restored, err := os.ReadFile(filepath.Join(destDir, "src", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(restored))
}

func TestPackZipRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("zip contents"), 0o644))

	client, err := flux.NewClient()
	require.NoError(t, err)

	var buf bytes.Buffer
	opts := flux.PackOptions{Mode: flux.ModeExplicit, Algorithm: flux.Store}
	require.NoError(t, client.Pack(context.Background(), src, &buf, "archive.zip", opts))

	archiveBytes := buf.Bytes()
	destDir := filepath.Join(dir, "restore")
	result, err := client.Extract(context.Background(), bytes.NewReader(archiveBytes), int64(len(archiveBytes)), "archive.zip", destDir, flux.DefaultExtractOptions())
	require.NoError(t, err)
	assert.Zero(t, result.Failed)

	restored, err := os.ReadFile(filepath.Join(destDir, "src", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "zip contents", string(restored))
}

func TestPackAmbiguousSuffixFallsBackToResolvedCodec(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("data"), 0o644))

	client, err := flux.NewClient()
	require.NoError(t, err)

	var buf bytes.Buffer
	opts := flux.PackOptions{Mode: flux.ModeExplicit, Algorithm: flux.Zstd}
	require.NoError(t, client.Pack(context.Background(), src, &buf, "data.backup", opts))

	archiveBytes := buf.Bytes()
	entries, err := client.Inspect(context.Background(), bytes.NewReader(archiveBytes), int64(len(archiveBytes)), "archive.tar.zst")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Path)
	}
	assert.Contains(t, names, "src/a.txt")
}

func TestExtractUnrecognizedFormat(t *testing.T) {
	t.Parallel()
	client, err := flux.NewClient()
	require.NoError(t, err)

	_, err = client.Extract(context.Background(), bytes.NewReader(nil), 0, "archive.unknownext", t.TempDir(), flux.DefaultExtractOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, flux.ErrUnsupportedFormat)
}

func TestExtractRejectsPathTraversal(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	payload := []byte("evil")
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "../evil.txt",
		Mode: 0o644,
		Size: int64(len(payload)),
	}))
	_, err := tw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	client, err := flux.NewClient()
	require.NoError(t, err)

	destDir := filepath.Join(dir, "dest")
	archiveBytes := buf.Bytes()
	result, err := client.Extract(context.Background(), bytes.NewReader(archiveBytes), int64(len(archiveBytes)), "archive.tar", destDir, flux.DefaultExtractOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, flux.ErrInvalidPath)
	assert.Zero(t, result.Extracted)

	_, statErr := os.Stat(filepath.Join(dir, "evil.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtractHoistsSingleTopLevelDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "project-v1.2.3")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "b.txt"), []byte("nested"), 0o644))

	client, err := flux.NewClient()
	require.NoError(t, err)

	var buf bytes.Buffer
	opts := flux.PackOptions{Mode: flux.ModeExplicit, Algorithm: flux.Store}
	require.NoError(t, client.Pack(context.Background(), src, &buf, "archive.tar", opts))

	destDir := filepath.Join(dir, "restore")
	archiveBytes := buf.Bytes()
	extractOpts := flux.DefaultExtractOptions()
	extractOpts.Hoist = true
	result, err := client.Extract(context.Background(), bytes.NewReader(archiveBytes), int64(len(archiveBytes)), "archive.tar", destDir, extractOpts)
	require.NoError(t, err)
	assert.Zero(t, result.Failed)

	_, statErr := os.Stat(filepath.Join(destDir, "project-v1.2.3"))
	assert.True(t, os.IsNotExist(statErr), "top-level directory should have been hoisted away")

	restored, err := os.ReadFile(filepath.Join(destDir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(restored))

	restored, err = os.ReadFile(filepath.Join(destDir, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "nested", string(restored))
}

func TestSyncFullThenIncremental(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("v1"), 0o644))

	client, err := flux.NewClient()
	require.NoError(t, err)

	manifestPath := filepath.Join(dir, "snap.json")
	var full bytes.Buffer
	fullResult, err := client.Sync(context.Background(), src, &full, flux.Strategy{Algorithm: flux.Store}, false, "", manifestPath)
	require.NoError(t, err)
	assert.True(t, fullResult.Diff.IsEmpty())

	require.NoError(t, os.WriteFile(filepath.Join(src, "c.txt"), []byte("new"), 0o644))

	var incr bytes.Buffer
	newManifestPath := filepath.Join(dir, "snap2.json")
	incrResult, err := client.Sync(context.Background(), src, &incr, flux.Strategy{Algorithm: flux.Store}, false, manifestPath, newManifestPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"c.txt"}, incrResult.Diff.Added)
}

func TestDefaultManifestPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "backup.tar.zst.manifest.json", flux.DefaultManifestPath("backup.tar.zst"))
}
