package incremental

import (
	"archive/tar"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvanwing/flux/core"
)

func tarNames(t *testing.T, data []byte) []string {
	t.Helper()
	tr := tar.NewReader(bytes.NewReader(data))
	var names []string
	for {
		header, err := tr.Next()
		if err != nil {
			break
		}
		names = append(names, header.Name)
	}
	return names
}

func TestPackFullBackupEmitsEverything(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "b.txt"), []byte("world"), 0o644))

	var buf bytes.Buffer
	manifestPath := filepath.Join(dir, "snap.json")
	result, err := Pack(context.Background(), src, &buf, core.Strategy{Algorithm: core.Store}, false, "", manifestPath, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Manifest.FileCount)
	assert.True(t, result.Diff.IsEmpty())

	names := tarNames(t, buf.Bytes())
	assert.Contains(t, names, "src/a.txt")
	assert.Contains(t, names, "src/b.txt")

	_, err = os.Stat(manifestPath)
	require.NoError(t, err)
}

func TestPackIncrementalEmitsOnlyChangedFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "b.txt"), []byte("2"), 0o644))

	oldManifestPath := filepath.Join(dir, "old.json")
	var discard bytes.Buffer
	_, err := Pack(context.Background(), src, &discard, core.Strategy{Algorithm: core.Store}, false, "", oldManifestPath, nil)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("1x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "c.txt"), []byte("3"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(src, "b.txt")))

	var buf bytes.Buffer
	newManifestPath := filepath.Join(dir, "new.json")
	result, err := Pack(context.Background(), src, &buf, core.Strategy{Algorithm: core.Store}, false, oldManifestPath, newManifestPath, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"c.txt"}, result.Diff.Added)
	assert.ElementsMatch(t, []string{"a.txt"}, result.Diff.Modified)
	assert.ElementsMatch(t, []string{"b.txt"}, result.Diff.Deleted)

	names := tarNames(t, buf.Bytes())
	assert.Contains(t, names, "src/a.txt")
	assert.Contains(t, names, "src/c.txt")
	assert.NotContains(t, names, "src/b.txt")
}

func TestLoadIfExistsMissingFileReturnsNil(t *testing.T) {
	t.Parallel()
	m, err := LoadIfExists(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestDefaultManifestPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "archive.tar.zst.manifest.json", DefaultManifestPath("archive.tar.zst"))
}
