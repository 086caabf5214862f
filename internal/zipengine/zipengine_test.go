package zipengine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvanwing/flux/core"
)

func writeTree(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "sub", "b.txt"), []byte("world"), 0o644))
}

func TestPackAndExtractRoundTrip(t *testing.T) {
	t.Parallel()
	srcDir := t.TempDir()
	writeTree(t, srcDir)

	var buf bytes.Buffer
	skipped, err := Pack(context.Background(), filepath.Join(srcDir, "src"), &buf, core.DefaultLevel, false)
	require.NoError(t, err)
	assert.Empty(t, skipped)

	e := &Extractor{}
	source := bytes.NewReader(buf.Bytes())
	size := int64(buf.Len())

	seq, err := e.Entries(context.Background(), source, size)
	require.NoError(t, err)
	var entries []core.Entry
	for {
		entry, ok, err := seq.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		entries = append(entries, entry)
	}
	require.NoError(t, seq.Close())
	require.NotEmpty(t, entries)

	destDir := t.TempDir()
	opts := core.DefaultExtractOptions()
	for _, entry := range entries {
		require.NoError(t, e.ExtractEntry(context.Background(), source, size, entry, destDir, opts))
	}

	got, err := os.ReadFile(filepath.Join(destDir, "src", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	got, err = os.ReadFile(filepath.Join(destDir, "src", "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "world", string(got))
}

func TestExtractEntryNotFound(t *testing.T) {
	t.Parallel()
	srcDir := t.TempDir()
	writeTree(t, srcDir)

	var buf bytes.Buffer
	_, err := Pack(context.Background(), filepath.Join(srcDir, "src"), &buf, core.DefaultLevel, false)
	require.NoError(t, err)

	e := &Extractor{}
	source := bytes.NewReader(buf.Bytes())
	size := int64(buf.Len())

	entry := core.Entry{Path: "src/missing.txt"}
	err = e.ExtractEntry(context.Background(), source, size, entry, t.TempDir(), core.DefaultExtractOptions())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestZipMethodFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, uint16(0), zipMethodFor(1))
	assert.NotEqual(t, uint16(0), zipMethodFor(5))
}
