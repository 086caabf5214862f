package smart

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvanwing/flux/core"
)

func TestChooseTextFile(t *testing.T) {
	t.Parallel()
	info := FileInfo{Path: "notes/readme.md", Size: 5000}
	strategy := Choose(info, nil, 0, 0, nil)
	assert.Equal(t, core.Zstd, strategy.Algorithm)
	assert.Equal(t, 6, strategy.Level)
}

func TestChooseCompressedFile(t *testing.T) {
	t.Parallel()
	info := FileInfo{Path: "photos/beach.jpg", Size: 5_000_000}
	strategy := Choose(info, nil, 0, 0, nil)
	assert.Equal(t, core.Store, strategy.Algorithm)
}

func TestChooseSizeTiers(t *testing.T) {
	t.Parallel()

	small := Choose(FileInfo{Path: "a.bin", Size: 500}, nil, 0, 0, nil)
	assert.Equal(t, core.Zstd, small.Algorithm)

	medium := Choose(FileInfo{Path: "a.bin", Size: 5 * 1024 * 1024}, nil, 0, 0, nil)
	assert.Equal(t, core.Zstd, medium.Algorithm)

	large := Choose(FileInfo{Path: "a.bin", Size: 200 * 1024 * 1024}, nil, 0, 0, nil)
	assert.Equal(t, core.Xz, large.Algorithm)
	assert.Equal(t, 1, large.Threads)

	veryLarge := Choose(FileInfo{Path: "a.bin", Size: 2 * 1024 * 1024 * 1024}, nil, 0, 0, nil)
	assert.Equal(t, core.Zstd, veryLarge.Algorithm)
	assert.True(t, veryLarge.LongMode)
	assert.LessOrEqual(t, veryLarge.Threads, 4)
}

func TestChooseHighEntropyUnknownExtension(t *testing.T) {
	t.Parallel()
	random := make([]byte, entropySampleSize)
	for i := range random {
		random[i] = byte(i*2654435761 + 17)
	}
	info := FileInfo{Path: "blob.bin", Size: int64(len(random))}
	strategy := Choose(info, nil, 0, 0, func() ([]byte, error) { return random, nil })
	assert.Equal(t, core.Store, strategy.Algorithm)
}

func TestChooseCustomRuleOverridesDefault(t *testing.T) {
	t.Parallel()
	rules := []Rule{
		{Name: "archives", Patterns: []string{"*.dat"}, Algorithm: core.Brotli, Level: 9, Threads: 1, Priority: 10},
	}
	strategy := Choose(FileInfo{Path: "payload.dat", Size: 100}, rules, 0, 0, nil)
	assert.Equal(t, core.Brotli, strategy.Algorithm)
	assert.Equal(t, 9, strategy.Level)
}

func TestChoosePriorityOrdering(t *testing.T) {
	t.Parallel()
	rules := []Rule{
		{Name: "low", Patterns: []string{"*.dat"}, Algorithm: core.Store, Priority: 1},
		{Name: "high", Patterns: []string{"*.dat"}, Algorithm: core.Brotli, Priority: 10},
	}
	strategy := Choose(FileInfo{Path: "payload.dat", Size: 100}, rules, 0, 0, nil)
	assert.Equal(t, core.Brotli, strategy.Algorithm)
}

func TestAdjustThreadsForAlgorithm(t *testing.T) {
	t.Parallel()
	xz := AdjustThreadsForAlgorithm(core.Strategy{Algorithm: core.Xz, Threads: 16})
	assert.Equal(t, 1, xz.Threads)

	gzip := AdjustThreadsForAlgorithm(core.Strategy{Algorithm: core.Gzip, Threads: 16})
	assert.Equal(t, 2, gzip.Threads)

	store := AdjustThreadsForAlgorithm(core.Strategy{Algorithm: core.Store, Threads: 16})
	assert.Equal(t, 1, store.Threads)
}

func TestProfileDirectoryAndChoose(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("text content"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.log"), []byte("log content"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.jpg"), []byte("fake jpeg"), 0o644))

	profile, err := ProfileDirectory(context.Background(), os.DirFS(dir), ".")
	require.NoError(t, err)
	assert.Equal(t, 3, profile.FileCount)
	assert.Equal(t, 2, profile.TextFiles)
	assert.Equal(t, 1, profile.CompressedFiles)

	strategy := ChooseForDirectory(profile, 0, 0)
	assert.Contains(t, []core.Algorithm{core.Zstd, core.Store}, strategy.Algorithm)
}
