package smart

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/silvanwing/flux/core"
)

// DirectoryProfile summarizes a directory tree's contents for
// ChooseForDirectory: total size and file counts broken out by the same
// text/compressed extension classes Choose uses per file.
type DirectoryProfile struct {
	FileCount       int
	TotalSize       int64
	TextFiles       int
	CompressedFiles int
}

// ProfileDirectory walks root (without following symlinks) and tallies a
// DirectoryProfile, used to pick one strategy for an entire pack operation
// instead of per-file decisions.
func ProfileDirectory(ctx context.Context, fsys fs.FS, root string) (DirectoryProfile, error) {
	var profile DirectoryProfile
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return nil
		}

		profile.FileCount++
		profile.TotalSize += info.Size()

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(p), "."))
		if _, ok := textExtensions[ext]; ok {
			profile.TextFiles++
		} else if _, ok := compressedExtensions[ext]; ok {
			profile.CompressedFiles++
		}
		return nil
	})
	return profile, err
}

// ChooseForDirectory picks one strategy to apply to an entire pack
// operation from a DirectoryProfile: mostly-compressed content stores,
// mostly-text content gets a higher zstd level and more threads, many
// small files get a fast single level, and very large aggregate size
// falls back to xz at a memory-conscious level.
func ChooseForDirectory(profile DirectoryProfile, userLevel, userThreads int) core.Strategy {
	strategy := core.Strategy{Algorithm: core.Zstd, Level: core.DefaultLevel, Threads: runtime.NumCPU()}
	if profile.FileCount == 0 {
		return applyUserOverrides(strategy, userLevel, userThreads)
	}

	compressedRatio := float64(profile.CompressedFiles) / float64(profile.FileCount)
	textRatio := float64(profile.TextFiles) / float64(profile.FileCount)
	avgSize := profile.TotalSize / int64(profile.FileCount)

	switch {
	case compressedRatio > 0.7:
		strategy.Algorithm = core.Store
		strategy.Threads = 1
	case textRatio > 0.5:
		strategy.Algorithm = core.Zstd
		strategy.Threads = max(runtime.NumCPU(), 4)
		strategy.Level = 6
	case avgSize < smallFileThreshold:
		strategy.Algorithm = core.Zstd
		strategy.Threads = runtime.NumCPU()
		strategy.Level = 1
	case profile.TotalSize > largeFileThreshold*veryLargeMultiplier:
		strategy.Algorithm = core.Xz
		strategy.Threads = 2
		strategy.Level = 2
	}

	return applyUserOverrides(strategy, userLevel, userThreads)
}
