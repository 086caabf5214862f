// Package fluxutil collects small formatting and filesystem helpers shared
// across the engine packages and the cmd/flux demonstration binary.
package fluxutil

import (
	"context"
	"io/fs"

	"github.com/dustin/go-humanize"
)

// FormatSize renders size as a human-readable binary-unit string (e.g.
// "1.5 MiB"), clamping negative sizes to zero rather than wrapping.
func FormatSize(size int64) string {
	return humanize.IBytes(SafeUint64(size))
}

// SafeUint64 converts n to uint64, clamping negative values to zero
// instead of wrapping to a huge unsigned value.
func SafeUint64(n int64) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}

// DirSize walks root and sums the size of every regular file beneath it,
// following neither symlinks nor counting directory entries.
func DirSize(ctx context.Context, fsys fs.FS, root string) (int64, error) {
	var total int64
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
		total += info.Size()
		return nil
	})
	return total, err
}
