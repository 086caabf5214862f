// Package zipengine packs and extracts zip containers. Packing uses
// fastzip's parallel archiver; inspection and extraction use
// klauspost/compress's zip.Reader, which already gives O(1) random access to any
// entry via the archive's central directory — unlike a tar stream, a zip
// entry can be extracted on its own without rescanning the container.
package zipengine

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/saracen/fastzip"

	"github.com/silvanwing/flux/core"
)

// Pack walks srcPath and writes a zip archive to w. Zip has no native
// symlink-as-symlink representation that every extractor honors portably,
// so when followSymlinks is false, symlinks are skipped with their path
// recorded in the returned skipped slice rather than silently dropped.
func Pack(ctx context.Context, srcPath string, w io.Writer, level int, followSymlinks bool) (skipped []string, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := filepath.Dir(filepath.Clean(srcPath))
	start := filepath.Base(filepath.Clean(srcPath))

	entries := map[string]os.FileInfo{}
	walkErr := filepath.WalkDir(filepath.Join(root, start), func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			if followSymlinks {
				resolved, err := os.Stat(p)
				if err != nil {
					return fmt.Errorf("%w: resolve symlink %s: %v", core.ErrIO, p, err)
				}
				entries[p] = resolved
				return nil
			}
			skipped = append(skipped, filepath.ToSlash(rel))
			return nil
		}
		entries[p] = info
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("%w: walk %q: %v", core.ErrIO, srcPath, walkErr)
	}

	archiver, err := fastzip.NewArchiver(w, root,
		fastzip.WithArchiverConcurrency(archiverConcurrency()),
		fastzip.WithArchiverMethod(zipMethodFor(level)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: open zip archiver: %v", core.ErrArchive, err)
	}
	defer archiver.Close()

	if err := archiver.Archive(ctx, entries); err != nil {
		return nil, fmt.Errorf("%w: archive entries: %v", core.ErrArchive, err)
	}
	return skipped, nil
}

func archiverConcurrency() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}
