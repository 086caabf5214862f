// Package tarengine packs, extracts, and inspects POSIX tar containers,
// with an optional streaming codec layered on top.
package tarengine

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"runtime"

	"github.com/silvanwing/flux/core"
	"github.com/silvanwing/flux/internal/codec"
)

// Pack walks srcPath (a file or a directory tree) depth-first and writes a
// tar stream, wrapped in the codec strategy specifies, to w. The archive's
// entry names are rooted at srcPath's base name, so packing "src" produces
// entries "src", "src/a.txt", "src/b/c.txt" — the same names extraction
// reproduces on disk. logger receives codec-level notices (e.g. XZ's
// forced-single-thread notice); a nil logger discards them.
func Pack(ctx context.Context, srcPath string, w io.Writer, strategy core.Strategy, followSymlinks bool, logger *slog.Logger) error {
	return PackSelected(ctx, srcPath, w, strategy, followSymlinks, nil, logger)
}

// PackSelected behaves like Pack, but when include is non-nil, only entries
// whose path relative to srcPath (forward-slash separated, e.g. "sub/a.txt")
// satisfy include are written; the entry for srcPath itself is always
// written. This backs incremental packs, which emit only the
// added/modified set from a manifest diff; a nil include writes every
// entry, same as Pack.
func PackSelected(ctx context.Context, srcPath string, w io.Writer, strategy core.Strategy, followSymlinks bool, include func(relPath string) bool, logger *slog.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cw, err := codec.OpenWrite(w, strategy, logger)
	if err != nil {
		return err
	}

	tw := tar.NewWriter(cw)

	root := filepath.Dir(filepath.Clean(srcPath))
	start := filepath.Base(filepath.Clean(srcPath))
	fsys := newOSFS(root)

	walkErr := fs.WalkDir(fsys, start, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if include != nil && p != start {
			rel, relErr := filepath.Rel(start, p)
			if relErr != nil {
				return fmt.Errorf("%w: relativize %q: %v", core.ErrIO, p, relErr)
			}
			if !include(filepath.ToSlash(rel)) {
				return nil
			}
		}
		return addEntry(ctx, tw, fsys, p, d, followSymlinks)
	})
	if walkErr != nil {
		return fmt.Errorf("%w: walk %q: %v", core.ErrIO, srcPath, walkErr)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("%w: finish tar stream: %v", core.ErrArchive, err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("%w: finish compressed stream: %v", core.ErrCompression, err)
	}
	return nil
}

// addEntry writes one filesystem entry's header (and, for regular files,
// body) to tw. It prefers Lstat so symlinks are described as themselves
// rather than followed, unless followSymlinks is set.
func addEntry(ctx context.Context, tw *tar.Writer, fsys *osFS, name string, d fs.DirEntry, followSymlinks bool) error {
	info, err := fsys.Lstat(name)
	if err != nil {
		return fmt.Errorf("%w: lstat %s: %v", core.ErrIO, name, err)
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		if followSymlinks {
			target, err := fsys.Stat(name)
			if err != nil {
				return fmt.Errorf("%w: stat symlink target %s: %v", core.ErrIO, name, err)
			}
			return addFileEntry(ctx, tw, fsys, name, target)
		}
		return addSymlinkEntry(tw, fsys, name, info)
	}

	return addFileEntry(ctx, tw, fsys, name, info)
}

func addSymlinkEntry(tw *tar.Writer, fsys *osFS, name string, info fs.FileInfo) error {
	target, err := fsys.ReadLink(name)
	if err != nil {
		return fmt.Errorf("%w: readlink %s: %v", core.ErrIO, name, err)
	}

	header, err := tar.FileInfoHeader(info, target)
	if err != nil {
		return fmt.Errorf("%w: build header for %s: %v", core.ErrArchive, name, err)
	}
	header.Name = path.Clean(filepath.ToSlash(name))
	applyPosixMode(header, info)

	return tw.WriteHeader(header)
}

func addFileEntry(ctx context.Context, tw *tar.Writer, fsys *osFS, name string, info fs.FileInfo) error {
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("%w: build header for %s: %v", core.ErrArchive, name, err)
	}
	header.Name = path.Clean(filepath.ToSlash(name))
	if info.IsDir() && header.Name != "." {
		header.Name += "/"
	}
	applyPosixMode(header, info)

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("%w: write header for %s: %v", core.ErrArchive, name, err)
	}

	if !info.Mode().IsRegular() {
		return nil
	}
	f, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", core.ErrIO, name, err)
	}
	copyErr := copyWithContext(ctx, tw, f)
	closeErr := f.Close()
	if copyErr != nil {
		return fmt.Errorf("%w: copy %s: %v", core.ErrIO, name, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: close %s: %v", core.ErrIO, name, closeErr)
	}
	return nil
}

// applyPosixMode replaces the permission bits tar.FileInfoHeader derived
// from fi.Mode() with fixed defaults (0755 for directories, 0644 otherwise)
// on Windows, per the spec's "mode (POSIX platforms only)" field.
func applyPosixMode(header *tar.Header, info fs.FileInfo) {
	if runtime.GOOS == "windows" {
		if info.IsDir() {
			header.Mode = 0o755
		} else {
			header.Mode = 0o644
		}
	}
}
