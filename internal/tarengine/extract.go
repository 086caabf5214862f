package tarengine

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/silvanwing/flux/core"
	"github.com/silvanwing/flux/internal/codec"
	"github.com/silvanwing/flux/internal/safepath"
)

// ExtractEntry performs no symlink-target or ratio/size security checks of
// its own; those are the SecureExtractor wrapper's responsibility, applied
// before delegating here. ExtractEntry only guarantees that destPath stays
// within destDir.

// ExtractEntry materializes a single archive entry under destDir.
//
// Tar streams are forward-only, so unlike the zip and 7z engines this
// reopens the codec reader and scans from the beginning of the stream to
// find entry.Path on every call. Callers extracting many entries from the
// same archive should prefer a whole-archive driver over repeated calls to
// this method; the tradeoff mirrors other formats in this repository whose
// reader re-parses the container on each lookup.
func (e *Extractor) ExtractEntry(ctx context.Context, source io.ReaderAt, size int64, entry core.Entry, destDir string, opts core.ExtractOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	relPath, skip := stripComponents(entry.Path, opts.StripComponents)
	if skip {
		return nil
	}

	destPath, err := safepath.SanitizePath(destDir, relPath)
	if err != nil {
		return err
	}

	sr := io.NewSectionReader(source, 0, size)
	rc, err := codec.OpenRead(e.Algorithm, sr)
	if err != nil {
		return err
	}
	defer rc.Close()

	tr := tar.NewReader(rc)
	wantName := path.Clean(filepath.ToSlash(entry.Path))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: entry %q not found in tar stream", core.ErrNotFound, entry.Path)
		}
		if err != nil {
			return fmt.Errorf("%w: read tar header: %v", core.ErrArchive, err)
		}
		if cleanEntryName(header.Name) != wantName {
			continue
		}
		return materialize(ctx, tr, header, destPath, opts)
	}
}

// stripComponents removes the first n slash-separated components of p. It
// reports skip=true when n consumes the whole path, leaving nothing to
// extract.
func stripComponents(p string, n int) (string, bool) {
	if n <= 0 {
		return p, false
	}
	parts := strings.Split(path.Clean(filepath.ToSlash(p)), "/")
	if n >= len(parts) {
		return "", true
	}
	return path.Join(parts[n:]...), false
}

func materialize(ctx context.Context, tr *tar.Reader, header *tar.Header, destPath string, opts core.ExtractOptions) error {
	switch header.Typeflag {
	case tar.TypeDir:
		return materializeDir(destPath, header, opts)
	case tar.TypeSymlink, tar.TypeLink:
		return materializeSymlink(destPath, header, opts)
	case tar.TypeReg, tar.TypeRegA:
		return materializeFile(ctx, tr, destPath, header, opts)
	default:
		return fmt.Errorf("%w: unsupported tar entry type %q for %s", core.ErrArchive, string(header.Typeflag), header.Name)
	}
}

func materializeDir(destPath string, header *tar.Header, opts core.ExtractOptions) error {
	if err := os.MkdirAll(destPath, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", core.ErrIO, destPath, err)
	}
	if opts.PreservePermissions {
		_ = os.Chmod(destPath, posixMode(header.Mode, true))
	}
	if opts.PreserveTimestamps {
		_ = os.Chtimes(destPath, header.ModTime, header.ModTime)
	}
	return nil
}

func materializeSymlink(destPath string, header *tar.Header, opts core.ExtractOptions) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", core.ErrIO, filepath.Dir(destPath), err)
	}

	finalPath, ok, err := resolveCollision(destPath, opts.Collision)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := os.Symlink(header.Linkname, finalPath); err != nil {
		return fmt.Errorf("%w: symlink %s -> %s: %v", core.ErrIO, finalPath, header.Linkname, err)
	}
	return nil
}

func materializeFile(ctx context.Context, tr *tar.Reader, destPath string, header *tar.Header, opts core.ExtractOptions) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", core.ErrIO, filepath.Dir(destPath), err)
	}

	finalPath, ok, err := resolveCollision(destPath, opts.Collision)
	if err != nil {
		return err
	}
	if !ok {
		// Collision resolved to "skip": still must drain the entry's body
		// from tr before the caller can continue reading the stream, but
		// since this is a single-entry extraction the reader is discarded
		// immediately afterward, so draining isn't necessary here.
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(finalPath), ".flux-extract-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file for %s: %v", core.ErrIO, finalPath, err)
	}
	tmpPath := tmp.Name()

	copyErr := copyWithContext(ctx, tmp, tr)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write %s: %v", core.ErrIO, finalPath, copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close %s: %v", core.ErrIO, finalPath, closeErr)
	}

	if opts.PreservePermissions {
		_ = os.Chmod(tmpPath, posixMode(header.Mode, false))
	}
	if opts.PreserveTimestamps {
		_ = os.Chtimes(tmpPath, header.ModTime, header.ModTime)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename into place %s: %v", core.ErrIO, finalPath, err)
	}
	return nil
}

// resolveCollision decides the path an entry should be written to given an
// existing file at destPath, per opts.Collision. ok=false means the
// caller should skip writing entirely.
func resolveCollision(destPath string, mode core.CollisionMode) (string, bool, error) {
	_, err := os.Lstat(destPath)
	if err != nil {
		if os.IsNotExist(err) {
			return destPath, true, nil
		}
		return "", false, fmt.Errorf("%w: stat %s: %v", core.ErrIO, destPath, err)
	}

	switch mode {
	case core.CollisionSkip:
		return "", false, nil
	case core.CollisionOverwrite:
		if err := os.RemoveAll(destPath); err != nil {
			return "", false, fmt.Errorf("%w: remove existing %s: %v", core.ErrIO, destPath, err)
		}
		return destPath, true, nil
	case core.CollisionRename:
		return nextAvailableName(destPath), true, nil
	default:
		return "", false, fmt.Errorf("%w: %s already exists", core.ErrFileExists, destPath)
	}
}

func nextAvailableName(destPath string) string {
	ext := filepath.Ext(destPath)
	base := strings.TrimSuffix(destPath, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// posixMode clears the write-protect-unfriendly bits tar may carry and
// applies a sane default when mode restoration is skipped on non-POSIX
// platforms.
func posixMode(tarMode int64, isDir bool) fs.FileMode {
	mode := fs.FileMode(tarMode & 0o777)
	if mode == 0 {
		if isDir {
			return 0o755
		}
		return 0o644
	}
	return mode
}
