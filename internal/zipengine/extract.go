package zipengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/silvanwing/flux/core"
	"github.com/silvanwing/flux/internal/safepath"
)

// ExtractEntry materializes one zip entry into destDir. Unlike tarengine,
// this looks the entry up directly in the central directory instead of
// scanning the stream, so repeated calls against the same archive stay
// cheap.
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

	zr, err := zip.NewReader(source, size)
	if err != nil {
		return fmt.Errorf("%w: open zip central directory: %v", core.ErrArchive, err)
	}

	wantName := path.Clean(filepath.ToSlash(entry.Path))
	var f *zip.File
	for _, candidate := range zr.File {
		if path.Clean(filepath.ToSlash(candidate.Name)) == wantName {
			f = candidate
			break
		}
	}
	if f == nil {
		return fmt.Errorf("%w: entry %q not found in zip archive", core.ErrNotFound, entry.Path)
	}

	mode := f.Mode()
	switch {
	case mode.IsDir():
		return materializeDir(destPath, f, opts)
	case mode&fs.ModeSymlink != 0:
		return materializeSymlink(destPath, f, opts)
	default:
		return materializeFile(ctx, destPath, f, opts)
	}
}

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

func materializeDir(destPath string, f *zip.File, opts core.ExtractOptions) error {
	if err := os.MkdirAll(destPath, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", core.ErrIO, destPath, err)
	}
	if opts.PreservePermissions {
		_ = os.Chmod(destPath, f.Mode().Perm())
	}
	if opts.PreserveTimestamps {
		_ = os.Chtimes(destPath, f.Modified, f.Modified)
	}
	return nil
}

func materializeSymlink(destPath string, f *zip.File, opts core.ExtractOptions) error {
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

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: open symlink entry %s: %v", core.ErrArchive, f.Name, err)
	}
	target, err := io.ReadAll(rc)
	closeErr := rc.Close()
	if err != nil {
		return fmt.Errorf("%w: read symlink target %s: %v", core.ErrArchive, f.Name, err)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: close symlink entry %s: %v", core.ErrArchive, f.Name, closeErr)
	}

	if err := os.Symlink(string(target), finalPath); err != nil {
		return fmt.Errorf("%w: symlink %s -> %s: %v", core.ErrIO, finalPath, string(target), err)
	}
	return nil
}

func materializeFile(ctx context.Context, destPath string, f *zip.File, opts core.ExtractOptions) error {
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

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: open entry %s: %v", core.ErrArchive, f.Name, err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(filepath.Dir(finalPath), ".flux-extract-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file for %s: %v", core.ErrIO, finalPath, err)
	}
	tmpPath := tmp.Name()

	_, copyErr := copyWithContext(ctx, tmp, rc)
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
		_ = os.Chmod(tmpPath, f.Mode().Perm())
	}
	if opts.PreserveTimestamps {
		_ = os.Chtimes(tmpPath, f.Modified, f.Modified)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename into place %s: %v", core.ErrIO, finalPath, err)
	}
	return nil
}

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

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	const bufSize = 128 * 1024
	buf := make([]byte, bufSize)
	var total int64
	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			written, writeErr := dst.Write(buf[:n])
			total += int64(written)
			if writeErr != nil {
				return total, writeErr
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return total, nil
			}
			return total, readErr
		}
	}
}
