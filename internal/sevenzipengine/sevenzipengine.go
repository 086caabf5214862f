// Package sevenzipengine inspects and extracts 7z containers via
// bodgit/sevenzip. The 7z format's LZMA/LZMA2/PPMd/BCJ filter graph has no
// general-purpose writer in the Go ecosystem, so this engine is
// extract-only: this package's Pack, which Client.Pack calls for a .7z
// target, returns core.ErrUnsupportedOperation.
package sevenzipengine

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"

	"github.com/silvanwing/flux/core"
	"github.com/silvanwing/flux/internal/contracts"
	"github.com/silvanwing/flux/internal/safepath"
)

// Extractor implements contracts.Extractor for 7z archives.
type Extractor struct{}

var _ contracts.Extractor = (*Extractor)(nil)

// Entries lists every entry recorded in the 7z archive's header. Like zip,
// 7z stores its directory up front, so this is true random-access
// metadata, not a forward scan.
func (e *Extractor) Entries(ctx context.Context, source io.ReaderAt, size int64) (contracts.EntrySeq, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := sevenzip.NewReader(source, size)
	if err != nil {
		return nil, fmt.Errorf("%w: open 7z header: %v", core.ErrArchive, err)
	}
	return &entrySeq{ctx: ctx, files: r.File}, nil
}

type entrySeq struct {
	ctx   context.Context
	files []*sevenzip.File
	pos   int
}

func (s *entrySeq) Next() (core.Entry, bool, error) {
	if err := s.ctx.Err(); err != nil {
		return core.Entry{}, false, err
	}
	if s.pos >= len(s.files) {
		return core.Entry{}, false, nil
	}
	f := s.files[s.pos]
	s.pos++
	return entryFromFile(f), true, nil
}

func (s *entrySeq) Close() error { return nil }

func entryFromFile(f *sevenzip.File) core.Entry {
	info := f.FileInfo()
	mode := info.Mode()
	return core.Entry{
		Path:      f.Name,
		Size:      info.Size(),
		Mode:      mode,
		ModTime:   info.ModTime(),
		IsDir:     info.IsDir(),
		IsSymlink: mode&fs.ModeSymlink != 0,
	}
}

// ExtractEntry materializes one 7z entry into destDir, looked up directly
// by name in the archive's parsed header.
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

	r, err := sevenzip.NewReader(source, size)
	if err != nil {
		return fmt.Errorf("%w: open 7z header: %v", core.ErrArchive, err)
	}

	wantName := path.Clean(filepath.ToSlash(entry.Path))
	var f *sevenzip.File
	for _, candidate := range r.File {
		if path.Clean(filepath.ToSlash(candidate.Name)) == wantName {
			f = candidate
			break
		}
	}
	if f == nil {
		return fmt.Errorf("%w: entry %q not found in 7z archive", core.ErrNotFound, entry.Path)
	}

	info := f.FileInfo()
	switch {
	case info.IsDir():
		return materializeDir(destPath, info, opts)
	case info.Mode()&fs.ModeSymlink != 0:
		return materializeSymlink(destPath, f, opts)
	default:
		return materializeFile(ctx, destPath, f, info, opts)
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

func materializeDir(destPath string, info fs.FileInfo, opts core.ExtractOptions) error {
	if err := os.MkdirAll(destPath, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", core.ErrIO, destPath, err)
	}
	if opts.PreservePermissions {
		_ = os.Chmod(destPath, info.Mode().Perm())
	}
	if opts.PreserveTimestamps {
		_ = os.Chtimes(destPath, info.ModTime(), info.ModTime())
	}
	return nil
}

func materializeSymlink(destPath string, f *sevenzip.File, opts core.ExtractOptions) error {
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

func materializeFile(ctx context.Context, destPath string, f *sevenzip.File, info fs.FileInfo, opts core.ExtractOptions) error {
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

	copyErr := copyWithContext(ctx, tmp, rc)
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
		_ = os.Chmod(tmpPath, info.Mode().Perm())
	}
	if opts.PreserveTimestamps {
		_ = os.Chtimes(tmpPath, info.ModTime(), info.ModTime())
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
