// Package manifest builds, persists, and diffs content-hashed snapshots of
// a directory tree, the basis for incremental backups.
package manifest

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/zeebo/blake3"

	"github.com/silvanwing/flux/core"
)

const hashChunkSize = 8 * 1024

// Build walks baseDir (without following symlinks) and produces a
// content-hashed snapshot. Directory and symlink entries carry an empty
// hash, matching Diff's treatment of hash comparison as file-content-only.
func Build(ctx context.Context, baseDir string) (*core.Manifest, error) {
	fsys := os.DirFS(baseDir)
	files := make(map[string]core.SnapshotEntry)
	var totalSize int64
	var fileCount int

	walkErr := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == "." {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		absPath := filepath.Join(baseDir, p)
		info, err := os.Lstat(absPath)
		if err != nil {
			return fmt.Errorf("%w: lstat %s: %v", core.ErrIO, absPath, err)
		}

		entry := core.SnapshotEntry{
			Path:    filepath.ToSlash(p),
			ModTime: info.ModTime(),
			Mode:    info.Mode(),
		}

		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			target, err := os.Readlink(absPath)
			if err != nil {
				return fmt.Errorf("%w: readlink %s: %v", core.ErrIO, absPath, err)
			}
			entry.IsSymlink = true
			entry.LinkTarget = target
		case info.IsDir():
			entry.IsDir = true
		default:
			hash, err := hashFile(ctx, absPath)
			if err != nil {
				return err
			}
			entry.Size = info.Size()
			entry.Hash = hash
			totalSize += info.Size()
			fileCount++
		}

		files[entry.Path] = entry
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("%w: build manifest for %s: %v", core.ErrIO, baseDir, walkErr)
	}

	return &core.Manifest{
		Version:   core.ManifestVersion,
		Created:   time.Now(),
		BaseDir:   baseDir,
		TotalSize: totalSize,
		FileCount: fileCount,
		Files:     files,
	}, nil
}

func hashFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", core.ErrIO, path, err)
	}
	defer f.Close()

	h := blake3.New()
	buf := make([]byte, hashChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, readErr := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return "", fmt.Errorf("%w: read %s: %v", core.ErrIO, path, readErr)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Save persists m as indented JSON at path, creating parent directories as
// needed. The write goes to a temp file in the same directory and is then
// renamed into place, so a crash mid-write can never leave a truncated or
// corrupt manifest at path for the next incremental run to load.
func Save(m *core.Manifest, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", core.ErrIO, dir, err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode manifest: %v", core.ErrOther, err)
	}

	tmp, err := os.CreateTemp(dir, ".flux-manifest-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file for %s: %v", core.ErrIO, path, err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	syncErr := tmp.Sync()
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: write %s: %v", core.ErrIO, path, writeErr)
	}
	if syncErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: sync %s: %v", core.ErrIO, path, syncErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: close %s: %v", core.ErrIO, path, closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: rename into place %s: %v", core.ErrIO, path, err)
	}
	return nil
}

// Load reads and validates a manifest from path, rejecting a version that
// doesn't match core.ManifestVersion rather than risk silently
// misinterpreting an incompatible schema.
func Load(path string) (*core.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", core.ErrIO, path, err)
	}
	var m core.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse manifest %s: %v", core.ErrOther, path, err)
	}
	if m.Version != core.ManifestVersion {
		return nil, fmt.Errorf("%w: manifest %s has version %d, expected %d", core.ErrConfig, path, m.Version, core.ManifestVersion)
	}
	return &m, nil
}

// Diff compares old against next, reporting paths added and modified in
// next, and paths present in old but absent from next. A file counts as
// modified when its content hash or modification time differs; directory
// and symlink entries carry no hash, so their mtime is load-bearing.
func Diff(old, next *core.Manifest) core.Diff {
	var diff core.Diff

	for p, entry := range next.Files {
		oldEntry, ok := old.Files[p]
		if !ok {
			diff.Added = append(diff.Added, p)
			continue
		}
		if entry.Hash != oldEntry.Hash || !entry.ModTime.Equal(oldEntry.ModTime) {
			diff.Modified = append(diff.Modified, p)
		}
	}
	for p := range old.Files {
		if _, ok := next.Files[p]; !ok {
			diff.Deleted = append(diff.Deleted, p)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Modified)
	sort.Strings(diff.Deleted)
	return diff
}
