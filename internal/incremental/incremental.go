// Package incremental composes manifest, tarengine, and codec into
// incremental and full directory backups driven by a prior snapshot.
package incremental

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/silvanwing/flux/core"
	"github.com/silvanwing/flux/internal/manifest"
	"github.com/silvanwing/flux/internal/tarengine"
)

// DefaultManifestSuffix is the suffix of sidecar manifest files:
// DefaultManifestPath appends it to an archive path, and Pack appends it to
// sourceDir when the caller passes an empty newManifestPath.
const DefaultManifestSuffix = ".manifest.json"

// Result reports what an incremental or full pack did.
type Result struct {
	Manifest     *core.Manifest
	ManifestPath string
	Diff         core.Diff
}

// Pack builds a fresh snapshot of sourceDir, diffs it against the manifest
// at oldManifestPath (if non-empty; a missing file there is an error), and
// writes a tar stream (wrapped in strategy's codec) to w containing only the
// added and modified entries from that diff. The fresh snapshot is saved to
// newManifestPath, or to sourceDir + DefaultManifestSuffix when that is
// empty. When oldManifestPath is empty, every entry is emitted —
// the full-backup variant — but a snapshot is still produced for the next
// incremental run. logger receives codec-level notices (e.g. XZ's
// forced-single-thread notice); a nil logger discards them.
func Pack(ctx context.Context, sourceDir string, w io.Writer, strategy core.Strategy, followSymlinks bool, oldManifestPath, newManifestPath string, logger *slog.Logger) (Result, error) {
	fresh, err := manifest.Build(ctx, sourceDir)
	if err != nil {
		return Result{}, err
	}

	var diff core.Diff
	var include func(relPath string) bool

	if oldManifestPath != "" {
		old, err := manifest.Load(oldManifestPath)
		if err != nil {
			return Result{}, err
		}
		diff = manifest.Diff(old, fresh)
		changed := make(map[string]struct{}, len(diff.Added)+len(diff.Modified))
		for _, p := range diff.Added {
			changed[p] = struct{}{}
		}
		for _, p := range diff.Modified {
			changed[p] = struct{}{}
		}
		include = func(relPath string) bool {
			_, ok := changed[relPath]
			return ok
		}
	}

	if err := tarengine.PackSelected(ctx, sourceDir, w, strategy, followSymlinks, include, logger); err != nil {
		return Result{}, err
	}

	if newManifestPath == "" {
		newManifestPath = sourceDir + DefaultManifestSuffix
	}
	if err := manifest.Save(fresh, newManifestPath); err != nil {
		return Result{}, err
	}

	return Result{Manifest: fresh, ManifestPath: newManifestPath, Diff: diff}, nil
}

// DefaultManifestPath derives the sidecar manifest path for archivePath
// using DefaultManifestSuffix.
func DefaultManifestPath(archivePath string) string {
	return archivePath + DefaultManifestSuffix
}

// LoadIfExists loads the manifest at path, returning (nil, nil) rather
// than an error when the file doesn't exist — the expected case for the
// very first incremental run against a target.
func LoadIfExists(path string) (*core.Manifest, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: stat %s: %v", core.ErrIO, path, err)
	}
	return manifest.Load(path)
}
