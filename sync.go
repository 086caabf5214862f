package flux

import (
	"context"
	"io"

	"github.com/silvanwing/flux/internal/incremental"
)

// SyncResult reports what an incremental or full sync did: the fresh
// manifest, where it was saved, and the diff against the prior manifest
// (empty when this was a full backup).
type SyncResult = incremental.Result

// Sync packs sourceDir to w as a tar stream wrapped in strategy's codec,
// emitting only files added or modified since the manifest at
// oldManifestPath. A fresh manifest is built regardless and saved to
// newManifestPath (or, if empty, "<sourceDir>.manifest.json"). When
// oldManifestPath is empty, every file is emitted — a full backup — but a
// manifest is still produced so the next call can be incremental.
func (c *Client) Sync(ctx context.Context, sourceDir string, w io.Writer, strategy Strategy, followSymlinks bool, oldManifestPath, newManifestPath string) (SyncResult, error) {
	return incremental.Pack(ctx, sourceDir, w, strategy, followSymlinks, oldManifestPath, newManifestPath, c.logger)
}

// DefaultManifestPath derives the sidecar manifest path for archivePath.
func DefaultManifestPath(archivePath string) string {
	return incremental.DefaultManifestPath(archivePath)
}
