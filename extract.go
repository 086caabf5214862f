package flux

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/silvanwing/flux/core"
	"github.com/silvanwing/flux/internal/contracts"
	"github.com/silvanwing/flux/internal/extractor"
	"github.com/silvanwing/flux/internal/format"
	"github.com/silvanwing/flux/internal/sevenzipengine"
	"github.com/silvanwing/flux/internal/tarengine"
	"github.com/silvanwing/flux/internal/zipengine"
)

// ExtractResult summarizes a whole-archive extraction.
type ExtractResult = extractor.Result

// Extract materializes every entry of the archive at source (size bytes
// long, named by sourceName for format dispatch) into destDir (created if
// missing), honoring
// opts and the client's configured SecurityOptions. Path traversal,
// symlink escape, decompression-ratio, and cumulative-size violations
// abort immediately; any other per-entry failure is counted and
// extraction continues, surfacing as a *PartialFailureError once the
// archive is exhausted.
func (c *Client) Extract(ctx context.Context, source io.ReaderAt, size int64, sourceName, destDir string, opts ExtractOptions) (ExtractResult, error) {
	engine, err := c.engineFor(sourceName)
	if err != nil {
		return ExtractResult{}, err
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return ExtractResult{}, fmt.Errorf("%w: create destination %s: %v", core.ErrIO, destDir, err)
	}

	result, err := extractor.ExtractArchiveSecure(ctx, engine, c.validator, source, size, destDir, opts, c.security, c.logger)
	if opts.Hoist && result.Extracted > 0 {
		if _, partial := core.AsPartialFailure(err); err == nil || partial {
			hoistSingleTopLevelDir(c.logger, destDir)
		}
	}
	return result, err
}

// hoistSingleTopLevelDir flattens destDir when extraction produced exactly
// one top-level entry and that entry is a directory: its children move up
// into destDir and the now-empty directory is removed. A failure here is
// logged, not returned — the archive's contents are already safely on
// disk, and hoisting is a convenience on top of a completed extraction.
func hoistSingleTopLevelDir(logger *slog.Logger, destDir string) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		logger.Warn("hoist: read destination directory", "dir", destDir, "error", err)
		return
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return
	}

	topDir := filepath.Join(destDir, entries[0].Name())
	children, err := os.ReadDir(topDir)
	if err != nil {
		logger.Warn("hoist: read top-level directory", "dir", topDir, "error", err)
		return
	}

	for _, child := range children {
		oldPath := filepath.Join(topDir, child.Name())
		newPath := filepath.Join(destDir, child.Name())
		if err := os.Rename(oldPath, newPath); err != nil {
			logger.Warn("hoist: move entry into destination", "from", oldPath, "to", newPath, "error", err)
			return
		}
	}

	if err := os.Remove(topDir); err != nil {
		logger.Warn("hoist: remove emptied top-level directory", "dir", topDir, "error", err)
	}
}

// engineFor resolves the contracts.Extractor implementation for name's
// archive suffix.
func (c *Client) engineFor(name string) (contracts.Extractor, error) {
	resolved, err := format.Dispatch(name)
	if err != nil {
		return nil, err
	}
	switch resolved.Kind {
	case format.KindTar:
		return &tarengine.Extractor{Algorithm: resolved.Algorithm}, nil
	case format.KindZip:
		return &zipengine.Extractor{}, nil
	case format.KindSevenZip:
		return &sevenzipengine.Extractor{}, nil
	default:
		return nil, fmt.Errorf("%w: unrecognized format kind for %q", core.ErrUnsupportedFormat, name)
	}
}
