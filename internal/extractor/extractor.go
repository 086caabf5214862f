// Package extractor wraps any format engine's contracts.Extractor with the
// security checks a production extraction needs: path sanitization,
// symlink containment, decompression-ratio and extraction-size bombs, and
// a disk-space precheck. Composition over the per-format engines, rather
// than each engine re-implementing the checks, keeps the defense logic in
// one place.
package extractor

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/silvanwing/flux/core"
	"github.com/silvanwing/flux/internal/contracts"
)

// SecureExtractor decorates a contracts.Extractor, validating every entry
// before delegating materialization to the wrapped engine.
type SecureExtractor struct {
	Inner     contracts.Extractor
	Validator contracts.PathValidator
	Security  core.SecurityOptions
}

var _ contracts.Extractor = (*SecureExtractor)(nil)

// Entries delegates directly; listing metadata carries no extraction risk
// on its own.
func (s *SecureExtractor) Entries(ctx context.Context, source io.ReaderAt, size int64) (contracts.EntrySeq, error) {
	return s.Inner.Entries(ctx, source, size)
}

// ExtractEntry validates entry.Path, for symlinks entry.LinkTarget, and,
// when entry.CompressedSize is known (> 0), the entry's compression ratio,
// before delegating to the wrapped engine. Cumulative-size enforcement
// happens in the whole-archive driver (ExtractArchiveSecure), which is the
// only place a running total is available.
func (s *SecureExtractor) ExtractEntry(ctx context.Context, source io.ReaderAt, size int64, entry core.Entry, destDir string, opts core.ExtractOptions) error {
	if err := s.Validator.ValidatePath(entry.Path); err != nil {
		return err
	}
	if entry.IsSymlink {
		if err := s.Validator.ValidateSymlink(destDir, entry.Path, entry.LinkTarget, s.Security.AllowExternalSymlinks); err != nil {
			return err
		}
	}
	if entry.CompressedSize > 0 {
		if err := s.Validator.CheckCompressionRatio(entry.CompressedSize, entry.Size, s.Security.MaxCompressionRatio); err != nil {
			return err
		}
	}
	return s.Inner.ExtractEntry(ctx, source, size, entry, destDir, opts)
}

// Result summarizes a whole-archive extraction.
type Result struct {
	Extracted int
	Failed    int
}

// ExtractArchiveSecure drives a full archive extraction through a
// SecureExtractor: a disk-space precheck (one entries pass to sum sizes),
// then a second pass materializing every entry while enforcing the
// running extraction-size cap. A security failure (path traversal,
// decompression bomb, disk exhaustion, or a cancelled context) aborts
// immediately; any other per-entry failure is logged, counted, and
// extraction continues, surfacing as a *core.PartialFailureError once the
// archive is exhausted. A nil logger discards per-entry failure notices.
func ExtractArchiveSecure(ctx context.Context, inner contracts.Extractor, validator contracts.PathValidator, source io.ReaderAt, size int64, destDir string, opts core.ExtractOptions, security core.SecurityOptions, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	secure := &SecureExtractor{Inner: inner, Validator: validator, Security: security}

	if security.CheckDiskSpace {
		total, err := sumEntrySizes(ctx, inner, source, size)
		if err != nil {
			return Result{}, err
		}
		if err := validator.CheckDiskSpace(destDir, total); err != nil {
			return Result{}, err
		}
	}

	seq, err := inner.Entries(ctx, source, size)
	if err != nil {
		return Result{}, err
	}
	defer seq.Close()

	var result Result
	var runningTotal int64
	maxTotal := security.MaxExtractionSize

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		entry, ok, err := seq.Next()
		if err != nil {
			return result, err
		}
		if !ok {
			break
		}

		if maxTotal > 0 && !entry.IsDir {
			if err := validator.CheckExtractionSize(runningTotal, entry.Size, maxTotal); err != nil {
				return result, err
			}
			runningTotal += entry.Size
		}

		if err := secure.ExtractEntry(ctx, source, size, entry, destDir, opts); err != nil {
			if core.IsFatal(err) {
				return result, err
			}
			result.Failed++
			logger.Warn("entry extraction failed", "path", entry.Path, "error", err)
			continue
		}
		result.Extracted++
	}

	if result.Failed > 0 {
		return result, &core.PartialFailureError{Count: result.Failed}
	}
	return result, nil
}

// sumEntrySizes makes one pass over the archive's metadata to total the
// uncompressed bytes a full extraction would write, used for the
// disk-space precheck before any entry is materialized.
func sumEntrySizes(ctx context.Context, inner contracts.Extractor, source io.ReaderAt, size int64) (int64, error) {
	seq, err := inner.Entries(ctx, source, size)
	if err != nil {
		return 0, err
	}
	defer seq.Close()

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		entry, ok, err := seq.Next()
		if err != nil {
			return 0, fmt.Errorf("%w: sum entry sizes: %v", core.ErrArchive, err)
		}
		if !ok {
			break
		}
		if !entry.IsDir {
			total += entry.Size
		}
	}
	return total, nil
}
