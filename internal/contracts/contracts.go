// Package contracts defines internal interfaces shared across flux's format
// engines. These interfaces are intentionally internal to avoid exposing
// implementation contracts as part of the public API.
package contracts

import (
	"context"
	"io"

	"github.com/silvanwing/flux/core"
)

// Extractor is the polymorphic capability every archive format engine
// implements: a lazy sequence of entry metadata, and a way to materialize
// one entry at a time. Adding a format means adding an implementation of
// this interface, not a new branch in a type switch.
type Extractor interface {
	// Entries returns a finite, once-consumable sequence of archive entries
	// read from source's headers. Reading metadata must not require
	// reading file bodies.
	Entries(ctx context.Context, source io.ReaderAt, size int64) (EntrySeq, error)

	// ExtractEntry materializes one entry into destDir, honoring opts.
	ExtractEntry(ctx context.Context, source io.ReaderAt, size int64, entry core.Entry, destDir string, opts core.ExtractOptions) error
}

// EntrySeq is a finite, consumable-once sequence of archive entries.
// Implementations read directly from the underlying format's headers.
type EntrySeq interface {
	// Next returns the next entry, or false when the sequence is exhausted.
	// An error aborts iteration.
	Next() (core.Entry, bool, error)
	// Close releases any resources held by the sequence.
	Close() error
}

// PathValidator validates untrusted archive-entry paths and symlink
// targets before they are materialized on disk.
type PathValidator interface {
	// ValidatePath checks that path contains no traversal, absolute root,
	// or drive-prefix components.
	ValidatePath(path string) error

	// ValidateSymlink checks that a symlink at linkPath pointing at target
	// resolves to a location within destDir, unless allowExternal is set.
	ValidateSymlink(destDir, linkPath, target string, allowExternal bool) error

	// CheckCompressionRatio fails when uncompressed/compressed exceeds maxRatio.
	CheckCompressionRatio(compressed, uncompressed int64, maxRatio float64) error

	// CheckExtractionSize fails when the saturating sum of runningTotal and
	// entrySize exceeds maxTotal.
	CheckExtractionSize(runningTotal, entrySize, maxTotal int64) error

	// CheckDiskSpace fails when the filesystem containing path has less
	// than required bytes free.
	CheckDiskSpace(path string, required int64) error
}
