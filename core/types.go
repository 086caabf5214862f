package core

import (
	"fmt"
	"io/fs"
	"time"
)

// Algorithm identifies a compression codec.
type Algorithm int

// Supported compression algorithms.
const (
	Store Algorithm = iota
	Gzip
	Zstd
	Xz
	Brotli
)

// String returns the algorithm's canonical lowercase name.
func (a Algorithm) String() string {
	switch a {
	case Store:
		return "store"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case Xz:
		return "xz"
	case Brotli:
		return "brotli"
	default:
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
}

// DefaultLevel is the engine-wide default compression level on the
// normalized 1..=9 scale.
const DefaultLevel = 3

// Entry is the canonical in-memory description of one item in an archive.
//
// Invariant: at most one of IsDir/IsSymlink is true. If IsSymlink,
// LinkTarget is required. If IsDir, Size is 0. Constructors that build an
// Entry from filesystem or archive-header data are responsible for
// upholding this; Entry itself performs no validation so it can be used as
// a plain data-transfer value.
type Entry struct {
	Path           string      `json:"path"`
	Size           int64       `json:"size"`
	CompressedSize int64       `json:"compressed_size,omitempty"` // 0 means unknown/not applicable
	Mode           fs.FileMode `json:"mode"`
	ModTime        time.Time   `json:"mtime"`
	IsDir          bool        `json:"is_dir,omitempty"`
	IsSymlink      bool        `json:"is_symlink,omitempty"`
	LinkTarget     string      `json:"link_target,omitempty"`
	UID            int         `json:"uid,omitempty"`
	GID            int         `json:"gid,omitempty"`
}

// Validate checks the Entry invariant described in the type's doc comment.
func (e Entry) Validate() error {
	if e.IsDir && e.IsSymlink {
		return fmt.Errorf("%w: entry %q cannot be both a directory and a symlink", ErrArchive, e.Path)
	}
	if e.IsSymlink && e.LinkTarget == "" {
		return fmt.Errorf("%w: symlink entry %q missing link target", ErrArchive, e.Path)
	}
	if e.IsDir && e.Size != 0 {
		return fmt.Errorf("%w: directory entry %q has nonzero size", ErrArchive, e.Path)
	}
	return nil
}

// CollisionMode controls how extraction handles a name that already exists
// at the destination.
type CollisionMode int

// Collision policies. CollisionSkip is the default.
const (
	CollisionSkip CollisionMode = iota
	CollisionOverwrite
	CollisionRename
)

// ExtractOptions configures a single extract operation.
type ExtractOptions struct {
	Collision           CollisionMode
	StripComponents     int
	Hoist               bool
	PreservePermissions bool
	PreserveTimestamps  bool
	FollowSymlinks      bool
}

// DefaultExtractOptions returns the spec-mandated defaults: skip on
// collision, no stripping, no hoist, metadata preserved.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		Collision:           CollisionSkip,
		PreservePermissions: true,
		PreserveTimestamps:  true,
	}
}

// PackMode selects whether a pack operation uses the smart strategy or an
// explicit algorithm.
type PackMode int

// Pack selection modes.
const (
	ModeSmart PackMode = iota
	ModeExplicit
)

// PackOptions configures a single pack operation. Incremental packing
// against a prior manifest is a distinct operation, not a PackOptions
// variant; see Client.Sync.
type PackOptions struct {
	Mode           PackMode
	Algorithm      Algorithm
	Level          int
	Threads        int
	ForceCompress  bool
	FollowSymlinks bool
}

// Strategy is a fully-resolved compression decision, produced either by the
// smart strategy or constructed directly from explicit PackOptions.
type Strategy struct {
	Algorithm     Algorithm
	Level         int
	Threads       int
	ForceCompress bool
	LongMode      bool
}

// SecurityOptions bounds extraction to defend against path traversal,
// decompression bombs, and disk exhaustion.
type SecurityOptions struct {
	MaxExtractionSize     int64
	MaxCompressionRatio    float64
	AllowExternalSymlinks bool
	CheckDiskSpace        bool
}

const (
	// DefaultMaxExtractionSize is the default cap on total extracted bytes (10 GiB).
	DefaultMaxExtractionSize int64 = 10 * 1 << 30
	// DefaultMaxCompressionRatio is the default cap on uncompressed/compressed size (100:1).
	DefaultMaxCompressionRatio float64 = 100
)

// DefaultSecurityOptions returns the spec-mandated defaults.
func DefaultSecurityOptions() SecurityOptions {
	return SecurityOptions{
		MaxExtractionSize:     DefaultMaxExtractionSize,
		MaxCompressionRatio:   DefaultMaxCompressionRatio,
		AllowExternalSymlinks: false,
		CheckDiskSpace:        true,
	}
}

// SnapshotEntry is one row of a manifest: a file's recorded size, content
// hash, and metadata at the time the snapshot was taken.
type SnapshotEntry struct {
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	Hash       string    `json:"hash"` // BLAKE3, hex; empty for dirs/symlinks
	ModTime    time.Time `json:"mtime"`
	Mode       fs.FileMode `json:"mode"`
	IsDir      bool      `json:"is_dir"`
	IsSymlink  bool      `json:"is_symlink"`
	LinkTarget string    `json:"link_target,omitempty"`
}

// ManifestVersion is the current manifest JSON schema version.
const ManifestVersion = 1

// Manifest is a content-hashed snapshot of a directory tree, persisted as
// JSON and used to compute incremental backup diffs.
type Manifest struct {
	Version   int                      `json:"version"`
	Created   time.Time                `json:"created"`
	BaseDir   string                   `json:"base_dir"`
	TotalSize int64                    `json:"total_size"`
	FileCount int                      `json:"file_count"`
	Files     map[string]SnapshotEntry `json:"files"`
}

// Diff is the result of comparing two manifests: the sets of relative
// paths added, modified, and deleted between them.
type Diff struct {
	Added    []string
	Modified []string
	Deleted  []string
}

// IsEmpty reports whether the diff contains no changes.
func (d Diff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Modified) == 0 && len(d.Deleted) == 0
}
