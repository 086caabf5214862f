package flux

import "github.com/silvanwing/flux/core"

// Type aliases re-exported from the core package, so callers building
// PackOptions/ExtractOptions/SecurityOptions values don't need a second
// import.
type (
	// Entry is the canonical in-memory description of one item in an
	// archive.
	Entry = core.Entry

	// CollisionMode controls how extraction handles a name that already
	// exists at the destination.
	CollisionMode = core.CollisionMode

	// ExtractOptions configures a single extract operation.
	ExtractOptions = core.ExtractOptions

	// PackMode selects whether a pack operation uses the smart strategy
	// or an explicit algorithm.
	PackMode = core.PackMode

	// PackOptions configures a single pack operation.
	PackOptions = core.PackOptions

	// Strategy is a fully-resolved compression decision.
	Strategy = core.Strategy

	// SecurityOptions bounds extraction to defend against path
	// traversal, decompression bombs, and disk exhaustion.
	SecurityOptions = core.SecurityOptions

	// SnapshotEntry is one row of a manifest.
	SnapshotEntry = core.SnapshotEntry

	// Manifest is a content-hashed snapshot of a directory tree.
	Manifest = core.Manifest

	// Diff is the result of comparing two manifests.
	Diff = core.Diff
)

const (
	CollisionSkip      = core.CollisionSkip
	CollisionOverwrite = core.CollisionOverwrite
	CollisionRename    = core.CollisionRename

	ModeSmart    = core.ModeSmart
	ModeExplicit = core.ModeExplicit
)

// DefaultExtractOptions returns the spec-mandated defaults: skip on
// collision, no stripping, no hoist, metadata preserved.
func DefaultExtractOptions() ExtractOptions {
	return core.DefaultExtractOptions()
}

// DefaultSecurityOptions returns the spec-mandated security defaults.
func DefaultSecurityOptions() SecurityOptions {
	return core.DefaultSecurityOptions()
}
