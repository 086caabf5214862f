package flux

import "github.com/silvanwing/flux/core"

// Algorithm identifies a compression codec.
type Algorithm = core.Algorithm

// Supported compression algorithms.
const (
	Store  = core.Store
	Gzip   = core.Gzip
	Zstd   = core.Zstd
	Xz     = core.Xz
	Brotli = core.Brotli
)

// DefaultLevel is the engine-wide default compression level on the
// normalized 1..=9 scale.
const DefaultLevel = core.DefaultLevel
