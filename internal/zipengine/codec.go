package zipengine

import (
	"github.com/klauspost/compress/zip"
)

// zipMethodFor resolves the engine's 1..9 level scale to a zip storage
// method. Level 1 ("fastest") maps to Store, since the zip format's own
// Deflate method doesn't expose a tunable level through fastzip's
// method-selection API; every other level uses Deflate.
func zipMethodFor(level int) uint16 {
	if level <= 1 {
		return zip.Store
	}
	return zip.Deflate
}
