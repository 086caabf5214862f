// Package format dispatches a filename to the archive format and codec it
// names, recognizing compound suffixes (tar.<codec>) before single ones.
package format

import (
	"fmt"
	"strings"

	"github.com/silvanwing/flux/core"
)

// Kind identifies a container format.
type Kind int

// Supported container kinds.
const (
	KindTar Kind = iota
	KindZip
	KindSevenZip
)

// String returns the kind's canonical lowercase name.
func (k Kind) String() string {
	switch k {
	case KindTar:
		return "tar"
	case KindZip:
		return "zip"
	case KindSevenZip:
		return "7z"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Resolved is the result of dispatching a filename.
type Resolved struct {
	Kind      Kind
	Algorithm core.Algorithm
}

// suffixTable pairs each recognized suffix with its resolved kind/codec.
// Order does not matter: Dispatch picks the longest matching suffix.
var suffixTable = []struct {
	suffix string
	result Resolved
}{
	{"tar.gz", Resolved{KindTar, core.Gzip}},
	{"tgz", Resolved{KindTar, core.Gzip}},
	{"tar.zst", Resolved{KindTar, core.Zstd}},
	{"tzst", Resolved{KindTar, core.Zstd}},
	{"tar.xz", Resolved{KindTar, core.Xz}},
	{"txz", Resolved{KindTar, core.Xz}},
	{"tar.br", Resolved{KindTar, core.Brotli}},
	{"tar", Resolved{KindTar, core.Store}},
	{"zip", Resolved{KindZip, core.Store}},
	{"7z", Resolved{KindSevenZip, core.Store}},
}

// Dispatch maps a filename's extension to its format and codec. The
// longest matching suffix wins, so "archive.tar.gz" resolves to the
// compound tar.gz entry rather than the bare "gz"/no suffix at all.
func Dispatch(name string) (Resolved, error) {
	lower := strings.ToLower(name)

	var best Resolved
	bestLen := -1
	for _, entry := range suffixTable {
		dotted := "." + entry.suffix
		if strings.HasSuffix(lower, dotted) && len(entry.suffix) > bestLen {
			best = entry.result
			bestLen = len(entry.suffix)
		}
	}
	if bestLen < 0 {
		return Resolved{}, fmt.Errorf("%w: %q has no recognized archive suffix", core.ErrUnsupportedFormat, name)
	}
	return best, nil
}

// SuffixFor returns the canonical output suffix (without leading dot) for
// packing with kind/algorithm, used when the target suffix can't be
// inferred from an explicit --format flag or output filename and must
// instead be chosen from the resolved codec.
func SuffixFor(kind Kind, algorithm core.Algorithm) string {
	if kind != KindTar {
		return kind.String()
	}
	switch algorithm {
	case core.Gzip:
		return "tar.gz"
	case core.Zstd:
		return "tar.zst"
	case core.Xz:
		return "tar.xz"
	case core.Brotli:
		return "tar.br"
	default:
		return "tar"
	}
}
