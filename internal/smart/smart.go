// Package smart chooses a compression strategy for a file or directory
// from its name, size, and content, rather than requiring the caller to
// pick an algorithm and level by hand.
package smart

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/silvanwing/flux/core"
)

// Size thresholds and entropy parameters for the rule ladder.
const (
	largeFileThreshold  = 100 * 1024 * 1024
	veryLargeMultiplier = 10
	mediumFileThreshold = 1 * 1024 * 1024
	smallFileThreshold  = 1024

	highEntropyThreshold = 7.5
	entropySampleSize    = 16 * 1024
)

// compressedExtensions are formats that are already entropy-saturated;
// compressing them again wastes CPU for no size benefit.
var compressedExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {}, "avif": {}, "heic": {}, "heif": {},
	"mp4": {}, "avi": {}, "mkv": {}, "mov": {}, "webm": {}, "flv": {},
	"mp3": {}, "aac": {}, "flac": {}, "ogg": {}, "opus": {}, "m4a": {}, "wma": {},
	"zip": {}, "rar": {}, "7z": {}, "gz": {}, "bz2": {}, "xz": {}, "zst": {}, "lz4": {},
	"dmg": {}, "iso": {}, "img": {},
	"pdf": {}, "epub": {}, "mobi": {},
	"apk": {}, "ipa": {}, "deb": {}, "rpm": {}, "msi": {}, "exe": {},
}

// textExtensions compress well and benefit from a higher level and more
// threads, since zstd/brotli throughput on text is high enough to afford it.
var textExtensions = map[string]struct{}{
	"txt": {}, "log": {}, "json": {}, "xml": {}, "yaml": {}, "yml": {}, "toml": {}, "ini": {}, "cfg": {}, "conf": {}, "md": {}, "rst": {}, "tex": {}, "org": {}, "adoc": {},
	"html": {}, "htm": {}, "css": {}, "js": {}, "ts": {}, "jsx": {}, "tsx": {},
	"py": {}, "rs": {}, "go": {}, "c": {}, "cpp": {}, "h": {}, "hpp": {}, "java": {}, "kt": {}, "swift": {},
	"sh": {}, "bash": {}, "zsh": {}, "fish": {}, "ps1": {}, "bat": {}, "cmd": {},
	"sql": {}, "csv": {}, "tsv": {},
}

// Rule is a user-configured override applied before any built-in rule,
// matched by a shell-style glob against the file's base name.
type Rule struct {
	Name      string
	Patterns  []string
	MinSize   int64 // 0 means unset
	MaxSize   int64 // 0 means unset
	Algorithm core.Algorithm
	Level     int
	Threads   int
	Priority  int
}

// FileInfo is the subset of file metadata the rule ladder needs, decoupled
// from fs.FileInfo so callers can supply it from an archive entry instead
// of a live filesystem stat when deciding strategy for re-compression.
type FileInfo struct {
	Path string
	Size int64
}

// Choose resolves a compression strategy for a single file, applying
// custom rules first (highest priority, sorted descending), then the
// built-in ladder: known text extensions, known compressed extensions, a
// content-entropy probe for unrecognized extensions, then size-tiered
// defaults. Either of level/threads being non-zero overrides whatever the
// matched rule would otherwise choose.
func Choose(info FileInfo, rules []Rule, userLevel, userThreads int, opener func() ([]byte, error)) core.Strategy {
	if strategy, ok := applyCustomRules(info, rules); ok {
		return applyUserOverrides(strategy, userLevel, userThreads)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(info.Path), "."))

	if _, isText := textExtensions[ext]; isText {
		strategy := core.Strategy{
			Algorithm: core.Zstd,
			Level:     6,
			Threads:   max(runtime.NumCPU(), 4),
		}
		return applyUserOverrides(strategy, userLevel, userThreads)
	}

	if _, isCompressed := compressedExtensions[ext]; isCompressed {
		return applyUserOverrides(core.Strategy{Algorithm: core.Store, Threads: 1}, userLevel, userThreads)
	}

	if opener != nil && info.Size >= smallFileThreshold {
		if sample, err := readSample(opener); err == nil {
			if calculateEntropy(sample) > highEntropyThreshold {
				return applyUserOverrides(core.Strategy{Algorithm: core.Store, Threads: 1}, userLevel, userThreads)
			}
		}
	}

	return applyUserOverrides(chooseBySize(info.Size), userLevel, userThreads)
}

func chooseBySize(size int64) core.Strategy {
	switch {
	case size > largeFileThreshold*veryLargeMultiplier:
		return core.Strategy{Algorithm: core.Zstd, Level: 3, Threads: 2, LongMode: true}
	case size > largeFileThreshold:
		return core.Strategy{Algorithm: core.Xz, Level: 2, Threads: 1}
	case size > mediumFileThreshold:
		return core.Strategy{Algorithm: core.Zstd, Level: core.DefaultLevel, Threads: max(runtime.NumCPU()/2, 2)}
	default:
		// Small files default to zstd at the base level; callers that batch
		// many small files into one tar entry before compressing get the
		// benefit of shared dictionary context across files for free,
		// since the strategy applies to the whole tar stream in that case.
		return core.Strategy{Algorithm: core.Zstd, Level: core.DefaultLevel, Threads: 1}
	}
}

func applyUserOverrides(strategy core.Strategy, userLevel, userThreads int) core.Strategy {
	if userLevel != 0 {
		strategy.Level = userLevel
	}
	if userThreads != 0 {
		strategy.Threads = userThreads
	}
	return AdjustThreadsForAlgorithm(strategy)
}

// AdjustThreadsForAlgorithm re-derives the thread count for strategy's
// algorithm, per-codec: xz is always single-threaded for memory stability,
// zstd caps at four threads in long mode, brotli always caps at four, gzip caps at
// two threads (pgzip's useful ceiling for typical archive sizes), and
// store ignores threading entirely.
func AdjustThreadsForAlgorithm(strategy core.Strategy) core.Strategy {
	switch strategy.Algorithm {
	case core.Xz:
		strategy.Threads = 1
	case core.Zstd:
		if strategy.LongMode && strategy.Threads > 4 {
			strategy.Threads = 4
		}
	case core.Brotli:
		if strategy.Threads > 4 {
			strategy.Threads = 4
		}
	case core.Gzip:
		if strategy.Threads > 2 {
			strategy.Threads = 2
		}
	case core.Store:
		strategy.Threads = 1
	}
	if strategy.Threads < 1 {
		strategy.Threads = 1
	}
	return strategy
}

func readSample(opener func() ([]byte, error)) ([]byte, error) {
	data, err := opener()
	if err != nil {
		return nil, err
	}
	if len(data) > entropySampleSize {
		data = data[:entropySampleSize]
	}
	return data, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

