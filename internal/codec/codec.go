// Package codec adapts each supported compression algorithm to a pair of
// streaming io.Reader/io.Writer wrappers over an arbitrary underlying byte
// stream.
package codec

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/silvanwing/flux/core"
)

// OpenRead wraps r with a decompressing reader for algorithm. The returned
// ReadCloser's Close releases codec-internal resources; it does not close r.
func OpenRead(algorithm core.Algorithm, r io.Reader) (io.ReadCloser, error) {
	switch algorithm {
	case core.Store:
		return io.NopCloser(r), nil
	case core.Gzip:
		return openGzipRead(r)
	case core.Zstd:
		return openZstdRead(r)
	case core.Xz:
		return openXzRead(r)
	case core.Brotli:
		return io.NopCloser(openBrotliRead(r)), nil
	default:
		return nil, fmt.Errorf("%w: unknown codec %v", core.ErrCompression, algorithm)
	}
}

// OpenWrite wraps w with a compressing writer configured by strategy. The
// returned WriteCloser's Close flushes and finalizes the compressed
// stream; it does not close w. Callers must Close the returned writer
// before closing w. logger receives the one-time notice when strategy
// requests XZ with more than one thread; a nil logger discards it.
func OpenWrite(w io.Writer, strategy core.Strategy, logger *slog.Logger) (io.WriteCloser, error) {
	level := normalizeLevel(strategy.Level)
	switch strategy.Algorithm {
	case core.Store:
		return &storeWriter{w: w}, nil
	case core.Gzip:
		return openGzipWrite(w, level, strategy.Threads)
	case core.Zstd:
		return openZstdWrite(w, level, strategy.Threads, strategy.LongMode)
	case core.Xz:
		NoteForcedSingleThread(logger, strategy.Threads)
		return openXzWrite(w, level)
	case core.Brotli:
		return openBrotliWrite(w, level), nil
	default:
		return nil, fmt.Errorf("%w: unknown codec %v", core.ErrCompression, strategy.Algorithm)
	}
}

// normalizeLevel returns an engine-level (1..=9) value unchanged and
// replaces an out-of-range or unset one with core.DefaultLevel.
func normalizeLevel(level int) int {
	if level < 1 || level > 9 {
		return core.DefaultLevel
	}
	return level
}

// storeWriter is the identity codec: it copies bytes through unchanged.
type storeWriter struct {
	w io.Writer
}

func (s *storeWriter) Write(p []byte) (int, error) { return s.w.Write(p) }
func (s *storeWriter) Close() error                { return nil }
