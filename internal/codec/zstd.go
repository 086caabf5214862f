package codec

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/silvanwing/flux/core"
)

// zstdLongWindowSize is the window size used for zstd's long-range mode,
// large enough to cover the > ~1 GiB size tier the smart strategy targets.
const zstdLongWindowSize = 128 << 20

func openZstdRead(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open zstd stream: %v", core.ErrCompression, err)
	}
	return dec.IOReadCloser(), nil
}

func openZstdWrite(w io.Writer, level, threads int, longMode bool) (io.WriteCloser, error) {
	opts := []zstd.EOption{
		zstd.WithEncoderLevel(zstdEncoderLevel(level)),
		zstd.WithEncoderConcurrency(zstdThreads(threads, longMode)),
	}
	if longMode {
		opts = append(opts, zstd.WithWindowSize(zstdLongWindowSize))
	}

	enc, err := zstd.NewWriter(w, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: open zstd writer: %v", core.ErrCompression, err)
	}
	return enc, nil
}

// zstdEncoderLevel maps the engine's 1..=9 ordinal onto zstd's four-tier
// EncoderLevel, per the codec layer's documented level-mapping policy.
func zstdEncoderLevel(level int) zstd.EncoderLevel {
	switch {
	case level <= 2:
		return zstd.SpeedFastest
	case level <= 5:
		return zstd.SpeedDefault
	case level <= 7:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// zstdThreads applies the zstd thread-adjustment rule: long mode caps
// concurrency at 4 regardless of the requested thread count.
func zstdThreads(threads int, longMode bool) int {
	if threads < 1 {
		threads = 1
	}
	if longMode && threads > 4 {
		return 4
	}
	return threads
}
