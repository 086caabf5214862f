package codec

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ulikunitz/xz"

	"github.com/silvanwing/flux/core"
)

// xzThreadWarnOnce ensures the informational notice about forced
// single-threaded XZ encoding is logged at most once per process, matching
// the spec's "one-time informational notice" requirement.
var xzThreadWarnOnce sync.Once

func openXzRead(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open xz stream: %v", core.ErrCompression, err)
	}
	return io.NopCloser(xr), nil
}

// openXzWrite returns an xz writer. The ulikunitz/xz encoder has no
// internal parallelism and is never handed more than one goroutine's
// worth of work here: multi-threaded XZ encoders are memory-unstable in
// this engine, so threads > 1 is always downgraded to 1, with a one-time
// informational log instead of a hard error.
func openXzWrite(w io.Writer, level int) (io.WriteCloser, error) {
	cfg := xz.WriterConfig{DictCap: xzDictCap(level)}
	if err := cfg.Verify(); err != nil {
		return nil, fmt.Errorf("%w: invalid xz config: %v", core.ErrCompression, err)
	}
	xw, err := cfg.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("%w: open xz writer: %v", core.ErrCompression, err)
	}
	return xw, nil
}

// NoteForcedSingleThread logs, at most once, that a caller's requested
// thread count was downgraded to 1 for XZ encoding.
func NoteForcedSingleThread(logger *slog.Logger, requested int) {
	if requested <= 1 || logger == nil {
		return
	}
	xzThreadWarnOnce.Do(func() {
		logger.Info("xz encoding is single-threaded in this engine; ignoring requested thread count",
			"requested_threads", requested)
	})
}
