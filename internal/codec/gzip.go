package codec

import (
	"fmt"
	"io"

	kgzip "github.com/klauspost/compress/gzip"
	"github.com/klauspost/pgzip"

	"github.com/silvanwing/flux/core"
)

// openGzipRead wraps r with a gzip decompressor. klauspost/compress/gzip
// decodes both single- and multi-threaded (pgzip) output transparently,
// since pgzip writes a standard concatenated-gzip-member stream.
func openGzipRead(r io.Reader) (io.ReadCloser, error) {
	zr, err := kgzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open gzip stream: %v", core.ErrCompression, err)
	}
	return zr, nil
}

// openGzipWrite returns a gzip writer. Per the codec layer's thread
// adjustment (min(configured, 2)), threads > 1 switches to pgzip's
// block-parallel writer; otherwise a single-threaded klauspost/compress
// writer is used.
func openGzipWrite(w io.Writer, level, threads int) (io.WriteCloser, error) {
	threads = gzipThreads(threads)
	if threads <= 1 {
		zw, err := kgzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, fmt.Errorf("%w: open gzip writer: %v", core.ErrCompression, err)
		}
		return zw, nil
	}

	zw, err := pgzip.NewWriterLevel(w, level)
	if err != nil {
		return nil, fmt.Errorf("%w: open pgzip writer: %v", core.ErrCompression, err)
	}
	if err := zw.SetConcurrency(1<<20, threads); err != nil {
		return nil, fmt.Errorf("%w: configure pgzip concurrency: %v", core.ErrCompression, err)
	}
	return zw, nil
}

// gzipThreads applies the gzip thread-adjustment rule: min(configured, 2).
func gzipThreads(threads int) int {
	if threads < 1 {
		return 1
	}
	if threads > 2 {
		return 2
	}
	return threads
}
