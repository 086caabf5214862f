package codec

import (
	"io"

	"github.com/andybalholm/brotli"
)

func openBrotliRead(r io.Reader) io.Reader {
	return brotli.NewReader(r)
}

func openBrotliWrite(w io.Writer, level int) io.WriteCloser {
	return brotli.NewWriterLevel(w, brotliLevel(level))
}
