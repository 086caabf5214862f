package tarengine

import (
	"context"
	"errors"
	"io"
)

// copyBufferSize balances context-cancellation responsiveness with
// throughput for large file bodies.
const copyBufferSize = 128 * 1024

// copyWithContext copies from src to dst while honoring context
// cancellation, checking ctx.Done() roughly every copyBufferSize bytes.
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) error {
	buf := make([]byte, copyBufferSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}
