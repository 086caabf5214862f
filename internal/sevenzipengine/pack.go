package sevenzipengine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/silvanwing/flux/core"
)

// Pack always fails: 7z has no general-purpose Go encoder in the
// ecosystem, so this engine is read-only. Kept as a named function, rather
// than leaving the gap implicit, so callers see a deliberate, tested
// ErrUnsupportedOperation instead of a missing method.
func Pack(_ context.Context, _ string, _ io.Writer, _ core.Strategy) error {
	return fmt.Errorf("%w: packing .7z archives is not supported", core.ErrUnsupportedOperation)
}

const copyBufferSize = 128 * 1024

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
