package flux

import (
	"context"
	"io"
)

// Inspect lists every entry in the archive at source (size bytes long,
// named by sourceName for format dispatch) without extracting any file
// bodies.
func (c *Client) Inspect(ctx context.Context, source io.ReaderAt, size int64, sourceName string) ([]Entry, error) {
	engine, err := c.engineFor(sourceName)
	if err != nil {
		return nil, err
	}

	seq, err := engine.Entries(ctx, source, size)
	if err != nil {
		return nil, err
	}
	defer seq.Close()

	var entries []Entry
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, ok, err := seq.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
