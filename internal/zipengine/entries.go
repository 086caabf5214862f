package zipengine

import (
	"context"
	"fmt"
	"io"
	"io/fs"

	"github.com/klauspost/compress/zip"

	"github.com/silvanwing/flux/core"
	"github.com/silvanwing/flux/internal/contracts"
)

// Extractor implements contracts.Extractor over a zip container, backed by
// the archive's central directory for true random-access entry lookup.
type Extractor struct{}

var _ contracts.Extractor = (*Extractor)(nil)

// Entries returns every entry recorded in the zip's central directory.
// Unlike tarengine, this never has to scan entry bodies, even lazily —
// the whole list is available the moment the central directory is parsed.
func (e *Extractor) Entries(ctx context.Context, source io.ReaderAt, size int64) (contracts.EntrySeq, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(source, size)
	if err != nil {
		return nil, fmt.Errorf("%w: open zip central directory: %v", core.ErrArchive, err)
	}
	return &entrySeq{ctx: ctx, files: zr.File}, nil
}

type entrySeq struct {
	ctx   context.Context
	files []*zip.File
	pos   int
}

func (s *entrySeq) Next() (core.Entry, bool, error) {
	if err := s.ctx.Err(); err != nil {
		return core.Entry{}, false, err
	}
	if s.pos >= len(s.files) {
		return core.Entry{}, false, nil
	}
	f := s.files[s.pos]
	s.pos++
	return entryFromFile(f), true, nil
}

func (s *entrySeq) Close() error {
	return nil
}

func entryFromFile(f *zip.File) core.Entry {
	mode := f.Mode()
	isSymlink := mode&fs.ModeSymlink != 0
	isDir := mode.IsDir()

	return core.Entry{
		Path:           f.Name,
		Size:           int64(f.UncompressedSize64),
		CompressedSize: int64(f.CompressedSize64),
		Mode:           mode,
		ModTime:        f.Modified,
		IsDir:          isDir,
		IsSymlink:      isSymlink,
	}
}
