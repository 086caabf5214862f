package tarengine

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/silvanwing/flux/core"
	"github.com/silvanwing/flux/internal/codec"
	"github.com/silvanwing/flux/internal/contracts"
)

// Extractor implements contracts.Extractor over a tar stream, optionally
// wrapped in one of the package codecs.
type Extractor struct {
	Algorithm core.Algorithm
}

var _ contracts.Extractor = (*Extractor)(nil)

// Entries returns a lazy, forward-only sequence of the archive's headers.
// It never reads entry bodies, only skips past them to reach the next
// header, so listing a large archive stays cheap.
func (e *Extractor) Entries(ctx context.Context, source io.ReaderAt, size int64) (contracts.EntrySeq, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sr := io.NewSectionReader(source, 0, size)
	rc, err := codec.OpenRead(e.Algorithm, sr)
	if err != nil {
		return nil, err
	}
	return &entrySeq{ctx: ctx, codecReader: rc, tr: tar.NewReader(rc)}, nil
}

type entrySeq struct {
	ctx         context.Context
	codecReader io.ReadCloser
	tr          *tar.Reader
}

func (s *entrySeq) Next() (core.Entry, bool, error) {
	if err := s.ctx.Err(); err != nil {
		return core.Entry{}, false, err
	}
	header, err := s.tr.Next()
	if errors.Is(err, io.EOF) {
		return core.Entry{}, false, nil
	}
	if err != nil {
		return core.Entry{}, false, fmt.Errorf("%w: read tar header: %v", core.ErrArchive, err)
	}
	return entryFromHeader(header), true, nil
}

func (s *entrySeq) Close() error {
	return s.codecReader.Close()
}

// entryFromHeader converts a tar.Header into the package's portable entry
// representation.
func entryFromHeader(header *tar.Header) core.Entry {
	isDir := header.Typeflag == tar.TypeDir
	isSymlink := header.Typeflag == tar.TypeSymlink

	mode := fs.FileMode(header.Mode & 0o777)
	if isDir {
		mode |= fs.ModeDir
	}
	if isSymlink {
		mode |= fs.ModeSymlink
	}

	return core.Entry{
		Path:           cleanEntryName(header.Name),
		Size:           header.Size,
		CompressedSize: 0,
		Mode:           mode,
		ModTime:        header.ModTime,
		IsDir:          isDir,
		IsSymlink:      isSymlink,
		LinkTarget:     header.Linkname,
		UID:            header.Uid,
		GID:            header.Gid,
	}
}

func cleanEntryName(name string) string {
	if name == "" {
		return name
	}
	// Tar directory entries conventionally keep a trailing slash; strip it
	// for the portable Entry representation, which signals directories via
	// IsDir instead.
	for len(name) > 1 && name[len(name)-1] == '/' {
		name = name[:len(name)-1]
	}
	return name
}
