package extractor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvanwing/flux/core"
	"github.com/silvanwing/flux/internal/contracts"
	"github.com/silvanwing/flux/internal/safepath"
)

// fakeExtractor is an in-memory contracts.Extractor for driver tests: its
// entries and per-entry behavior are fixed at construction, independent of
// source/size, so tests can focus on extractor.go's orchestration.
type fakeExtractor struct {
	entries    []core.Entry
	failOn     map[string]error
	extracted  []string
}

func (f *fakeExtractor) Entries(ctx context.Context, source io.ReaderAt, size int64) (contracts.EntrySeq, error) {
	return &fakeSeq{entries: f.entries}, nil
}

func (f *fakeExtractor) ExtractEntry(ctx context.Context, source io.ReaderAt, size int64, entry core.Entry, destDir string, opts core.ExtractOptions) error {
	if err, ok := f.failOn[entry.Path]; ok {
		return err
	}
	f.extracted = append(f.extracted, entry.Path)
	return nil
}

type fakeSeq struct {
	entries []core.Entry
	pos     int
}

func (s *fakeSeq) Next() (core.Entry, bool, error) {
	if s.pos >= len(s.entries) {
		return core.Entry{}, false, nil
	}
	e := s.entries[s.pos]
	s.pos++
	return e, true, nil
}

func (s *fakeSeq) Close() error { return nil }

func TestExtractArchiveSecure_AllSucceed(t *testing.T) {
	t.Parallel()
	fe := &fakeExtractor{entries: []core.Entry{
		{Path: "a.txt", Size: 10},
		{Path: "b.txt", Size: 20},
	}}

	source := bytes.NewReader([]byte("irrelevant"))
	security := core.DefaultSecurityOptions()
	security.CheckDiskSpace = false

	result, err := ExtractArchiveSecure(context.Background(), fe, safepath.NewAdapter(), source, int64(source.Len()), t.TempDir(), core.DefaultExtractOptions(), security, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Extracted)
	assert.Equal(t, 0, result.Failed)
}

func TestExtractArchiveSecure_PartialFailure(t *testing.T) {
	t.Parallel()
	fe := &fakeExtractor{
		entries: []core.Entry{
			{Path: "a.txt", Size: 10},
			{Path: "b.txt", Size: 20},
		},
		failOn: map[string]error{"a.txt": core.ErrIO},
	}

	source := bytes.NewReader([]byte("irrelevant"))
	security := core.DefaultSecurityOptions()
	security.CheckDiskSpace = false

	result, err := ExtractArchiveSecure(context.Background(), fe, safepath.NewAdapter(), source, int64(source.Len()), t.TempDir(), core.DefaultExtractOptions(), security, nil)
	require.Error(t, err)
	pf, ok := core.AsPartialFailure(err)
	require.True(t, ok)
	assert.Equal(t, 1, pf.Count)
	assert.Equal(t, 1, result.Extracted)
	assert.Equal(t, 1, result.Failed)
}

func TestExtractArchiveSecure_PathTraversalAborts(t *testing.T) {
	t.Parallel()
	fe := &fakeExtractor{entries: []core.Entry{
		{Path: "../escape.txt", Size: 10},
		{Path: "b.txt", Size: 20},
	}}

	source := bytes.NewReader([]byte("irrelevant"))
	security := core.DefaultSecurityOptions()
	security.CheckDiskSpace = false

	result, err := ExtractArchiveSecure(context.Background(), fe, safepath.NewAdapter(), source, int64(source.Len()), t.TempDir(), core.DefaultExtractOptions(), security, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidPath)
	assert.Equal(t, 0, result.Extracted)
	assert.Empty(t, fe.extracted)
}

func TestExtractArchiveSecure_ExtractionSizeCap(t *testing.T) {
	t.Parallel()
	fe := &fakeExtractor{entries: []core.Entry{
		{Path: "a.txt", Size: 1000},
		{Path: "b.txt", Size: 1000},
	}}

	source := bytes.NewReader([]byte("irrelevant"))
	security := core.DefaultSecurityOptions()
	security.CheckDiskSpace = false
	security.MaxExtractionSize = 1500

	_, err := ExtractArchiveSecure(context.Background(), fe, safepath.NewAdapter(), source, int64(source.Len()), t.TempDir(), core.DefaultExtractOptions(), security, nil)
	require.Error(t, err)
	assert.True(t, core.IsFatal(err))
}

func TestExtractArchiveSecure_ContextCancelled(t *testing.T) {
	t.Parallel()
	fe := &fakeExtractor{entries: []core.Entry{{Path: "a.txt", Size: 10}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := bytes.NewReader([]byte("irrelevant"))
	security := core.DefaultSecurityOptions()
	security.CheckDiskSpace = false

	_, err := ExtractArchiveSecure(ctx, fe, safepath.NewAdapter(), source, int64(source.Len()), t.TempDir(), core.DefaultExtractOptions(), security, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
