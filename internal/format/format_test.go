package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvanwing/flux/core"
)

func TestDispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want Resolved
	}{
		{"archive.tar", Resolved{KindTar, core.Store}},
		{"archive.tar.gz", Resolved{KindTar, core.Gzip}},
		{"archive.tgz", Resolved{KindTar, core.Gzip}},
		{"archive.tar.zst", Resolved{KindTar, core.Zstd}},
		{"archive.tzst", Resolved{KindTar, core.Zstd}},
		{"archive.tar.xz", Resolved{KindTar, core.Xz}},
		{"archive.txz", Resolved{KindTar, core.Xz}},
		{"archive.tar.br", Resolved{KindTar, core.Brotli}},
		{"archive.zip", Resolved{KindZip, core.Store}},
		{"archive.7z", Resolved{KindSevenZip, core.Store}},
		{"ARCHIVE.TAR.GZ", Resolved{KindTar, core.Gzip}},
		{"/some/dir/nested.tar.xz", Resolved{KindTar, core.Xz}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Dispatch(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDispatchUnsupported(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"archive.rar", "archive", "archive.gz"} {
		_, err := Dispatch(name)
		assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
	}
}

func TestSuffixFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "tar", SuffixFor(KindTar, core.Store))
	assert.Equal(t, "tar.gz", SuffixFor(KindTar, core.Gzip))
	assert.Equal(t, "tar.zst", SuffixFor(KindTar, core.Zstd))
	assert.Equal(t, "tar.xz", SuffixFor(KindTar, core.Xz))
	assert.Equal(t, "tar.br", SuffixFor(KindTar, core.Brotli))
	assert.Equal(t, "zip", SuffixFor(KindZip, core.Store))
	assert.Equal(t, "7z", SuffixFor(KindSevenZip, core.Store))
}
