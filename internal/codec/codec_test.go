package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvanwing/flux/core"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog\n"), 1000)

	algorithms := []core.Algorithm{core.Store, core.Gzip, core.Zstd, core.Xz, core.Brotli}
	for _, algo := range algorithms {
		algo := algo
		t.Run(algo.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			strategy := core.Strategy{Algorithm: algo, Level: core.DefaultLevel, Threads: 1}

			w, err := OpenWrite(&buf, strategy, nil)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := OpenRead(algo, &buf)
			require.NoError(t, err)
			defer r.Close()

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestRoundTripMultiThreaded(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("flux codec concurrency smoke test\n"), 5000)

	for _, tc := range []struct {
		algo     core.Algorithm
		threads  int
		longMode bool
	}{
		{algo: core.Gzip, threads: 4},
		{algo: core.Zstd, threads: 4},
		{algo: core.Zstd, threads: 8, longMode: true},
		{algo: core.Brotli, threads: 3},
	} {
		tc := tc
		t.Run(tc.algo.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			strategy := core.Strategy{Algorithm: tc.algo, Level: 5, Threads: tc.threads, LongMode: tc.longMode}

			w, err := OpenWrite(&buf, strategy, nil)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := OpenRead(tc.algo, &buf)
			require.NoError(t, err)
			defer r.Close()

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestNormalizeLevel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, core.DefaultLevel, normalizeLevel(0))
	assert.Equal(t, core.DefaultLevel, normalizeLevel(10))
	assert.Equal(t, 7, normalizeLevel(7))
}

func TestBrotliLevelMapping(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, brotliLevel(0))
	assert.Equal(t, 11, brotliLevel(9))
	for level := 1; level <= 9; level++ {
		got := brotliLevel(level)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 11)
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	t.Parallel()
	_, err := OpenRead(core.Algorithm(99), &bytes.Buffer{})
	assert.ErrorIs(t, err, core.ErrCompression)

	_, err = OpenWrite(&bytes.Buffer{}, core.Strategy{Algorithm: core.Algorithm(99)}, nil)
	assert.ErrorIs(t, err, core.ErrCompression)
}
