package safepath

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silvanwing/flux/core"
)

func TestValidatePath(t *testing.T) {
	t.Parallel()

	v := NewValidator()
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "simple file", path: "foo.txt"},
		{name: "nested path", path: "foo/bar/baz.txt"},
		{name: "dot prefix", path: "./foo/bar"},
		{name: "single dot component", path: "foo/./bar"},
		{name: "parent traversal at start", path: "../foo", wantErr: core.ErrInvalidPath},
		{name: "parent traversal in middle", path: "foo/../bar", wantErr: core.ErrInvalidPath},
		{name: "parent traversal at end", path: "foo/bar/..", wantErr: core.ErrInvalidPath},
		{name: "absolute path unix", path: "/etc/passwd", wantErr: core.ErrInvalidPath},
		{name: "null byte", path: "foo\x00bar", wantErr: core.ErrInvalidPath},
		{name: "empty path", path: ""},
		{name: "double dot not as component", path: "foo..bar"},
		{name: "backslash traversal", path: "..\\foo", wantErr: core.ErrInvalidPath},
		{name: "mixed separator traversal", path: "foo\\..\\..\\bar", wantErr: core.ErrInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := v.ValidatePath(tt.path)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidatePathDriveAndVolume(t *testing.T) {
	t.Parallel()
	v := NewValidator()
	assert.ErrorIs(t, v.ValidatePath(`C:\foo\bar`), core.ErrInvalidPath)
}

func TestSanitizePath(t *testing.T) {
	t.Parallel()
	base := t.TempDir()

	t.Run("simple path resolves under base", func(t *testing.T) {
		t.Parallel()
		got, err := SanitizePath(base, "a/b/c.txt")
		require.NoError(t, err)
		canonBase, err := filepath.EvalSymlinks(base)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(canonBase, "a/b/c.txt"), got)
	})

	t.Run("traversal rejected", func(t *testing.T) {
		t.Parallel()
		_, err := SanitizePath(base, "../escape.txt")
		assert.ErrorIs(t, err, core.ErrInvalidPath)
	})

	t.Run("every returned path begins with canonical base", func(t *testing.T) {
		t.Parallel()
		canonBase, err := filepath.EvalSymlinks(base)
		require.NoError(t, err)
		for _, p := range []string{"x.txt", "a/b/c", "./y.txt", "a/./b"} {
			got, err := SanitizePath(base, p)
			require.NoError(t, err)
			assert.True(t, got == canonBase || len(got) > len(canonBase) && got[:len(canonBase)+1] == canonBase+string(filepath.Separator))
		}
	})
}

func TestValidateSymlink(t *testing.T) {
	t.Parallel()
	v := NewValidator()

	tests := []struct {
		name          string
		destDir       string
		linkPath      string
		target        string
		allowExternal bool
		wantErr       bool
	}{
		{name: "relative sibling target ok", destDir: "/out", linkPath: "a/link", target: "b.txt"},
		{name: "relative parent within bounds ok", destDir: "/out", linkPath: "a/b/link", target: "../sibling.txt"},
		{name: "relative parent escapes root", destDir: "/out", linkPath: "link", target: "../escape.txt", wantErr: true},
		{name: "absolute target rejected", destDir: "/out", linkPath: "link", target: "/etc/passwd", wantErr: true},
		{name: "absolute target allowed when external permitted", destDir: "/out", linkPath: "link", target: "/etc/passwd", allowExternal: true},
		{name: "deep escape via many parents", destDir: "/out", linkPath: "a/link", target: "../../../../etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := v.ValidateSymlink(tt.destDir, tt.linkPath, tt.target, tt.allowExternal)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidPath)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckCompressionRatio(t *testing.T) {
	t.Parallel()
	v := NewValidator()

	assert.NoError(t, v.CheckCompressionRatio(1000, 50_000, 100))
	assert.Error(t, v.CheckCompressionRatio(1000, 1_000_000_000, 100))
	assert.ErrorIs(t, v.CheckCompressionRatio(1000, 1_000_000_000, 100), core.ErrSecurity)
	assert.NoError(t, v.CheckCompressionRatio(0, 0, 100))
	assert.Error(t, v.CheckCompressionRatio(0, 100, 100))
}

func TestCheckExtractionSize(t *testing.T) {
	t.Parallel()
	v := NewValidator()

	assert.NoError(t, v.CheckExtractionSize(0, 100, 1000))
	assert.NoError(t, v.CheckExtractionSize(900, 100, 1000))
	assert.Error(t, v.CheckExtractionSize(900, 101, 1000))
	assert.NoError(t, v.CheckExtractionSize(0, 100, 0)) // disabled
}

func TestCheckDiskSpace(t *testing.T) {
	t.Parallel()
	v := NewValidator()
	dir := t.TempDir()

	assert.NoError(t, v.CheckDiskSpace(dir, 0))
	assert.NoError(t, v.CheckDiskSpace(filepath.Join(dir, "not-yet-created"), 1))

	err := v.CheckDiskSpace(dir, 1<<62)
	if err != nil {
		assert.ErrorIs(t, err, core.ErrSecurity)
	}
}
