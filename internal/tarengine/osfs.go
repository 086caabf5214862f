package tarengine

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Compile-time interface implementation checks.
var (
	_ fs.FS        = (*osFS)(nil)
	_ fs.ReadDirFS = (*osFS)(nil)
	_ fs.StatFS    = (*osFS)(nil)
	_ lstatFS      = (*osFS)(nil)
	_ readLinkFS   = (*osFS)(nil)
)

// newOSFS returns a filesystem rooted at the given directory path. Unlike
// os.DirFS, it implements ReadLink and Lstat so symlinks can be walked
// without being followed.
func newOSFS(root string) *osFS {
	return &osFS{root: root}
}

// osFS is an fs.FS implementation backed by the OS filesystem, extended
// with symlink-aware Lstat/ReadLink.
type osFS struct {
	root string
}

//nolint:gosec // G304: path is validated by fs.ValidPath and rooted to o.root
func (o *osFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return os.Open(filepath.Join(o.root, name))
}

func (o *osFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	return os.ReadDir(filepath.Join(o.root, name))
}

func (o *osFS) ReadLink(name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: fs.ErrInvalid}
	}
	return os.Readlink(filepath.Join(o.root, name))
}

func (o *osFS) Lstat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "lstat", Path: name, Err: fs.ErrInvalid}
	}
	return os.Lstat(filepath.Join(o.root, name))
}

func (o *osFS) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	return os.Stat(filepath.Join(o.root, name))
}

// readLinkFS is the interface for filesystems that support reading symlink targets.
type readLinkFS interface {
	fs.FS
	ReadLink(name string) (string, error)
}

// lstatFS is the interface for filesystems that support Lstat (stat without following symlinks).
type lstatFS interface {
	fs.FS
	Lstat(name string) (fs.FileInfo, error)
}
