// Package safepath provides path validation and resource-limit checks for
// secure archive extraction.
//
// This package performs lexical validation only. Extraction code must still
// use race-resistant filesystem primitives (O_EXCL creation, create-in-temp-
// then-rename) to close the gap between validation and materialization.
package safepath

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/silvanwing/flux/core"
	"github.com/silvanwing/flux/internal/contracts"
)

// Compile-time interface implementation check.
var _ contracts.PathValidator = (*Validator)(nil)

// Validator implements contracts.PathValidator.
type Validator struct{}

// NewValidator creates a new path validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePath walks the components of path and allows only normal names
// and "current directory" markers. Parent-directory components, absolute
// roots, and drive prefixes are all rejected.
func (v *Validator) ValidatePath(path string) error {
	if strings.ContainsRune(path, '\x00') {
		return fmt.Errorf("%w: %q contains a null byte", core.ErrInvalidPath, path)
	}
	if filepath.VolumeName(path) != "" ||
		(len(path) >= 2 && path[1] == ':' && ((path[0] >= 'a' && path[0] <= 'z') || (path[0] >= 'A' && path[0] <= 'Z'))) {
		return fmt.Errorf("%w: %q has a drive prefix", core.ErrInvalidPath, path)
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return fmt.Errorf("%w: %q is absolute", core.ErrInvalidPath, path)
	}
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, part := range strings.Split(normalized, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			return fmt.Errorf("%w: %q contains a parent-directory component", core.ErrInvalidPath, path)
		}
	}
	return nil
}

// SanitizePath validates untrusted against ValidatePath, then joins it to
// the canonical form of base and verifies the result still lies within
// base. It never follows an existing symlink at the joined location,
// because that location may not exist yet (extraction hasn't run there).
func SanitizePath(base, untrusted string) (string, error) {
	v := NewValidator()
	if err := v.ValidatePath(untrusted); err != nil {
		return "", err
	}

	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("%w: resolve base %q: %v", core.ErrInvalidPath, base, err)
	}
	// filepath.EvalSymlinks resolves base itself (which must exist) but is
	// never applied to the joined result, so a not-yet-created destination
	// component is never dereferenced as a symlink.
	canonBase, err := filepath.EvalSymlinks(absBase)
	if err != nil {
		return "", fmt.Errorf("%w: canonicalize base %q: %v", core.ErrInvalidPath, base, err)
	}

	joined := filepath.Join(canonBase, untrusted)
	if !isWithinDir(joined, canonBase) {
		return "", fmt.Errorf("%w: %q escapes %q", core.ErrInvalidPath, untrusted, base)
	}
	return joined, nil
}

// ValidateSymlink checks that a symlink at linkPath pointing at target
// resolves to a location within destDir.
//
// If allowExternal is set, validation is skipped entirely. Absolute
// targets are always rejected (they aren't chroot-relative in this
// engine, unlike the lenient mode some archivers use). Relative targets
// are normalized by applying ".." components against a bounded stack that
// cannot pop above destDir.
func (v *Validator) ValidateSymlink(destDir, linkPath, target string, allowExternal bool) error {
	if allowExternal {
		return nil
	}
	if err := v.ValidatePath(linkPath); err != nil {
		return err
	}
	if strings.ContainsRune(target, '\x00') {
		return fmt.Errorf("%w: symlink target %q contains a null byte", core.ErrInvalidPath, target)
	}
	if filepath.IsAbs(target) || filepath.VolumeName(target) != "" {
		return fmt.Errorf("%w: symlink %q has an absolute target %q", core.ErrInvalidPath, linkPath, target)
	}

	linkDir := filepath.Dir(filepath.ToSlash(linkPath))
	stack := splitNonEmpty(linkDir)

	for _, part := range strings.Split(strings.ReplaceAll(target, "\\", "/"), "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(stack) == 0 {
				return fmt.Errorf("%w: symlink %q target %q escapes the extraction root", core.ErrInvalidPath, linkPath, target)
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, part)
		}
	}
	return nil
}

// CheckCompressionRatio fails when uncompressed/compressed exceeds maxRatio.
// A zero or negative compressed size with positive uncompressed size is
// treated as an infinite ratio and always fails.
func (v *Validator) CheckCompressionRatio(compressed, uncompressed int64, maxRatio float64) error {
	if maxRatio <= 0 {
		return nil
	}
	if compressed <= 0 {
		if uncompressed > 0 {
			return fmt.Errorf("%w: compression ratio exceeds %.0f:1 (compressed size unknown or zero)", core.ErrSecurity, maxRatio)
		}
		return nil
	}
	ratio := float64(uncompressed) / float64(compressed)
	if ratio > maxRatio {
		return fmt.Errorf("%w: compression ratio %.1f:1 exceeds limit %.0f:1", core.ErrSecurity, ratio, maxRatio)
	}
	return nil
}

// CheckExtractionSize fails when the saturating sum of runningTotal and
// entrySize exceeds maxTotal. maxTotal <= 0 disables the check.
func (v *Validator) CheckExtractionSize(runningTotal, entrySize, maxTotal int64) error {
	if maxTotal <= 0 {
		return nil
	}
	if entrySize < 0 || runningTotal > math.MaxInt64-entrySize {
		return fmt.Errorf("%w: extraction size overflow", core.ErrSecurity)
	}
	if runningTotal+entrySize > maxTotal {
		return fmt.Errorf("%w: extraction size exceeds limit of %d bytes", core.ErrSecurity, maxTotal)
	}
	return nil
}

// CheckDiskSpace fails when the filesystem containing path has less than
// required bytes free. path need not exist yet; its nearest existing
// ancestor is queried instead.
func (v *Validator) CheckDiskSpace(path string, required int64) error {
	if required <= 0 {
		return nil
	}
	probe := nearestExistingAncestor(path)
	usage, err := disk.Usage(probe)
	if err != nil {
		return fmt.Errorf("%w: check free space at %q: %v", core.ErrIO, probe, err)
	}
	//nolint:gosec // G115: Free is an unsigned byte count well under int64 range on real filesystems.
	if int64(usage.Free) < required {
		return fmt.Errorf("%w: insufficient disk space at %q: need %d bytes, have %d", core.ErrSecurity, probe, required, usage.Free)
	}
	return nil
}

func nearestExistingAncestor(path string) string {
	dir := path
	for {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

func isWithinDir(path, dir string) bool {
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return strings.HasPrefix(path, dir)
}

func splitNonEmpty(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}
	return parts
}
