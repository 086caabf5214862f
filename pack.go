package flux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/silvanwing/flux/core"
	"github.com/silvanwing/flux/internal/format"
	"github.com/silvanwing/flux/internal/sevenzipengine"
	"github.com/silvanwing/flux/internal/smart"
	"github.com/silvanwing/flux/internal/tarengine"
	"github.com/silvanwing/flux/internal/zipengine"
)

// Pack archives srcPath (a file or directory tree) to w. targetName names
// the intended output (e.g. "backup.tar.zst" or a bare ".zip"); its suffix
// picks the container format and, when opts.Mode is ModeSmart, seeds the
// default codec before content inspection can override it.
//
// Pack always emits every entry under srcPath. For an incremental pack
// that only emits files added or modified since a prior manifest, use
// Client.Sync instead.
func (c *Client) Pack(ctx context.Context, srcPath string, w io.Writer, targetName string, opts PackOptions) error {
	strategy, err := c.resolveStrategy(ctx, srcPath, opts)
	if err != nil {
		return err
	}

	resolved, err := format.Dispatch(targetName)
	if err != nil {
		if !errors.Is(err, core.ErrUnsupportedFormat) {
			return err
		}
		// targetName's suffix is ambiguous or absent; derive the
		// container from the resolved codec instead of failing.
		fallback := format.SuffixFor(format.KindTar, strategy.Algorithm)
		resolved, err = format.Dispatch("archive." + fallback)
		if err != nil {
			return err
		}
	}

	switch resolved.Kind {
	case format.KindTar:
		return tarengine.Pack(ctx, srcPath, w, strategy, opts.FollowSymlinks, c.logger)
	case format.KindZip:
		skipped, err := zipengine.Pack(ctx, srcPath, w, strategy.Level, opts.FollowSymlinks)
		if err != nil {
			return err
		}
		for _, p := range skipped {
			c.logger.Warn("pack: skipped symlink", "path", p)
		}
		return nil
	case format.KindSevenZip:
		return sevenzipengine.Pack(ctx, srcPath, w, strategy)
	default:
		return fmt.Errorf("%w: unrecognized format kind for %q", core.ErrUnsupportedFormat, targetName)
	}
}

// resolveStrategy picks the Strategy for a pack operation: the explicit
// algorithm/level/threads in opts when Mode is ModeExplicit, or the smart
// policy (directory-wide profiling for a tree, content+extension
// inspection for a single file) when Mode is ModeSmart.
func (c *Client) resolveStrategy(ctx context.Context, srcPath string, opts PackOptions) (Strategy, error) {
	if opts.Mode == core.ModeExplicit {
		strategy := core.Strategy{
			Algorithm:     opts.Algorithm,
			Level:         opts.Level,
			Threads:       opts.Threads,
			ForceCompress: opts.ForceCompress,
		}
		return smart.AdjustThreadsForAlgorithm(strategy), nil
	}

	info, err := os.Stat(srcPath)
	if err != nil {
		return Strategy{}, fmt.Errorf("%w: stat %s: %v", core.ErrIO, srcPath, err)
	}

	if info.IsDir() {
		profile, err := smart.ProfileDirectory(ctx, os.DirFS(srcPath), ".")
		if err != nil {
			return Strategy{}, fmt.Errorf("%w: profile %s: %v", core.ErrIO, srcPath, err)
		}
		return smart.ChooseForDirectory(profile, opts.Level, opts.Threads), nil
	}

	fi := smart.FileInfo{Path: srcPath, Size: info.Size()}
	opener := func() ([]byte, error) { return readSamplePrefix(srcPath) }
	return smart.Choose(fi, nil, opts.Level, opts.Threads, opener), nil
}

const strategySampleSize = 16 * 1024

func readSamplePrefix(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, strategySampleSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}
