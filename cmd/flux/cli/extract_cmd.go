package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/silvanwing/flux"
)

var (
	extractDest            string
	extractOverwrite       bool
	extractSkip            bool
	extractRename          bool
	extractStripComponents int
	extractHoist           bool
	extractInteractive     bool
	extractFollowSymlinks  bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractDest, "output", "o", ".", "destination directory")
	extractCmd.Flags().BoolVar(&extractOverwrite, "overwrite", false, "overwrite existing files on collision")
	extractCmd.Flags().BoolVar(&extractSkip, "skip", false, "skip existing files on collision (default)")
	extractCmd.Flags().BoolVar(&extractRename, "rename", false, "rename the extracted entry on collision")
	extractCmd.MarkFlagsMutuallyExclusive("overwrite", "skip", "rename")
	extractCmd.Flags().IntVar(&extractStripComponents, "strip-components", 0, "strip N leading path components from each entry")
	extractCmd.Flags().BoolVar(&extractHoist, "hoist", false, "flatten a single top-level directory into the destination")
	extractCmd.Flags().BoolVarP(&extractInteractive, "interactive", "i", false, "prompt once for a collision policy instead of using --skip/--overwrite/--rename")
	extractCmd.Flags().BoolVar(&extractFollowSymlinks, "follow-symlinks", false, "set FollowSymlinks in the extract options; the extract engines always recreate symlink entries as links")

	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:               "extract <archive>",
	Short:             "Extract an archive",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeArchiveFiles,
	RunE:              runExtract,
}

func runExtract(_ *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	archivePath := args[0]
	client, err := newClient()
	if err != nil {
		return err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", flux.ErrIO, archivePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %v", flux.ErrIO, archivePath, err)
	}

	opts := flux.DefaultExtractOptions()
	opts.StripComponents = extractStripComponents
	opts.Hoist = extractHoist
	opts.FollowSymlinks = extractFollowSymlinks

	switch {
	case extractOverwrite:
		opts.Collision = flux.CollisionOverwrite
	case extractRename:
		opts.Collision = flux.CollisionRename
	case extractSkip:
		opts.Collision = flux.CollisionSkip
	case extractInteractive:
		opts.Collision, err = promptCollisionMode()
		if err != nil {
			return err
		}
	}

	result, err := client.Extract(ctx, f, info.Size(), archivePath, extractDest, opts)
	if err != nil {
		return err
	}

	fmt.Printf("extracted %d entries", result.Extracted)
	if result.Failed > 0 {
		fmt.Printf(", %d failed", result.Failed)
	}
	fmt.Println()
	return nil
}

// promptCollisionMode asks the user once, up front, how to resolve any
// collision encountered during this extraction. The engine validates and
// extracts every entry in one pass, so a true per-entry prompt would
// require threading a callback through contracts.Extractor; a single
// upfront choice covers the common case without that plumbing.
func promptCollisionMode() (flux.CollisionMode, error) {
	fmt.Print("On collision: (s)kip, (o)verwrite, (r)ename? [s] ")
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "o", "overwrite":
		return flux.CollisionOverwrite, nil
	case "r", "rename":
		return flux.CollisionRename, nil
	case "", "s", "skip":
		return flux.CollisionSkip, nil
	default:
		return 0, fmt.Errorf("%w: unrecognized collision choice", flux.ErrConfig)
	}
}
