package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/silvanwing/flux"
	"github.com/silvanwing/flux/core"
)

var (
	syncAlgo           string
	syncLevel          int
	syncFull           bool
	syncFollowSymlinks bool
)

func init() {
	syncCmd.Flags().StringVar(&syncAlgo, "algo", "zstd", "compression algorithm (store, gzip, zstd, xz, brotli)")
	syncCmd.Flags().IntVar(&syncLevel, "level", core.DefaultLevel, "compression level 1-9")
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "ignore any manifest from a prior sync and pack everything")
	syncCmd.Flags().BoolVar(&syncFollowSymlinks, "follow-symlinks", false, "archive symlink targets' contents instead of the link itself")

	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync <source> <target>",
	Short: "Snapshot a directory to target, incrementally after the first run",
	Long: `Sync packs source into target as a tar stream wrapped in the chosen
codec. It keeps a manifest alongside target ("<target>.manifest.json") so
the next invocation on the same target only packs files added or modified
since the previous run. Pass --full to force a complete backup and reset
that manifest.`,
	Args: cobra.ExactArgs(2),
	RunE: runSync,
}

func runSync(_ *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	source, target := args[0], args[1]
	client, err := newClient()
	if err != nil {
		return err
	}

	algo, err := parseAlgorithm(syncAlgo)
	if err != nil {
		return err
	}

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", flux.ErrIO, target, err)
	}
	defer out.Close()

	manifestPath := flux.DefaultManifestPath(target)
	oldManifestPath := manifestPath
	if syncFull {
		oldManifestPath = ""
	} else if _, statErr := os.Stat(manifestPath); statErr != nil {
		oldManifestPath = ""
	}

	strategy := flux.Strategy{Algorithm: algo, Level: syncLevel}
	result, err := client.Sync(ctx, source, out, strategy, syncFollowSymlinks, oldManifestPath, manifestPath)
	if err != nil {
		return err
	}

	if oldManifestPath == "" {
		fmt.Printf("%s: full backup, %d files (manifest: %s)\n", target, result.Manifest.FileCount, result.ManifestPath)
		return nil
	}
	fmt.Printf("%s: +%d ~%d -%d (manifest: %s)\n", target, len(result.Diff.Added), len(result.Diff.Modified), len(result.Diff.Deleted), result.ManifestPath)
	return nil
}
