package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/silvanwing/flux"
	"github.com/silvanwing/flux/core"
)

var (
	packOutput         string
	packFormat         string
	packSmart          bool
	packAlgo           string
	packLevel          int
	packThreads        int
	packFollowSymlinks bool
	packForceCompress  bool
	packIncremental    string
)

func init() {
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "output archive path (required)")
	packCmd.Flags().StringVar(&packFormat, "format", "", "override the output format inferred from --output's suffix (tar, tar.gz, tar.zst, tar.xz, tar.br, zip, 7z)")
	packCmd.Flags().BoolVar(&packSmart, "smart", true, "choose compression automatically from file/directory characteristics")
	packCmd.Flags().StringVar(&packAlgo, "algo", "", "explicit compression algorithm (store, gzip, zstd, xz, brotli); overrides --smart")
	packCmd.Flags().IntVar(&packLevel, "level", core.DefaultLevel, "compression level 1-9")
	packCmd.Flags().IntVar(&packThreads, "threads", 0, "worker threads (0 lets the engine decide)")
	packCmd.Flags().BoolVar(&packFollowSymlinks, "follow-symlinks", false, "archive symlink targets' contents instead of the link itself")
	packCmd.Flags().BoolVar(&packForceCompress, "force-compress", false, "compress files even when their extension is already known-compressed")
	packCmd.Flags().StringVar(&packIncremental, "incremental", "", "prior manifest path; only files added or modified since it was taken are packed, and a fresh manifest is saved next to --output")
	//nolint:errcheck // "output" is defined above
	packCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(packCmd)
}

var packCmd = &cobra.Command{
	Use:   "pack <input>",
	Short: "Archive a file or directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runPack,
}

func runPack(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	src := args[0]
	client, err := newClient()
	if err != nil {
		return err
	}

	out, err := os.Create(packOutput)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", flux.ErrIO, packOutput, err)
	}
	defer out.Close()

	level, threads := packLevel, packThreads
	if !cmd.Flags().Changed("level") {
		level = viper.GetInt("pack.level")
	}
	if !cmd.Flags().Changed("threads") {
		threads = viper.GetInt("pack.threads")
	}

	opts := flux.PackOptions{
		Mode:           flux.ModeSmart,
		Level:          level,
		Threads:        threads,
		FollowSymlinks: packFollowSymlinks,
		ForceCompress:  packForceCompress,
	}
	if packAlgo != "" {
		algo, err := parseAlgorithm(packAlgo)
		if err != nil {
			return err
		}
		opts.Mode = flux.ModeExplicit
		opts.Algorithm = algo
	} else if !packSmart {
		opts.Mode = flux.ModeExplicit
	}

	if packIncremental != "" {
		newManifestPath := flux.DefaultManifestPath(packOutput)
		incrementalAlgo := opts.Algorithm
		if packAlgo == "" {
			// Sync has no smart-selection path, so mirror the sync
			// command's own --algo default instead of silently packing
			// uncompressed via opts.Algorithm's zero value.
			incrementalAlgo = flux.Zstd
		}
		strategy := flux.Strategy{Algorithm: incrementalAlgo, Level: opts.Level, Threads: opts.Threads, ForceCompress: opts.ForceCompress}
		result, syncErr := client.Sync(ctx, src, out, strategy, packFollowSymlinks, packIncremental, newManifestPath)
		if syncErr != nil {
			return syncErr
		}
		fmt.Printf("%s: +%d ~%d -%d (manifest: %s)\n", packOutput, len(result.Diff.Added), len(result.Diff.Modified), len(result.Diff.Deleted), result.ManifestPath)
		return nil
	}

	dispatchName := packOutput
	if packFormat != "" {
		dispatchName = "archive." + strings.TrimPrefix(packFormat, ".")
	}

	if err := client.Pack(ctx, src, out, dispatchName, opts); err != nil {
		return err
	}
	fmt.Println(packOutput)
	return nil
}

func parseAlgorithm(name string) (flux.Algorithm, error) {
	switch strings.ToLower(name) {
	case "store":
		return flux.Store, nil
	case "gzip":
		return flux.Gzip, nil
	case "zstd":
		return flux.Zstd, nil
	case "xz":
		return flux.Xz, nil
	case "brotli":
		return flux.Brotli, nil
	default:
		return 0, fmt.Errorf("%w: unknown algorithm %q", flux.ErrConfig, name)
	}
}
