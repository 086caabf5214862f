package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/silvanwing/flux"
	"github.com/silvanwing/flux/internal/fluxutil"
)

var (
	inspectJSON bool
	inspectTree bool
)

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print entries as a JSON array")
	inspectCmd.Flags().BoolVar(&inspectTree, "tree", false, "print entries as an indented tree")
	inspectCmd.MarkFlagsMutuallyExclusive("json", "tree")

	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:               "inspect <archive>",
	Short:             "List an archive's entries without extracting",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeArchiveFiles,
	RunE:              runInspect,
}

func runInspect(_ *cobra.Command, args []string) error {
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

	entries, err := client.Inspect(ctx, f, info.Size(), archivePath)
	if err != nil {
		return err
	}

	switch {
	case inspectJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case inspectTree:
		printTree(entries)
		return nil
	default:
		for _, e := range entries {
			kind := "-"
			if e.IsDir {
				kind = "d"
			} else if e.IsSymlink {
				kind = "l"
			}
			fmt.Printf("%s %10s %s\n", kind, fluxutil.FormatSize(e.Size), e.Path)
		}
		return nil
	}
}

// printTree renders entries sorted by path as an indented tree; depth is
// derived from slash-separated path components, matching how tar/zip/7z
// entries already encode directory structure in their paths.
func printTree(entries []flux.Entry) {
	sorted := make([]flux.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	for _, e := range sorted {
		clean := strings.TrimSuffix(e.Path, "/")
		depth := strings.Count(clean, "/")
		fmt.Printf("%s%s\n", strings.Repeat("  ", depth), path.Base(clean))
	}
}
