package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// archiveSuffixes mirrors the suffixes internal/format.Dispatch
// recognizes, used only to filter shell completion candidates down to
// files that look like archives.
var archiveSuffixes = []string{
	".tar.gz", ".tgz", ".tar.zst", ".tzst", ".tar.xz", ".txz", ".tar.br", ".tar", ".zip", ".7z",
}

// completeArchiveFiles suggests local files whose name ends in a
// recognized archive suffix, for the extract and inspect commands'
// <archive> argument.
func completeArchiveFiles(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) >= 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	dir := filepath.Dir(toComplete)
	if toComplete == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}

	var completions []string
	for _, entry := range entries {
		if entry.IsDir() || !hasArchiveSuffix(entry.Name()) {
			continue
		}
		candidate := filepath.Join(dir, entry.Name())
		if strings.HasPrefix(candidate, toComplete) {
			completions = append(completions, candidate)
		}
	}
	return completions, cobra.ShellCompDirectiveNoSpace
}

func hasArchiveSuffix(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
