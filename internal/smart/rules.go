package smart

import (
	"path/filepath"
	"sort"

	"github.com/silvanwing/flux/core"
)

// applyCustomRules matches info against rules sorted by descending
// priority, using the first rule whose glob patterns match the file's
// base name and whose size falls within the rule's bounds.
func applyCustomRules(info FileInfo, rules []Rule) (core.Strategy, bool) {
	if len(rules) == 0 {
		return core.Strategy{}, false
	}

	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })

	base := filepath.Base(info.Path)
	for _, rule := range sorted {
		if !anyPatternMatches(rule.Patterns, base) {
			continue
		}
		if rule.MinSize > 0 && info.Size < rule.MinSize {
			continue
		}
		if rule.MaxSize > 0 && info.Size > rule.MaxSize {
			continue
		}
		return core.Strategy{
			Algorithm: rule.Algorithm,
			Level:     rule.Level,
			Threads:   rule.Threads,
		}, true
	}
	return core.Strategy{}, false
}

func anyPatternMatches(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
