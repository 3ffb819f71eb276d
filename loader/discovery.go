package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns are the glob patterns used to discover specification files
// under a root directory when the configuration does not override them.
var DefaultPatterns = []string{"**/*.yml", "**/*.yaml"}

// Discover expands glob patterns under a root path to concrete specification
// files, deduplicated and sorted so runs are deterministic. A root that is
// itself a file is returned directly.
func Discover(root string, patterns []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(root, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			if seen[match] {
				continue
			}
			if fi, err := os.Stat(match); err != nil || fi.IsDir() {
				continue
			}
			seen[match] = true
			files = append(files, match)
		}
	}
	sort.Strings(files)
	return files, nil
}
