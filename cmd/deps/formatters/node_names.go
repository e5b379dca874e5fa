package formatters

import (
	"path/filepath"
	"strings"
)

// BuildNodeNames returns short, distinct display names for paths. Files
// sharing a base name get as many trailing path elements as it takes to
// tell them apart.
func BuildNodeNames(paths []string) map[string]string {
	names := make(map[string]string, len(paths))
	byBase := make(map[string][]string, len(paths))
	for _, path := range paths {
		base := filepath.Base(path)
		byBase[base] = append(byBase[base], path)
	}

	for base, group := range byBase {
		if len(group) == 1 {
			names[group[0]] = base
			continue
		}
		for depth := 2; ; depth++ {
			if distinctSuffixes(group, depth) || depth > maxDepth(group) {
				for _, path := range group {
					names[path] = pathSuffix(path, depth)
				}
				break
			}
		}
	}
	return names
}

func distinctSuffixes(paths []string, depth int) bool {
	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		suffix := pathSuffix(path, depth)
		if seen[suffix] {
			return false
		}
		seen[suffix] = true
	}
	return true
}

func maxDepth(paths []string) int {
	depth := 0
	for _, path := range paths {
		depth = max(depth, len(pathParts(path)))
	}
	return depth
}

func pathParts(path string) []string {
	normalized := filepath.ToSlash(filepath.Clean(path))
	return strings.Split(strings.TrimPrefix(normalized, "/"), "/")
}

func pathSuffix(path string, depth int) string {
	parts := pathParts(path)
	depth = min(depth, len(parts))
	return strings.Join(parts[len(parts)-depth:], "/")
}
