package formatters

import (
	"path/filepath"
	"sort"
)

var extensionPalette = []string{
	"lightblue", "lightyellow", "mistyrose", "lightsalmon",
	"lightpink", "lavender", "peachpuff", "plum", "powderblue", "khaki",
}

const rootColor = "lightgreen"

// nodeColors assigns the root its own color and every other file a color
// per extension. With a single extension among the includes they are white.
func nodeColors(root string, files []string) map[string]string {
	extensions := make(map[string]bool)
	for _, file := range files {
		if file != root {
			extensions[filepath.Ext(file)] = true
		}
	}
	sorted := make([]string, 0, len(extensions))
	for ext := range extensions {
		sorted = append(sorted, ext)
	}
	sort.Strings(sorted)

	byExtension := make(map[string]string, len(sorted))
	for i, ext := range sorted {
		if len(sorted) == 1 {
			byExtension[ext] = "white"
			continue
		}
		byExtension[ext] = extensionPalette[i%len(extensionPalette)]
	}

	colors := make(map[string]string, len(files))
	for _, file := range files {
		if file == root {
			colors[file] = rootColor
			continue
		}
		colors[file] = byExtension[filepath.Ext(file)]
	}
	return colors
}
