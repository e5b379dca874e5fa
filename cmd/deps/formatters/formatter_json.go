package formatters

import (
	"encoding/json"

	"github.com/LegacyCodeHQ/ppfront/depgraph"
)

// JSONFormatter renders the graph with full paths.
type JSONFormatter struct{}

type jsonInclude struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

type jsonFile struct {
	Path     string        `json:"path"`
	Includes []jsonInclude `json:"includes"`
}

type jsonGraph struct {
	Label  string     `json:"label,omitempty"`
	Root   string     `json:"root"`
	Files  []jsonFile `json:"files"`
	Cycles [][]string `json:"cycles"`
}

func (f *JSONFormatter) Format(g *depgraph.IncludeGraph, opts RenderOptions) (string, error) {
	out := jsonGraph{
		Label:  opts.Label,
		Root:   g.Root(),
		Files:  []jsonFile{},
		Cycles: g.Cycles(),
	}
	if out.Cycles == nil {
		out.Cycles = [][]string{}
	}
	for _, file := range g.Files() {
		entry := jsonFile{Path: file, Includes: []jsonInclude{}}
		for _, target := range g.Includes(file) {
			entry.Includes = append(entry.Includes, jsonInclude{Path: target, Kind: g.Kind(file, target).String()})
		}
		out.Files = append(out.Files, entry)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
