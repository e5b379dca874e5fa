package splice

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"github.com/LegacyCodeHQ/ppfront/include"
)

// directive is an #include found in source text. start and end delimit the
// whole directive line, trailing newline included.
type directive struct {
	kind   include.Kind
	path   string
	start  int
	end    int
	line   int
	column int
}

// parseIncludes returns the #include directives of src in source order.
// Masked directives are line comments to the parser and are not reported,
// nor are includes whose operand is a macro name.
func parseIncludes(ctx context.Context, src []byte) ([]directive, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(c.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}
	defer tree.Close()

	var includes []directive
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "preproc_include" {
			if d, ok := includeFromNode(n, src); ok {
				includes = append(includes, d)
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	return includes, nil
}

func includeFromNode(node *sitter.Node, src []byte) (directive, bool) {
	d := directive{
		start:  int(node.StartByte()),
		end:    lineEnd(src, int(node.EndByte())),
		line:   int(node.StartPoint().Row) + 1,
		column: int(node.StartPoint().Column) + 1,
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "string_literal":
			d.kind = include.Local
			d.path = strings.Trim(child.Content(src), "\"' ")
			return d, d.path != ""
		case "system_lib_string":
			d.kind = include.System
			d.path = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(child.Content(src)), "<"), ">"))
			return d, d.path != ""
		}
	}
	return directive{}, false
}

// lineEnd extends end past trailing blanks and one newline when the node
// stops short of its line's end.
func lineEnd(src []byte, end int) int {
	if end > 0 && end <= len(src) && src[end-1] == '\n' {
		return end
	}
	i := end
	for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\r') {
		i++
	}
	if i < len(src) && src[i] == '\n' {
		return i + 1
	}
	return end
}
