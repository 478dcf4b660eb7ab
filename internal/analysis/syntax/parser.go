// Package syntax wraps the tree-sitter grammars used by the analysis
// rules. Parsers are created per call, so everything here is safe for
// concurrent use by independent workers.
package syntax

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language identifiers shared with the rule registry
const (
	LangGo         = "go"
	LangJava       = "java"
	LangJavaScript = "javascript"
	LangTypeScript = "typescript"
	LangPython     = "python"
)

func grammar(lang string) *tree_sitter.Language {
	switch lang {
	case LangGo:
		return tree_sitter.NewLanguage(golang.Language())
	case LangJava:
		return tree_sitter.NewLanguage(java.Language())
	case LangJavaScript:
		return tree_sitter.NewLanguage(javascript.Language())
	case LangTypeScript:
		return tree_sitter.NewLanguage(typescript.LanguageTypescript())
	case LangPython:
		return tree_sitter.NewLanguage(python.Language())
	default:
		return nil
	}
}

// Supported reports whether a grammar is registered for the language
func Supported(lang string) bool {
	return grammar(lang) != nil
}

func parse(lang string, source []byte) (*tree_sitter.Tree, error) {
	g := grammar(lang)
	if g == nil {
		return nil, fmt.Errorf("no grammar registered for language %q", lang)
	}
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(g); err != nil {
		return nil, fmt.Errorf("failed to set %s language: %w", lang, err)
	}
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source", lang)
	}
	return tree, nil
}

// ErrorLines parses the source with the grammar for lang and returns
// the 1-based start lines of syntax error nodes, in document order
func ErrorLines(lang string, source []byte) ([]int, error) {
	tree, err := parse(lang, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var lines []int
	seen := make(map[int]bool)
	walk(tree.RootNode(), func(node *tree_sitter.Node) {
		if node.Kind() == "ERROR" {
			line := int(node.StartPosition().Row) + 1
			if !seen[line] {
				seen[line] = true
				lines = append(lines, line)
			}
		}
	})
	return lines, nil
}

func walk(node *tree_sitter.Node, visit func(*tree_sitter.Node)) {
	if node == nil {
		return
	}
	visit(node)
	for i := uint(0); i < node.ChildCount(); i++ {
		walk(node.Child(i), visit)
	}
}
