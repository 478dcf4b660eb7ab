package syntax

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// PythonMutableDefaults returns the 1-based lines of function
// parameters whose default value is a mutable literal (list, dict or
// set). The classic shared-default-argument trap.
func PythonMutableDefaults(source []byte) ([]int, error) {
	tree, err := parse(LangPython, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var lines []int
	walk(tree.RootNode(), func(node *tree_sitter.Node) {
		kind := node.Kind()
		if kind != "default_parameter" && kind != "typed_default_parameter" {
			return
		}
		// the default value is the last child, after the '='
		value := node.Child(node.ChildCount() - 1)
		if value == nil {
			return
		}
		switch value.Kind() {
		case "list", "dictionary", "set", "list_comprehension", "dictionary_comprehension":
			lines = append(lines, int(node.StartPosition().Row)+1)
		}
	})
	return lines, nil
}

// PythonBareExcepts returns the 1-based lines of except clauses that
// name no exception type
func PythonBareExcepts(source []byte) ([]int, error) {
	tree, err := parse(LangPython, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var lines []int
	walk(tree.RootNode(), func(node *tree_sitter.Node) {
		if node.Kind() != "except_clause" {
			return
		}
		bare := true
		for i := uint(0); i < node.ChildCount(); i++ {
			switch node.Child(i).Kind() {
			case "except", ":", "block", "comment":
			default:
				bare = false
			}
		}
		if bare {
			lines = append(lines, int(node.StartPosition().Row)+1)
		}
	})
	return lines, nil
}

// PublicFunc describes a module-level or class-level Python function
// whose name is not underscore-prefixed
type PublicFunc struct {
	Name         string
	Line         int
	HasDocstring bool
}

// PythonPublicFuncs returns the public function definitions in the
// source together with whether each begins with a docstring
func PythonPublicFuncs(source []byte) ([]PublicFunc, error) {
	tree, err := parse(LangPython, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var funcs []PublicFunc
	walk(tree.RootNode(), func(node *tree_sitter.Node) {
		if node.Kind() != "function_definition" {
			return
		}
		var name string
		var body *tree_sitter.Node
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			switch child.Kind() {
			case "identifier":
				if name == "" {
					name = child.Utf8Text(source)
				}
			case "block":
				body = child
			}
		}
		if name == "" || strings.HasPrefix(name, "_") {
			return
		}
		funcs = append(funcs, PublicFunc{
			Name:         name,
			Line:         int(node.StartPosition().Row) + 1,
			HasDocstring: blockStartsWithString(body, source),
		})
	})
	return funcs, nil
}

func blockStartsWithString(block *tree_sitter.Node, source []byte) bool {
	if block == nil {
		return false
	}
	for i := uint(0); i < block.ChildCount(); i++ {
		stmt := block.Child(i)
		if stmt.Kind() == "comment" {
			continue
		}
		if stmt.Kind() != "expression_statement" {
			return false
		}
		return stmt.ChildCount() > 0 && stmt.Child(0).Kind() == "string"
	}
	return false
}
