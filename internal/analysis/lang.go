package analysis

import (
	"path/filepath"
	"strings"

	"review-bot-go/internal/analysis/syntax"
)

// LanguageForPath infers the language identifier from the file
// extension. Returns "" for languages without registered rules; those
// files still get the common rules, nothing more.
func LanguageForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return syntax.LangPython
	case ".go":
		return syntax.LangGo
	case ".java":
		return syntax.LangJava
	case ".js", ".jsx", ".mjs":
		return syntax.LangJavaScript
	case ".ts", ".tsx":
		return syntax.LangTypeScript
	default:
		return ""
	}
}
