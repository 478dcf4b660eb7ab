package analysis

import (
	"review-bot-go/internal/analysis/syntax"
	"review-bot-go/internal/model"
)

// newSyntaxErrorRule reports parse errors the change introduced inside
// its touched ranges. One rule instance per language; each parses with
// the matching tree-sitter grammar.
func newSyntaxErrorRule(lang string) Rule {
	return &fileCheck{
		name:     "syntax_error_" + lang,
		category: model.CategoryBug,
		check: func(file *model.ChangedFile) ([]model.Issue, error) {
			lines, err := syntax.ErrorLines(lang, []byte(file.Content()))
			if err != nil {
				return nil, err
			}
			var issues []model.Issue
			for _, line := range lines {
				issues = append(issues, model.Issue{
					Category:    model.CategoryBug,
					Line:        line,
					Description: "Syntax error",
					Suggestion:  "Fix the syntax error; the file does not parse",
					Severity:    model.SeverityHigh,
				})
			}
			return issues, nil
		},
	}
}
