package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"review-bot-go/internal/analysis/syntax"
	"review-bot-go/internal/model"
)

// Python-specific rules. The line rules mirror common review nits; the
// AST rules use the tree-sitter grammar for checks a regex cannot do
// reliably.

var (
	printCallRe  = regexp.MustCompile(`\bprint\s*\(`)
	commaSpaceRe = regexp.MustCompile(`,[^\s\]]`)
)

func newNoneComparisonRule() Rule {
	return &lineCheck{
		name:     "none_comparison",
		category: model.CategoryBug,
		check: func(line string, lineNum int) *model.Issue {
			if strings.Contains(line, "is None") {
				return nil
			}
			if !strings.Contains(line, "== None") && !strings.Contains(line, "!= None") {
				return nil
			}
			return &model.Issue{
				Category:    model.CategoryBug,
				Line:        lineNum,
				Description: "Use 'is None' instead of '== None'",
				Suggestion:  "Replace '== None' with 'is None'",
				Severity:    model.SeverityMedium,
			}
		},
	}
}

func newStringConcatRule() Rule {
	return &lineCheck{
		name:     "string_concat",
		category: model.CategoryPerformance,
		check: func(line string, lineNum int) *model.Issue {
			if !strings.Contains(line, "+=") || !strings.Contains(strings.ToLower(line), "str") {
				return nil
			}
			return &model.Issue{
				Category:    model.CategoryPerformance,
				Line:        lineNum,
				Description: "Potential inefficient string concatenation",
				Suggestion:  "Consider using join() or f-strings for better performance",
				Severity:    model.SeverityMedium,
			}
		},
	}
}

func newPrintStatementRule() Rule {
	return &lineCheck{
		name:     "print_statement",
		category: model.CategoryBestPractice,
		check: func(line string, lineNum int) *model.Issue {
			if !printCallRe.MatchString(line) {
				return nil
			}
			return &model.Issue{
				Category:    model.CategoryBestPractice,
				Line:        lineNum,
				Description: "Print statement found",
				Suggestion:  "Consider using logging instead of print statements",
				Severity:    model.SeverityLow,
			}
		},
	}
}

func newCommaSpaceRule() Rule {
	return &lineCheck{
		name:     "comma_space",
		category: model.CategoryStyle,
		check: func(line string, lineNum int) *model.Issue {
			if !commaSpaceRe.MatchString(line) {
				return nil
			}
			return &model.Issue{
				Category:    model.CategoryStyle,
				Line:        lineNum,
				Description: "Missing space after comma",
				Suggestion:  "Add space after comma",
				Severity:    model.SeverityLow,
			}
		},
	}
}

func newBareExceptRule() Rule {
	return &fileCheck{
		name:     "bare_except",
		category: model.CategoryBug,
		check: func(file *model.ChangedFile) ([]model.Issue, error) {
			lines, err := syntax.PythonBareExcepts([]byte(file.Content()))
			if err != nil {
				return nil, err
			}
			var issues []model.Issue
			for _, line := range lines {
				issues = append(issues, model.Issue{
					Category:    model.CategoryBug,
					Line:        line,
					Description: "Bare except clause swallows all errors",
					Suggestion:  "Specify exception type or use 'except Exception:'",
					Severity:    model.SeverityMedium,
				})
			}
			return issues, nil
		},
	}
}

func newMutableDefaultRule() Rule {
	return &fileCheck{
		name:     "mutable_default",
		category: model.CategoryBestPractice,
		check: func(file *model.ChangedFile) ([]model.Issue, error) {
			lines, err := syntax.PythonMutableDefaults([]byte(file.Content()))
			if err != nil {
				return nil, err
			}
			var issues []model.Issue
			for _, line := range lines {
				issues = append(issues, model.Issue{
					Category:    model.CategoryBestPractice,
					Line:        line,
					Description: "Mutable default argument",
					Suggestion:  "Default to None and create the object inside the function",
					Severity:    model.SeverityLow,
				})
			}
			return issues, nil
		},
	}
}

func newMissingDocstringRule() Rule {
	return &fileCheck{
		name:     "missing_docstring",
		category: model.CategoryBestPractice,
		check: func(file *model.ChangedFile) ([]model.Issue, error) {
			funcs, err := syntax.PythonPublicFuncs([]byte(file.Content()))
			if err != nil {
				return nil, err
			}
			var issues []model.Issue
			for _, fn := range funcs {
				if fn.HasDocstring {
					continue
				}
				issues = append(issues, model.Issue{
					Category:    model.CategoryBestPractice,
					Line:        fn.Line,
					Description: fmt.Sprintf("Public function '%s' has no docstring", fn.Name),
					Suggestion:  "Add a docstring describing the function's behavior",
					Severity:    model.SeverityLow,
				})
			}
			return issues, nil
		},
	}
}
