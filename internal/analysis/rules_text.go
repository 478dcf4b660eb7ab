package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"review-bot-go/internal/model"
)

// Rules in this file apply to every language. They operate on single
// lines within the touched ranges.

func newLineLengthRule(maxLength int) Rule {
	return &lineCheck{
		name:     "line_length",
		category: model.CategoryStyle,
		check: func(line string, lineNum int) *model.Issue {
			if len(line) <= maxLength {
				return nil
			}
			return &model.Issue{
				Category:    model.CategoryStyle,
				Line:        lineNum,
				Description: fmt.Sprintf("Line too long (%d characters)", len(line)),
				Suggestion:  "Break line into multiple lines or refactor",
				Severity:    model.SeverityLow,
			}
		},
	}
}

func newTrailingWhitespaceRule() Rule {
	return &lineCheck{
		name:     "trailing_whitespace",
		category: model.CategoryStyle,
		check: func(line string, lineNum int) *model.Issue {
			if !strings.HasSuffix(line, " ") && !strings.HasSuffix(line, "\t") {
				return nil
			}
			return &model.Issue{
				Category:    model.CategoryStyle,
				Line:        lineNum,
				Description: "Trailing whitespace",
				Suggestion:  "Remove trailing whitespace",
				Severity:    model.SeverityLow,
			}
		},
	}
}

func newTodoCommentRule() Rule {
	return &lineCheck{
		name:     "todo_comment",
		category: model.CategoryBestPractice,
		check: func(line string, lineNum int) *model.Issue {
			if !strings.Contains(strings.ToUpper(line), "TODO") {
				return nil
			}
			return &model.Issue{
				Category:    model.CategoryBestPractice,
				Line:        lineNum,
				Description: "TODO comment found",
				Suggestion:  "Consider creating a ticket or implementing the TODO",
				Severity:    model.SeverityLow,
			}
		},
	}
}

// credentialPatterns are regex heuristics for secrets committed in
// source: assignments of passwords/keys/tokens, AWS key ids, GitHub
// and OpenAI-style tokens, private key blocks.
var credentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(password|passwd|secret|credential)\s*[:=]\s*["'][^"']{4,}["']`),
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|token)\s*[:=]\s*["'][A-Za-z0-9/+=_-]{16,}["']`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	regexp.MustCompile(`sk-[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+)?PRIVATE KEY-----`),
}

func newHardcodedCredentialRule() Rule {
	return &lineCheck{
		name:     "hardcoded_credential",
		category: model.CategorySecurity,
		check: func(line string, lineNum int) *model.Issue {
			for _, pat := range credentialPatterns {
				if pat.MatchString(line) {
					return &model.Issue{
						Category:    model.CategorySecurity,
						Line:        lineNum,
						Description: "Possible hardcoded credential",
						Suggestion:  "Move the secret to environment variables or a secret manager and rotate it",
						Severity:    model.SeverityCritical,
					}
				}
			}
			return nil
		},
	}
}
