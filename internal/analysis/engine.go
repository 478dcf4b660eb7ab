// Package analysis implements the rule-based review engine: a pure,
// deterministic function from a set of changed files to categorized,
// severity-ranked issues confined to the lines the change touched.
package analysis

import (
	"fmt"
	"sort"

	"review-bot-go/internal/analysis/syntax"
	"review-bot-go/internal/config"
	"review-bot-go/internal/model"

	"go.uber.org/zap"
)

// Engine holds the ordered rule registry. Rules run independently and
// cannot see each other's output; findings are ordered by line, ties
// broken by registration order, so the result is fully reproducible.
type Engine struct {
	common []Rule
	byLang map[string][]Rule
	logger *zap.Logger
}

// NewEngine creates an engine with the default rule set registered
func NewEngine(cfg config.AnalysisConfig, logger *zap.Logger) *Engine {
	e := &Engine{
		byLang: make(map[string][]Rule),
		logger: logger,
	}

	e.RegisterCommon(newLineLengthRule(cfg.MaxLineLength))
	e.RegisterCommon(newTrailingWhitespaceRule())
	e.RegisterCommon(newTodoCommentRule())
	e.RegisterCommon(newHardcodedCredentialRule())

	for _, lang := range []string{
		syntax.LangGo, syntax.LangJava, syntax.LangJavaScript,
		syntax.LangTypeScript, syntax.LangPython,
	} {
		e.Register(lang, newSyntaxErrorRule(lang))
	}

	e.Register(syntax.LangPython, newNoneComparisonRule())
	e.Register(syntax.LangPython, newBareExceptRule())
	e.Register(syntax.LangPython, newStringConcatRule())
	e.Register(syntax.LangPython, newPrintStatementRule())
	e.Register(syntax.LangPython, newCommaSpaceRule())
	e.Register(syntax.LangPython, newMutableDefaultRule())
	e.Register(syntax.LangPython, newMissingDocstringRule())

	return e
}

// RegisterCommon adds a rule applied to every file regardless of
// language
func (e *Engine) RegisterCommon(rule Rule) {
	e.common = append(e.common, rule)
	e.logger.Debug("Registered rule",
		zap.String("rule", rule.Name()),
		zap.String("language", "all"))
}

// Register adds a rule for one language
func (e *Engine) Register(lang string, rule Rule) {
	e.byLang[lang] = append(e.byLang[lang], rule)
	e.logger.Debug("Registered rule",
		zap.String("rule", rule.Name()),
		zap.String("language", lang))
}

// Analyze runs every applicable rule over each file and assembles the
// result. Files are reported in input order; a failing rule is
// isolated (logged plus a reduced-confidence note) and never aborts
// the others. A file whose language has no registered rules simply
// yields no language-specific issues.
func (e *Engine) Analyze(files []model.ChangedFile) *model.AnalysisResult {
	result := &model.AnalysisResult{
		Files: make([]model.FileAnalysis, 0, len(files)),
	}

	for i := range files {
		file := &files[i]
		rules := e.rulesFor(LanguageForPath(file.Path))

		type ranked struct {
			issue model.Issue
			order int
		}
		var found []ranked

		for order, rule := range rules {
			issues, err := e.runRule(rule, file)
			if err != nil {
				e.logger.Warn("Rule failed",
					zap.String("rule", rule.Name()),
					zap.String("file", file.Path),
					zap.Error(err))
				result.Notes = append(result.Notes, fmt.Sprintf(
					"rule %s failed on %s; findings may be incomplete", rule.Name(), file.Path))
				continue
			}
			for _, issue := range issues {
				found = append(found, ranked{issue: issue, order: order})
			}
		}

		sort.SliceStable(found, func(a, b int) bool {
			if found[a].issue.Line != found[b].issue.Line {
				return found[a].issue.Line < found[b].issue.Line
			}
			return found[a].order < found[b].order
		})

		fa := model.FileAnalysis{Name: file.Path, Issues: make([]model.Issue, 0, len(found))}
		for _, r := range found {
			fa.Issues = append(fa.Issues, r.issue)
		}
		result.Files = append(result.Files, fa)
	}

	result.Summary = model.ComputeSummary(result.Files)
	return result
}

func (e *Engine) rulesFor(lang string) []Rule {
	rules := make([]Rule, 0, len(e.common)+len(e.byLang[lang]))
	rules = append(rules, e.common...)
	if lang != "" {
		rules = append(rules, e.byLang[lang]...)
	}
	return rules
}

// runRule isolates a single rule invocation, converting a panic in a
// rule implementation into an error
func (e *Engine) runRule(rule Rule, file *model.ChangedFile) (issues []model.Issue, err error) {
	defer func() {
		if r := recover(); r != nil {
			issues = nil
			err = fmt.Errorf("rule panicked: %v", r)
		}
	}()
	return rule.Check(file)
}
