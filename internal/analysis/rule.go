package analysis

import "review-bot-go/internal/model"

// Rule is a pure, independent check producing zero or more issues for
// a single changed file. Rules must only report lines inside the
// file's touched ranges and may not keep state between calls.
type Rule interface {
	// Name returns the unique identifier for this rule
	Name() string

	// Category returns the issue category this rule reports
	Category() model.IssueCategory

	// Check analyzes one changed file and returns its findings
	Check(file *model.ChangedFile) ([]model.Issue, error)
}

// lineCheck adapts a per-line predicate into a Rule. Most of the text
// rules are a regex or length check over each touched line.
type lineCheck struct {
	name     string
	category model.IssueCategory
	check    func(line string, lineNum int) *model.Issue
}

func (r *lineCheck) Name() string                  { return r.name }
func (r *lineCheck) Category() model.IssueCategory { return r.category }

func (r *lineCheck) Check(file *model.ChangedFile) ([]model.Issue, error) {
	var issues []model.Issue
	for _, n := range file.TouchedLines() {
		if issue := r.check(file.Lines[n-1], n); issue != nil {
			issues = append(issues, *issue)
		}
	}
	return issues, nil
}

// fileCheck adapts a whole-file scan (the AST rules) into a Rule. The
// scan sees the full text; the adapter confines its findings to the
// touched ranges.
type fileCheck struct {
	name     string
	category model.IssueCategory
	check    func(file *model.ChangedFile) ([]model.Issue, error)
}

func (r *fileCheck) Name() string                  { return r.name }
func (r *fileCheck) Category() model.IssueCategory { return r.category }

func (r *fileCheck) Check(file *model.ChangedFile) ([]model.Issue, error) {
	issues, err := r.check(file)
	if err != nil {
		return nil, err
	}
	scoped := issues[:0]
	for _, issue := range issues {
		if file.InTouchedRange(issue.Line) {
			scoped = append(scoped, issue)
		}
	}
	return scoped, nil
}
