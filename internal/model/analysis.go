package model

import "strings"

// IssueCategory classifies what kind of problem a rule reports
type IssueCategory string

const (
	CategoryStyle        IssueCategory = "style"
	CategoryBug          IssueCategory = "bug"
	CategoryPerformance  IssueCategory = "performance"
	CategoryBestPractice IssueCategory = "best_practice"
	CategorySecurity     IssueCategory = "security"
)

// Severity levels for issues
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe)
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Issue is a single finding produced by exactly one rule
type Issue struct {
	Category    IssueCategory `json:"type"`
	Line        int           `json:"line"`
	Description string        `json:"description"`
	Suggestion  string        `json:"suggestion"`
	Severity    Severity      `json:"severity"`
	Commentary  string        `json:"commentary,omitempty"`
}

// FileAnalysis groups the issues found in one changed file
type FileAnalysis struct {
	Name   string  `json:"name"`
	Issues []Issue `json:"issues"`
}

// Summary holds counts derived from the per-file issue lists
type Summary struct {
	TotalFiles     int `json:"total_files"`
	TotalIssues    int `json:"total_issues"`
	CriticalIssues int `json:"critical_issues"`
	HighIssues     int `json:"high_issues"`
	MediumIssues   int `json:"medium_issues"`
	LowIssues      int `json:"low_issues"`
}

// AnalysisResult is the full output of one analysis run
type AnalysisResult struct {
	Files   []FileAnalysis `json:"files"`
	Summary Summary        `json:"summary"`
	Notes   []string       `json:"notes,omitempty"`
}

// ComputeSummary derives the summary counts from the per-file issue
// lists. The summary is always recomputed, never stored separately, so
// it cannot drift from the findings.
func ComputeSummary(files []FileAnalysis) Summary {
	s := Summary{TotalFiles: len(files)}
	for _, f := range files {
		for _, issue := range f.Issues {
			s.TotalIssues++
			switch issue.Severity {
			case SeverityCritical:
				s.CriticalIssues++
			case SeverityHigh:
				s.HighIssues++
			case SeverityMedium:
				s.MediumIssues++
			case SeverityLow:
				s.LowIssues++
			}
		}
	}
	return s
}

// LineRange is an inclusive interval of 1-based line numbers
type LineRange struct {
	Start int
	End   int
}

// ChangedFile carries the post-change text of one file in a change
// request plus the line ranges the change actually touched. Immutable
// once fetched.
type ChangedFile struct {
	Path          string
	Lines         []string
	TouchedRanges []LineRange
}

// NewChangedFile splits content into lines
func NewChangedFile(path, content string, touched []LineRange) ChangedFile {
	return ChangedFile{
		Path:          path,
		Lines:         strings.Split(content, "\n"),
		TouchedRanges: touched,
	}
}

// Content reassembles the file text
func (f *ChangedFile) Content() string {
	return strings.Join(f.Lines, "\n")
}

// InTouchedRange reports whether a 1-based line number falls inside one
// of the modified ranges
func (f *ChangedFile) InTouchedRange(line int) bool {
	for _, r := range f.TouchedRanges {
		if line >= r.Start && line <= r.End {
			return true
		}
	}
	return false
}

// TouchedLines returns the modified line numbers that exist in the
// file, in ascending order
func (f *ChangedFile) TouchedLines() []int {
	var lines []int
	for _, r := range f.TouchedRanges {
		for n := r.Start; n <= r.End && n <= len(f.Lines); n++ {
			if n >= 1 {
				lines = append(lines, n)
			}
		}
	}
	return lines
}
