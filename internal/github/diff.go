package github

import (
	"regexp"
	"strconv"
	"strings"

	"review-bot-go/internal/model"
)

var (
	diffHeaderRe = regexp.MustCompile(`^diff --git a/.+ b/(.+)$`)
	hunkHeaderRe = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@`)
)

// parseDiff extracts, for each file in a unified diff, the post-change
// line ranges covered by its hunks. Only the new-file side of each
// hunk header matters; a hunk with no count covers a single line.
func parseDiff(diff string) map[string][]model.LineRange {
	touched := make(map[string][]model.LineRange)
	var current string

	for _, line := range strings.Split(diff, "\n") {
		if m := diffHeaderRe.FindStringSubmatch(line); m != nil {
			current = m[1]
			if _, ok := touched[current]; !ok {
				touched[current] = nil
			}
			continue
		}
		if current == "" {
			continue
		}
		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			start, _ := strconv.Atoi(m[1])
			count := 1
			if m[2] != "" {
				count, _ = strconv.Atoi(m[2])
			}
			if count < 1 {
				// a pure-deletion hunk touches nothing on the new side
				continue
			}
			touched[current] = append(touched[current], model.LineRange{
				Start: start,
				End:   start + count - 1,
			})
		}
	}
	return touched
}
