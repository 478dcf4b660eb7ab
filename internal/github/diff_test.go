package github

import (
	"testing"
)

const sampleDiff = `diff --git a/app/service.py b/app/service.py
index 83db48f..bf269f4 100644
--- a/app/service.py
+++ b/app/service.py
@@ -10,3 +10,5 @@ def handler():
 context
+added line
+another added line
 context
@@ -40,2 +42,1 @@ def other():
 context
-removed
diff --git a/README.md b/README.md
index 1111111..2222222 100644
--- a/README.md
+++ b/README.md
@@ -1 +1,2 @@
 title
+new line
`

func TestParseDiff_TouchedRanges(t *testing.T) {
	touched := parseDiff(sampleDiff)

	ranges, ok := touched["app/service.py"]
	if !ok {
		t.Fatal("Expected app/service.py in parsed diff")
	}
	if len(ranges) != 2 {
		t.Fatalf("Expected 2 hunks, got %d: %+v", len(ranges), ranges)
	}
	if ranges[0].Start != 10 || ranges[0].End != 14 {
		t.Fatalf("Unexpected first hunk range: %+v", ranges[0])
	}
	if ranges[1].Start != 42 || ranges[1].End != 42 {
		t.Fatalf("Unexpected second hunk range: %+v", ranges[1])
	}

	md := touched["README.md"]
	if len(md) != 1 || md[0].Start != 1 || md[0].End != 2 {
		t.Fatalf("Unexpected README.md ranges: %+v", md)
	}
}

func TestParseDiff_SingleLineHunk(t *testing.T) {
	diff := "diff --git a/x.go b/x.go\n@@ -5 +5 @@\n-old\n+new\n"
	touched := parseDiff(diff)
	ranges := touched["x.go"]
	if len(ranges) != 1 || ranges[0].Start != 5 || ranges[0].End != 5 {
		t.Fatalf("Unexpected ranges for count-less hunk: %+v", ranges)
	}
}

func TestParseDiff_DeletionOnlyHunk(t *testing.T) {
	diff := "diff --git a/x.go b/x.go\n@@ -5,3 +4,0 @@\n-a\n-b\n-c\n"
	touched := parseDiff(diff)
	if len(touched["x.go"]) != 0 {
		t.Fatalf("Pure deletion must touch nothing, got %+v", touched["x.go"])
	}
}
