package cache

import (
	"fmt"
	"testing"
	"time"

	"review-bot-go/internal/model"

	"go.uber.org/zap"
)

func testFiles(content string) []model.ChangedFile {
	return []model.ChangedFile{
		model.NewChangedFile("app.py", content, []model.LineRange{{Start: 1, End: 1}}),
	}
}

func TestFingerprint_StableAndSensitive(t *testing.T) {
	files := testFiles("x = 1")

	a := Fingerprint("owner/repo", 7, files)
	b := Fingerprint("owner/repo", 7, testFiles("x = 1"))
	if a != b {
		t.Fatalf("Same inputs must produce the same fingerprint: %s vs %s", a, b)
	}

	if Fingerprint("owner/repo", 8, files) == a {
		t.Fatalf("PR number must be part of the fingerprint")
	}
	if Fingerprint("owner/other", 7, files) == a {
		t.Fatalf("Repository must be part of the fingerprint")
	}
	if Fingerprint("owner/repo", 7, testFiles("x = 2")) == a {
		t.Fatalf("File content must be part of the fingerprint")
	}
}

func TestCache_PutGet(t *testing.T) {
	c := New(10, time.Hour, zap.NewNop())
	result := &model.AnalysisResult{Summary: model.Summary{TotalFiles: 1}}

	if _, ok := c.Get("k"); ok {
		t.Fatalf("Expected miss on empty cache")
	}

	c.Put("k", result)
	got, ok := c.Get("k")
	if !ok {
		t.Fatalf("Expected hit after Put")
	}
	if got != result {
		t.Fatalf("Expected the stored result back")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New(10, time.Millisecond, zap.NewNop())
	c.Put("k", &model.AnalysisResult{})

	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatalf("Expected entry to expire after TTL")
	}
	if c.Len() != 0 {
		t.Fatalf("Expired entry must be dropped on access, len=%d", c.Len())
	}
}

func TestCache_EvictsOldestAtCapacity(t *testing.T) {
	c := New(3, time.Hour, zap.NewNop())
	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("k%d", i), &model.AnalysisResult{})
		time.Sleep(time.Millisecond)
	}

	c.Put("k3", &model.AnalysisResult{})

	if c.Len() != 3 {
		t.Fatalf("Expected cache to stay at capacity, len=%d", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Fatalf("Expected the oldest entry to be evicted")
	}
	if _, ok := c.Get("k3"); !ok {
		t.Fatalf("Expected the newest entry to be present")
	}
}

func TestCache_OverwriteDoesNotEvict(t *testing.T) {
	c := New(2, time.Hour, zap.NewNop())
	c.Put("a", &model.AnalysisResult{})
	c.Put("b", &model.AnalysisResult{})

	c.Put("a", &model.AnalysisResult{})

	if c.Len() != 2 {
		t.Fatalf("Overwriting an existing key must not evict, len=%d", c.Len())
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatalf("Expected untouched entry to survive an overwrite")
	}
}
