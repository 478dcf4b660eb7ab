package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"review-bot-go/internal/model"
	"review-bot-go/internal/store"
	"review-bot-go/internal/task"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (*gin.Engine, *task.Manager, *store.TaskStore) {
	t.Helper()
	logger := zap.NewNop()

	st, err := store.Open(filepath.Join(t.TempDir(), "tasks.db"), logger)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	manager := task.NewManager(st, 10*time.Minute, logger)
	rc := NewReviewController(manager, st, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", rc.Index)
	v1 := router.Group("/api/v1")
	v1.POST("/analyze-pr", rc.AnalyzePR)
	v1.GET("/status/:task_id", rc.GetStatus)
	v1.GET("/results/:task_id", rc.GetResults)
	v1.GET("/health", rc.Health)

	return router, manager, st
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzePR_QueuesTask(t *testing.T) {
	router, manager, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/analyze-pr", model.AnalyzePRRequest{
		RepoURL:  "https://github.com/owner/repo",
		PRNumber: 42,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp model.TaskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.TaskID == "" || resp.Status != model.TaskStatePending {
		t.Fatalf("Expected a pending task id, got %+v", resp)
	}

	rec, err := manager.Get(context.Background(), resp.TaskID)
	if err != nil {
		t.Fatalf("Created task must be durable: %v", err)
	}
	if rec.Repository != "owner/repo" || rec.PRNumber != 42 {
		t.Fatalf("Record mismatch: %+v", rec)
	}
}

func TestAnalyzePR_InvalidPayloadCreatesNoTask(t *testing.T) {
	router, _, st := newTestRouter(t)

	cases := []any{
		map[string]any{"pr_number": 42},                             // missing repo_url
		map[string]any{"repo_url": "https://github.com/owner/repo"}, // missing pr_number
		map[string]any{"repo_url": "https://github.com/owner/repo", "pr_number": 0},
		map[string]any{"repo_url": "not a repository", "pr_number": 1},
	}
	for _, body := range cases {
		w := doJSON(t, router, http.MethodPost, "/api/v1/analyze-pr", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400 for %v, got %d: %s", body, w.Code, w.Body.String())
		}
	}

	rec, err := st.ClaimNext(context.Background(), 10*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNext failed: %v", err)
	}
	if rec != nil {
		t.Fatalf("Rejected submissions must leave no record, found %+v", rec)
	}
}

func TestGetStatus_UnknownTask(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/status/no-such-task", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetResults_Lifecycle(t *testing.T) {
	router, manager, _ := newTestRouter(t)
	ctx := context.Background()

	taskID, err := manager.Create(ctx, "owner/repo", 7, "")
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	// pending: no results yet
	w := doJSON(t, router, http.MethodGet, "/api/v1/results/"+taskID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp model.TaskResultsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Status != model.TaskStatePending || resp.Results != nil {
		t.Fatalf("Pending task must carry no results: %+v", resp)
	}

	// drive the lifecycle to completed
	if _, err := manager.ClaimNext(ctx); err != nil {
		t.Fatalf("Failed to claim: %v", err)
	}
	result := &model.AnalysisResult{
		Files: []model.FileAnalysis{{
			Name: "app.py",
			Issues: []model.Issue{{
				Category:    model.CategoryStyle,
				Line:        3,
				Description: "Line too long (130 characters)",
				Suggestion:  "Break line into multiple lines or refactor",
				Severity:    model.SeverityLow,
			}},
		}},
	}
	result.Summary = model.ComputeSummary(result.Files)
	if err := manager.Complete(ctx, taskID, result); err != nil {
		t.Fatalf("Failed to complete: %v", err)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/results/"+taskID, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Status != model.TaskStateCompleted || resp.Results == nil {
		t.Fatalf("Completed task must carry results: %+v", resp)
	}
	if resp.Results.Summary.TotalIssues != 1 {
		t.Fatalf("Result mismatch: %+v", resp.Results)
	}
	if resp.ErrorCode != "" || resp.ErrorMessage != "" {
		t.Fatalf("Completed task must carry no error fields: %+v", resp)
	}
}

func TestGetResults_FailedTask(t *testing.T) {
	router, manager, _ := newTestRouter(t)
	ctx := context.Background()

	taskID, err := manager.Create(ctx, "owner/repo", 9, "")
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if _, err := manager.ClaimNext(ctx); err != nil {
		t.Fatalf("Failed to claim: %v", err)
	}
	if err := manager.Fail(ctx, taskID, model.ErrCodeSourceNotFound, "pull request not found"); err != nil {
		t.Fatalf("Failed to fail: %v", err)
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/results/"+taskID, nil)
	var resp model.TaskResultsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Status != model.TaskStateFailed {
		t.Fatalf("Expected failed, got %s", resp.Status)
	}
	if resp.ErrorCode != model.ErrCodeSourceNotFound || resp.ErrorMessage == "" {
		t.Fatalf("Failed task must carry error fields: %+v", resp)
	}
	if resp.Results != nil {
		t.Fatalf("Failed task must carry no results: %+v", resp)
	}
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestIndex(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
}
