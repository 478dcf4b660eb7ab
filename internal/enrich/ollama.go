// Package enrich adds optional AI commentary to analysis results. It
// is a failure-isolated post-processing stage: the deterministic rule
// findings never depend on it, and any error leaves the result as-is.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"review-bot-go/internal/config"
	"review-bot-go/internal/model"

	"go.uber.org/zap"
)

// maxCommentaries caps the number of per-issue generations per task so
// a huge change cannot stall a worker on the model for minutes
const maxCommentaries = 20

// OllamaCommentator generates per-issue commentary with a local Ollama
// model
type OllamaCommentator struct {
	url     string
	model   string
	httpCli *http.Client
	logger  *zap.Logger
}

// NewOllamaCommentator creates the commentator
func NewOllamaCommentator(cfg config.OllamaConfig, logger *zap.Logger) *OllamaCommentator {
	return &OllamaCommentator{
		url:     strings.TrimRight(cfg.URL, "/") + "/api/generate",
		model:   cfg.Model,
		httpCli: &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
		logger:  logger,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Enrich returns a copy of the result with commentary attached to the
// leading issues. Findings, ordering and summary are untouched. On any
// error the caller keeps the unenriched result.
func (o *OllamaCommentator) Enrich(ctx context.Context, result *model.AnalysisResult) (*model.AnalysisResult, error) {
	enriched := cloneResult(result)

	generated := 0
	for fi := range enriched.Files {
		file := &enriched.Files[fi]
		for ii := range file.Issues {
			if generated >= maxCommentaries {
				return enriched, nil
			}
			commentary, err := o.generate(ctx, file.Name, &file.Issues[ii])
			if err != nil {
				return nil, err
			}
			file.Issues[ii].Commentary = commentary
			generated++
		}
	}
	return enriched, nil
}

func (o *OllamaCommentator) generate(ctx context.Context, fileName string, issue *model.Issue) (string, error) {
	prompt := fmt.Sprintf(
		"You are reviewing a code change. File %s line %d has a %s issue (%s severity): %s. "+
			"Suggested fix: %s. In two sentences, explain to the author why this matters.",
		fileName, issue.Line, issue.Category, issue.Severity, issue.Description, issue.Suggestion)

	payload, err := json.Marshal(generateRequest{Model: o.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpCli.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read ollama response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse ollama response: %w", err)
	}
	return strings.TrimSpace(out.Response), nil
}

// cloneResult deep-copies a result so enrichment never mutates the
// cached original
func cloneResult(r *model.AnalysisResult) *model.AnalysisResult {
	out := &model.AnalysisResult{
		Files:   make([]model.FileAnalysis, len(r.Files)),
		Summary: r.Summary,
		Notes:   append([]string(nil), r.Notes...),
	}
	for i, f := range r.Files {
		out.Files[i] = model.FileAnalysis{
			Name:   f.Name,
			Issues: append([]model.Issue(nil), f.Issues...),
		}
	}
	return out
}
