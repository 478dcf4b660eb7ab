package model

import "time"

// AnalyzePRRequest is the request body for submitting a pull request
// for analysis
type AnalyzePRRequest struct {
	RepoURL     string `json:"repo_url" binding:"required"`
	PRNumber    int    `json:"pr_number" binding:"required,min=1"`
	GitHubToken string `json:"github_token"`
}

// TaskResponse is returned from the submission endpoint
type TaskResponse struct {
	TaskID  string    `json:"task_id"`
	Status  TaskState `json:"status"`
	Message string    `json:"message"`
}

// TaskStatusResponse is returned from the status endpoint
type TaskStatusResponse struct {
	TaskID    string    `json:"task_id"`
	Status    TaskState `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Progress  string    `json:"progress,omitempty"`
}

// TaskResultsResponse is returned from the results endpoint. Results
// are present only for completed tasks, the error fields only for
// failed ones.
type TaskResultsResponse struct {
	TaskID       string          `json:"task_id"`
	Status       TaskState       `json:"status"`
	Results      *AnalysisResult `json:"results,omitempty"`
	ErrorCode    string          `json:"error_code,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
