package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"review-bot-go/internal/github"
	"review-bot-go/internal/model"
	"review-bot-go/internal/store"
	"review-bot-go/internal/task"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReviewController handles the analysis task HTTP endpoints
type ReviewController struct {
	manager *task.Manager
	store   *store.TaskStore
	logger  *zap.Logger
}

// NewReviewController creates a new review controller
func NewReviewController(manager *task.Manager, st *store.TaskStore, logger *zap.Logger) *ReviewController {
	return &ReviewController{
		manager: manager,
		store:   st,
		logger:  logger,
	}
}

// AnalyzePR handles POST /api/v1/analyze-pr. It validates the request,
// creates a pending task record and returns the task id; the worker
// pool picks the record up asynchronously.
func (rc *ReviewController) AnalyzePR(c *gin.Context) {
	var request model.AnalyzePRRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		rc.logger.Error("Invalid request payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}

	owner, name, err := github.ParseRepo(request.RepoURL)
	if err != nil {
		// validation failure: no record is created
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid repository reference",
			"details": err.Error(),
		})
		return
	}
	repository := owner + "/" + name

	taskID, err := rc.manager.Create(c.Request.Context(), repository, request.PRNumber, request.GitHubToken)
	if err != nil {
		rc.logger.Error("Failed to create analysis task",
			zap.String("repository", repository),
			zap.Int("pr_number", request.PRNumber),
			zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Task store unavailable, please retry",
		})
		return
	}

	c.JSON(http.StatusOK, model.TaskResponse{
		TaskID:  taskID,
		Status:  model.TaskStatePending,
		Message: "PR analysis task has been queued for processing",
	})
}

// GetStatus handles GET /api/v1/status/:task_id
func (rc *ReviewController) GetStatus(c *gin.Context) {
	taskID := c.Param("task_id")

	rec, err := rc.manager.Get(c.Request.Context(), taskID)
	if err != nil {
		rc.respondLookupError(c, taskID, err)
		return
	}

	c.JSON(http.StatusOK, model.TaskStatusResponse{
		TaskID:    rec.TaskID,
		Status:    rec.State,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		Progress:  rec.Progress,
	})
}

// GetResults handles GET /api/v1/results/:task_id. The result is
// present only when the task completed, the error fields only when it
// failed.
func (rc *ReviewController) GetResults(c *gin.Context) {
	taskID := c.Param("task_id")

	rec, err := rc.manager.Get(c.Request.Context(), taskID)
	if err != nil {
		rc.respondLookupError(c, taskID, err)
		return
	}

	response := model.TaskResultsResponse{
		TaskID:    rec.TaskID,
		Status:    rec.State,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
	if rec.State == model.TaskStateCompleted && rec.Result != "" {
		var result model.AnalysisResult
		if err := json.Unmarshal([]byte(rec.Result), &result); err != nil {
			rc.logger.Error("Failed to parse stored result",
				zap.String("task_id", taskID), zap.Error(err))
		} else {
			response.Results = &result
		}
	}
	if rec.State == model.TaskStateFailed {
		response.ErrorCode = rec.ErrorCode
		response.ErrorMessage = rec.ErrorMessage
	}

	c.JSON(http.StatusOK, response)
}

// Health handles GET /api/v1/health
func (rc *ReviewController) Health(c *gin.Context) {
	if err := rc.store.Ping(c.Request.Context()); err != nil {
		rc.logger.Error("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

// Index handles GET / with API information
func (rc *ReviewController) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Code Review Agent API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"analyze_pr":   "POST /api/v1/analyze-pr",
			"task_status":  "GET /api/v1/status/{task_id}",
			"task_results": "GET /api/v1/results/{task_id}",
		},
	})
}

func (rc *ReviewController) respondLookupError(c *gin.Context, taskID string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	rc.logger.Error("Failed to load task",
		zap.String("task_id", taskID), zap.Error(err))
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error": "Task store unavailable, please retry",
	})
}
