package handlers

import (
	"errors"
	"net/http"

	"learnpath/internal/apperrors"
	"learnpath/internal/application/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProgressHandler struct {
	progress *usecase.ProgressUseCase
}

func NewProgressHandler(progress *usecase.ProgressUseCase) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// GET /health
func (h *ProgressHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"serverUp": true})
}

// GET /api/v1/paths
func (h *ProgressHandler) ListPaths(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	paths, err := h.progress.ListPaths(c, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch paths"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"paths": paths})
}

// GET /api/v1/paths/:id
func (h *ProgressHandler) GetPath(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	pathID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid path ID"})
		return
	}

	detail, err := h.progress.GetPathDetail(c, userID, pathID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPathNotAssigned):
			c.JSON(http.StatusNotFound, gin.H{"error": "Path not found or not assigned to user"})
		case errors.Is(err, apperrors.ErrPathNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Path not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch path"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": detail})
}

// POST /api/v1/progress
func (h *ProgressHandler) CompleteModule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		PathID   string `json:"path_id"`
		ModuleID string `json:"module_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PathID == "" || req.ModuleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path_id and module_id are required"})
		return
	}

	pathID, errPath := uuid.Parse(req.PathID)
	moduleID, errModule := uuid.Parse(req.ModuleID)
	if errPath != nil || errModule != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid path_id or module_id"})
		return
	}

	result, err := h.progress.CompleteModule(c, userID, pathID, moduleID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPathNotAssigned):
			c.JSON(http.StatusNotFound, gin.H{"error": "Path not assigned to user"})
		case errors.Is(err, apperrors.ErrModuleNotInPath):
			c.JSON(http.StatusNotFound, gin.H{"error": "Module not found in this path"})
		case errors.Is(err, apperrors.ErrPrerequisiteNotMet):
			c.JSON(http.StatusForbidden, gin.H{"error": "You must complete the previous module first"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record progress"})
		}
		return
	}

	message := "Module completed successfully"
	if result.AlreadyDone {
		message = "Module already completed"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    message,
		"completion": result.Completion,
		"progress":   result.Progress,
	})
}

// currentUserID pulls the authenticated user out of the request context. The
// auth middleware guarantees it is set on protected routes.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return uuid.Nil, false
	}
	return userID, true
}
