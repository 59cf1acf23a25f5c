package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "echoscribe/internal/api/errors"
	"echoscribe/internal/api/middleware"
	"echoscribe/internal/api/v1/dto"
	"echoscribe/internal/app/repository"
)

// RunsHandler serves the run history.
type RunsHandler struct {
	db repository.RunDAO
}

// NewRunsHandler creates a RunsHandler.
func NewRunsHandler(db repository.RunDAO) *RunsHandler {
	return &RunsHandler{db: db}
}

// List returns all recorded runs, newest first.
// GET /api/v1/runs
func (h *RunsHandler) List(c *gin.Context) {
	if h.db == nil {
		middleware.HandleError(c, apierrors.NewNotFoundError("run history"))
		return
	}

	records, err := h.db.GetAll()
	if err != nil {
		middleware.HandleError(c, apierrors.NewInternalError("failed to load run history"))
		return
	}

	runs := make([]dto.RunResponse, 0, len(records))
	for _, rec := range records {
		runs = append(runs, dto.NewRunResponse(rec))
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "total": len(runs)})
}
