package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"echoscribe/internal/api/middleware"
	"echoscribe/internal/api/v1/dto"
	"echoscribe/internal/app/model"
	"echoscribe/internal/app/orchestrator"
)

// Processor is the slice of the orchestrator the API needs.
type Processor interface {
	Process(ctx context.Context, source string, opts orchestrator.Options) model.ProcessingResult
}

// ProcessHandler exposes the pipeline over HTTP.
type ProcessHandler struct {
	processor Processor
}

// NewProcessHandler creates a ProcessHandler.
func NewProcessHandler(processor Processor) *ProcessHandler {
	return &ProcessHandler{processor: processor}
}

// Process runs the pipeline synchronously for one source.
// POST /api/v1/process
func (h *ProcessHandler) Process(c *gin.Context) {
	var req dto.ProcessRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	opts := orchestrator.Options{
		OutputDestination: req.OutputDestination,
		MergeGapTolerance: req.MergeGapTolerance,
		Deadline:          time.Duration(req.TimeoutSec) * time.Second,
	}
	result := h.processor.Process(c.Request.Context(), req.Source, opts)

	resp := dto.NewProcessResponse(result)
	if result.OK() {
		c.JSON(http.StatusOK, resp)
		return
	}

	// The failure envelope is the response body; the status code reflects
	// where the run broke.
	c.JSON(statusForFailure(result), resp)
}

func statusForFailure(result model.ProcessingResult) int {
	if result.Status == model.StatusTimeout {
		return http.StatusGatewayTimeout
	}
	switch result.FailedStage {
	case model.StageAcquisition:
		return http.StatusBadRequest
	case model.StageTranscription, model.StageDiarization:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
