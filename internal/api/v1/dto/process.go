package dto

import (
	"strings"

	"echoscribe/internal/api/errors"
	"echoscribe/internal/app/model"
)

// ProcessRequest asks the pipeline to run one source end to end.
type ProcessRequest struct {
	Source            string  `json:"source" binding:"required"`
	OutputDestination string  `json:"output_destination,omitempty"`
	MergeGapTolerance float64 `json:"merge_gap_tolerance,omitempty"`
	TimeoutSec        int     `json:"timeout_sec,omitempty"`
}

// Validate applies domain rules beyond struct tags.
func (r *ProcessRequest) Validate() error {
	fields := make(map[string]string)
	if strings.TrimSpace(r.Source) == "" {
		fields["source"] = "must not be blank"
	}
	if r.MergeGapTolerance < 0 {
		fields["merge_gap_tolerance"] = "must not be negative"
	}
	if r.TimeoutSec < 0 {
		fields["timeout_sec"] = "must not be negative"
	}
	if len(fields) > 0 {
		return errors.NewValidationError("Validation failed", fields)
	}
	return nil
}

// AlignedSegment is the wire form of one speaker-attributed span.
type AlignedSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker"`
}

// ProcessResponse reports the outcome of one pipeline run.
type ProcessResponse struct {
	Source         string           `json:"source"`
	Status         string           `json:"status"`
	Segments       []AlignedSegment `json:"segments,omitempty"`
	OutputLocation string           `json:"output_location,omitempty"`
	FailedStage    string           `json:"failed_stage,omitempty"`
	Message        string           `json:"message,omitempty"`
	ElapsedMs      int64            `json:"elapsed_ms"`
}

// NewProcessResponse converts a pipeline result to its wire form.
func NewProcessResponse(result model.ProcessingResult) ProcessResponse {
	resp := ProcessResponse{
		Source:         result.Source,
		Status:         string(result.Status),
		OutputLocation: result.OutputLocation,
		FailedStage:    string(result.FailedStage),
		Message:        result.Message,
		ElapsedMs:      result.Elapsed.Milliseconds(),
	}
	for _, seg := range result.Segments {
		resp.Segments = append(resp.Segments, AlignedSegment{
			Start:   seg.Start,
			End:     seg.End,
			Text:    seg.Text,
			Speaker: seg.SpeakerID,
		})
	}
	return resp
}

// RunResponse is one run-history row.
type RunResponse struct {
	ID             int    `json:"id"`
	Source         string `json:"source"`
	Status         string `json:"status"`
	FailedStage    string `json:"failed_stage,omitempty"`
	SegmentCount   int    `json:"segment_count"`
	OutputLocation string `json:"output_location,omitempty"`
	DurationMs     int64  `json:"duration_ms"`
	CreatedAt      string `json:"created_at"`
}

// NewRunResponse converts a run record to its wire form.
func NewRunResponse(rec model.RunRecord) RunResponse {
	return RunResponse{
		ID:             rec.ID,
		Source:         rec.Source,
		Status:         rec.Status,
		FailedStage:    rec.FailedStage,
		SegmentCount:   rec.SegmentCount,
		OutputLocation: rec.OutputLocation,
		DurationMs:     rec.DurationMs,
		CreatedAt:      rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
