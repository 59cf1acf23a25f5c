package model

import "time"

// Stage identifies one discrete phase of the processing pipeline.
type Stage string

const (
	StageAcquisition   Stage = "acquisition"
	StageTranscription Stage = "transcription"
	StageDiarization   Stage = "diarization"
	StageAlignment     Stage = "alignment"
	StagePersistence   Stage = "persistence"
)

// Status of one completed pipeline run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
)

// ProcessingResult is the envelope every invocation surface consumes. It is
// created once by the orchestrator and never mutated afterwards.
//
// On success Segments holds the aligned transcript and OutputLocation the
// persisted artifact (empty when nothing was persisted). On failure Stage and
// Message classify the cause; a persistence failure still carries the
// in-memory segments so in-process callers do not lose computed work.
type ProcessingResult struct {
	Source         string           `json:"source"`
	Status         Status           `json:"status"`
	Segments       []AlignedSegment `json:"segments,omitempty"`
	OutputLocation string           `json:"output_location,omitempty"`
	FailedStage    Stage            `json:"failed_stage,omitempty"`
	Message        string           `json:"message,omitempty"`
	Elapsed        time.Duration    `json:"-"`
}

// OK reports whether the run completed every stage.
func (r ProcessingResult) OK() bool {
	return r.Status == StatusSuccess
}

// RunRecord is the persisted run-history row.
type RunRecord struct {
	ID             int
	Source         string
	Status         string
	FailedStage    string
	ErrorMessage   string
	SegmentCount   int
	OutputLocation string
	DurationMs     int64
	CreatedAt      time.Time
}
