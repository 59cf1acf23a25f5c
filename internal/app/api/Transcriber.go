package api

import (
	"context"

	"echoscribe/internal/app/model"
)

// Transcriber converts an audio file into time-stamped transcript segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]model.TranscriptSegment, error)
}

// Diarizer detects who speaks when, returning speaker turns. Turns of
// different speakers may overlap during simultaneous speech.
type Diarizer interface {
	Diarize(ctx context.Context, audioPath string) ([]model.SpeakerTurn, error)
}
