package model

import (
	"fmt"
	"strings"
)

// UnknownSpeaker is the sentinel speaker label assigned to speech that no
// diarization turn covers.
const UnknownSpeaker = "unknown"

// TimeSpan is a half-open interval of audio time in seconds.
// A valid span satisfies 0 <= Start < End.
type TimeSpan struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the span length in seconds.
func (s TimeSpan) Duration() float64 {
	return s.End - s.Start
}

// Overlaps reports whether two spans share any audio time.
func (s TimeSpan) Overlaps(other TimeSpan) bool {
	return other.Start < s.End && other.End > s.Start
}

// Intersection returns the overlap duration between two spans, 0 if disjoint.
func (s TimeSpan) Intersection(other TimeSpan) float64 {
	start := s.Start
	if other.Start > start {
		start = other.Start
	}
	end := s.End
	if other.End < end {
		end = other.End
	}
	if end <= start {
		return 0
	}
	return end - start
}

// Validate checks the span invariant.
func (s TimeSpan) Validate() error {
	if s.Start < 0 {
		return fmt.Errorf("time span start must not be negative, got %.3f", s.Start)
	}
	if s.End <= s.Start {
		return fmt.Errorf("time span end %.3f must be greater than start %.3f", s.End, s.Start)
	}
	return nil
}

// Word is a single recognized token with its own timing.
type Word struct {
	TimeSpan
	Text string `json:"word"`
}

// TranscriptSegment is one time-stamped unit of recognized speech produced by
// the transcription engine. Words are optional; when present they carry
// sub-segment timing and are ordered by start time.
type TranscriptSegment struct {
	TimeSpan
	Text  string `json:"text"`
	Words []Word `json:"words,omitempty"`
}

// Validate checks the segment invariants.
func (t TranscriptSegment) Validate() error {
	if err := t.TimeSpan.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Text) == "" {
		return fmt.Errorf("transcript segment [%.3f, %.3f] has empty text", t.Start, t.End)
	}
	return nil
}

// SpeakerTurn is one interval during which the diarization engine heard a
// single speaker. Turns of different speakers may overlap (simultaneous
// speech); turns of the same speaker never do.
type SpeakerTurn struct {
	TimeSpan
	SpeakerID string `json:"speaker_id"`
}

// AlignedSegment is the output unit of the alignment engine: a transcript
// span attributed to exactly one speaker. Segments of one run are ordered by
// Start and never overlap each other.
type AlignedSegment struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Text      string  `json:"text"`
	SpeakerID string  `json:"speaker_id"`
}

// Span returns the segment's interval.
func (a AlignedSegment) Span() TimeSpan {
	return TimeSpan{Start: a.Start, End: a.End}
}
