// Package whisper implements transcription against the OpenAI audio API,
// producing timestamped segments with word-level detail when the model
// provides it.
package whisper

import (
	"strings"

	"context"

	"github.com/sashabaranov/go-openai"

	apperrors "echoscribe/internal/app/errors"
	"echoscribe/internal/app/model"
)

// Transcriber turns an audio file into timestamped transcript segments.
type Transcriber struct {
	client   *openai.Client
	model    string
	language string
}

// Option configures a Transcriber.
type Option func(*Transcriber)

// WithModel overrides the default whisper-1 model.
func WithModel(model string) Option {
	return func(t *Transcriber) { t.model = model }
}

// WithLanguage fixes the transcription language instead of auto-detecting.
func WithLanguage(language string) Option {
	return func(t *Transcriber) { t.language = language }
}

// NewTranscriber creates a Transcriber backed by the given client.
func NewTranscriber(client *openai.Client, opts ...Option) *Transcriber {
	t := &Transcriber{client: client, model: openai.Whisper1}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe runs whisper over the audio file and returns its segments in
// ascending start order, each carrying the word timestamps that fall inside
// it.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) ([]model.TranscriptSegment, error) {
	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: t.language,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
			openai.TranscriptionTimestampGranularityWord,
		},
	}
	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrTranscriptionEngine, "createTranscription: %v", err)
	}

	segments := make([]model.TranscriptSegment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, model.TranscriptSegment{
			TimeSpan: model.TimeSpan{Start: s.Start, End: s.End},
			Text:     strings.TrimSpace(s.Text),
		})
	}

	attachWords(segments, resp)
	return segments, nil
}

// attachWords distributes the response's word timestamps onto the segment
// whose span contains the word's start. Words past the last segment end stick
// to the last segment.
func attachWords(segments []model.TranscriptSegment, resp openai.AudioResponse) {
	if len(segments) == 0 || len(resp.Words) == 0 {
		return
	}
	for _, w := range resp.Words {
		idx := len(segments) - 1
		for i := range segments {
			if w.Start >= segments[i].Start && w.Start < segments[i].End {
				idx = i
				break
			}
		}
		segments[idx].Words = append(segments[idx].Words, model.Word{
			TimeSpan: model.TimeSpan{Start: w.Start, End: w.End},
			Text:     strings.TrimSpace(w.Word),
		})
	}
}
