package whisper

import (
	"encoding/json"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echoscribe/internal/app/model"
)

func TestAttachWords(t *testing.T) {
	var resp openai.AudioResponse
	payload := `{
		"segments": [
			{"start": 0.0, "end": 2.0, "text": " hello world"},
			{"start": 2.0, "end": 4.0, "text": " goodbye"}
		],
		"words": [
			{"word": " hello", "start": 0.1, "end": 0.6},
			{"word": " world", "start": 0.7, "end": 1.2},
			{"word": " goodbye", "start": 2.3, "end": 3.0},
			{"word": " tail", "start": 4.5, "end": 4.8}
		]
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))

	segments := []model.TranscriptSegment{
		{TimeSpan: model.TimeSpan{Start: 0, End: 2}, Text: "hello world"},
		{TimeSpan: model.TimeSpan{Start: 2, End: 4}, Text: "goodbye"},
	}
	attachWords(segments, resp)

	require.Len(t, segments[0].Words, 2)
	assert.Equal(t, "hello", segments[0].Words[0].Text)
	assert.Equal(t, "world", segments[0].Words[1].Text)

	// The word past the last segment end sticks to the last segment.
	require.Len(t, segments[1].Words, 2)
	assert.Equal(t, "goodbye", segments[1].Words[0].Text)
	assert.Equal(t, "tail", segments[1].Words[1].Text)
}

func TestAttachWords_NoWords(t *testing.T) {
	segments := []model.TranscriptSegment{
		{TimeSpan: model.TimeSpan{Start: 0, End: 2}, Text: "hello"},
	}
	attachWords(segments, openai.AudioResponse{})
	assert.Empty(t, segments[0].Words)
}

func TestNewTranscriberOptions(t *testing.T) {
	tr := NewTranscriber(nil, WithModel("whisper-large"), WithLanguage("fr"))
	assert.Equal(t, "whisper-large", tr.model)
	assert.Equal(t, "fr", tr.language)

	tr = NewTranscriber(nil)
	assert.Equal(t, openai.Whisper1, tr.model)
	assert.Empty(t, tr.language)
}
