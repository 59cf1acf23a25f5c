package align

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echoscribe/internal/app/model"
)

func segment(start, end float64, text string, words ...model.Word) model.TranscriptSegment {
	return model.TranscriptSegment{
		TimeSpan: model.TimeSpan{Start: start, End: end},
		Text:     text,
		Words:    words,
	}
}

func turn(start, end float64, speaker string) model.SpeakerTurn {
	return model.SpeakerTurn{
		TimeSpan:  model.TimeSpan{Start: start, End: end},
		SpeakerID: speaker,
	}
}

func word(start, end float64, text string) model.Word {
	return model.Word{TimeSpan: model.TimeSpan{Start: start, End: end}, Text: text}
}

func TestAlign_EmptyInputs(t *testing.T) {
	assert.Empty(t, Align(nil, nil, Options{}))
	assert.Empty(t, Align([]model.TranscriptSegment{}, []model.SpeakerTurn{turn(0, 5, "A")}, Options{}))
}

func TestAlign_NoTurnsFallsBackToUnknown(t *testing.T) {
	got := Align([]model.TranscriptSegment{segment(0, 5, "hello")}, nil, Options{})

	require.Len(t, got, 1)
	assert.Equal(t, model.AlignedSegment{Start: 0, End: 5, Text: "hello", SpeakerID: model.UnknownSpeaker}, got[0])
}

func TestAlign_SingleCoveringTurn(t *testing.T) {
	got := Align(
		[]model.TranscriptSegment{segment(0, 5, "hello world")},
		[]model.SpeakerTurn{turn(0, 5, "A")},
		Options{},
	)

	require.Len(t, got, 1)
	assert.Equal(t, model.AlignedSegment{Start: 0, End: 5, Text: "hello world", SpeakerID: "A"}, got[0])
}

func TestAlign_SplitsAtTurnBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		segments []model.TranscriptSegment
		turns    []model.SpeakerTurn
		want     []model.AlignedSegment
	}{
		{
			name: "two_turns_partition_one_segment_with_word_timing",
			segments: []model.TranscriptSegment{
				segment(0, 10, "alpha beta gamma",
					word(0.5, 1.5, "alpha"), word(3.0, 4.2, "beta"), word(6.0, 7.0, "gamma")),
			},
			turns: []model.SpeakerTurn{turn(0, 4, "A"), turn(4, 10, "B")},
			want: []model.AlignedSegment{
				{Start: 0, End: 4, Text: "alpha beta", SpeakerID: "A"},
				{Start: 4, End: 10, Text: "gamma", SpeakerID: "B"},
			},
		},
		{
			name: "no_word_timing_replicates_text_with_marker",
			segments: []model.TranscriptSegment{
				segment(0, 10, "abc"),
			},
			turns: []model.SpeakerTurn{turn(0, 4, "A"), turn(4, 10, "B")},
			want: []model.AlignedSegment{
				{Start: 0, End: 4, Text: "abc…", SpeakerID: "A"},
				{Start: 4, End: 10, Text: "abc", SpeakerID: "B"},
			},
		},
		{
			name: "partial_coverage_leaves_unknown_remainder",
			segments: []model.TranscriptSegment{
				segment(0, 10, "tail is silence",
					word(1, 2, "tail"), word(2.5, 3, "is"), word(7, 8, "silence")),
			},
			turns: []model.SpeakerTurn{turn(0, 6, "A")},
			want: []model.AlignedSegment{
				{Start: 0, End: 6, Text: "tail is", SpeakerID: "A"},
				{Start: 6, End: 10, Text: "silence", SpeakerID: model.UnknownSpeaker},
			},
		},
		{
			name: "simultaneous_speech_collapses_to_dominant_speaker",
			segments: []model.TranscriptSegment{
				segment(0, 6, "talking over each other"),
			},
			turns: []model.SpeakerTurn{turn(0, 6, "A"), turn(2, 6, "B")},
			// [0,2) only A; [2,6) A overlaps 4s, B overlaps 4s: tie goes to
			// the earlier-sorted turn, and same-speaker merge folds the spans.
			want: []model.AlignedSegment{
				{Start: 0, End: 6, Text: "talking over each other… talking over each other", SpeakerID: "A"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Align(tt.segments, tt.turns, Options{})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlign_MergesAdjacentSameSpeaker(t *testing.T) {
	got := Align(
		[]model.TranscriptSegment{segment(0, 2, "hi"), segment(2.1, 4, "there")},
		[]model.SpeakerTurn{turn(0, 4, "A")},
		Options{MergeGapTolerance: 0.3},
	)

	require.Len(t, got, 1)
	assert.Equal(t, model.AlignedSegment{Start: 0, End: 4, Text: "hi there", SpeakerID: "A"}, got[0])
}

func TestAlign_GapAboveToleranceIsNotMerged(t *testing.T) {
	got := Align(
		[]model.TranscriptSegment{segment(0, 2, "hi"), segment(3, 4, "there")},
		[]model.SpeakerTurn{turn(0, 4, "A")},
		Options{MergeGapTolerance: 0.3},
	)

	require.Len(t, got, 2)
	assert.Equal(t, "hi", got[0].Text)
	assert.Equal(t, "there", got[1].Text)
}

func TestAlign_SpeakerChangeIsNeverMerged(t *testing.T) {
	got := Align(
		[]model.TranscriptSegment{segment(0, 2, "hi"), segment(2, 4, "there")},
		[]model.SpeakerTurn{turn(0, 2, "A"), turn(2, 4, "B")},
		Options{},
	)

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].SpeakerID)
	assert.Equal(t, "B", got[1].SpeakerID)
}

func TestAlign_Deterministic(t *testing.T) {
	segments := []model.TranscriptSegment{
		segment(0, 3, "one two three", word(0, 1, "one"), word(1, 2, "two"), word(2, 3, "three")),
		segment(3.1, 7, "four five"),
		segment(8, 12, "six"),
	}
	turns := []model.SpeakerTurn{
		turn(0, 2, "A"), turn(1.5, 5, "B"), turn(5, 9, "A"), turn(8.5, 12, "C"),
	}

	first := Align(segments, turns, Options{})
	second := Align(segments, turns, Options{})
	assert.True(t, reflect.DeepEqual(first, second))
}

func TestAlign_OutputNeverOverlapsAndCoversInput(t *testing.T) {
	segments := []model.TranscriptSegment{
		segment(0, 4, "a"), segment(4, 9, "b"), segment(10, 15, "c"), segment(15.2, 20, "d"),
	}
	turns := []model.SpeakerTurn{
		turn(0, 2.5, "S1"), turn(2.5, 6, "S2"), turn(5.5, 11, "S1"), turn(12, 18, "S3"),
	}

	got := Align(segments, turns, Options{})
	require.NotEmpty(t, got)

	var outputDuration float64
	for i, seg := range got {
		assert.Less(t, seg.Start, seg.End)
		outputDuration += seg.End - seg.Start
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].End, seg.Start+1e-9,
				"adjacent output segments must not overlap")
		}
	}

	// Every input span must be fully covered by the output.
	var inputDuration, coveredDuration float64
	for _, seg := range segments {
		inputDuration += seg.Duration()
		for _, out := range got {
			coveredDuration += seg.Intersection(out.Span())
		}
	}
	assert.InDelta(t, inputDuration, coveredDuration, 1e-6,
		"every input transcript span must be covered by the output")

	// The only time the output may add is the 0.2s pause between the two S3
	// spans around [15, 15.2], absorbed by the same-speaker merge.
	assert.InDelta(t, inputDuration+0.2, outputDuration, 1e-6,
		"output may exceed input only by absorbed sub-tolerance merge gaps")
}

func TestAlign_OverlappingTranscriptSegmentsAreClipped(t *testing.T) {
	got := Align(
		[]model.TranscriptSegment{segment(0, 5, "first"), segment(4, 8, "second")},
		nil,
		Options{},
	)

	// The merge step folds both unknown-speaker spans; the important property
	// is that no time is double-covered.
	var total float64
	for i, seg := range got {
		total += seg.End - seg.Start
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].End, seg.Start+1e-9)
		}
	}
	assert.InDelta(t, 8.0, total, 1e-9)
}

func TestAlign_TieBreakPrefersEarlierTurn(t *testing.T) {
	// Both turns overlap [0,4) for exactly 2s.
	got := Align(
		[]model.TranscriptSegment{segment(1, 3, "tied")},
		[]model.SpeakerTurn{turn(0, 3, "A"), turn(1, 4, "B")},
		Options{},
	)

	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].SpeakerID)
}

func TestOptions_GapToleranceDefault(t *testing.T) {
	assert.Equal(t, DefaultMergeGapTolerance, Options{}.gapTolerance())
	assert.Equal(t, 0.5, Options{MergeGapTolerance: 0.5}.gapTolerance())
	assert.False(t, math.Signbit(Options{}.gapTolerance()))
}
