// Package align reconciles two independently-timestamped interval sequences,
// transcript segments and diarization speaker turns, into a single ordered,
// non-overlapping, speaker-attributed transcript.
//
// The two engines never agree on boundaries: transcript segments follow
// sentence rhythm while speaker turns follow voice activity, and turns of
// different speakers may overlap during simultaneous speech. Align splits each
// transcript segment at the union of its own bounds and every intersecting
// turn bound, then assigns each sub-span to the turn with the greatest overlap
// duration. Simultaneous speech therefore collapses to one speaker per
// sub-span; that is a fidelity limitation of the output format, not a defect.
package align

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"echoscribe/internal/app/model"
)

// DefaultMergeGapTolerance is the largest silence, in seconds, bridged when
// merging adjacent segments of the same speaker.
const DefaultMergeGapTolerance = 0.3

// boundaryEpsilon collapses float boundaries closer than one millisecond,
// which is well below the timing resolution of either engine.
const boundaryEpsilon = 1e-3

// Options tune the alignment. The zero value selects the defaults.
type Options struct {
	// MergeGapTolerance overrides DefaultMergeGapTolerance when > 0.
	MergeGapTolerance float64
}

func (o Options) gapTolerance() float64 {
	if o.MergeGapTolerance > 0 {
		return o.MergeGapTolerance
	}
	return DefaultMergeGapTolerance
}

// Align attributes every transcript segment to a speaker. It is pure and
// deterministic: identical inputs, including ordering, produce identical
// output. Speech no turn covers is attributed to model.UnknownSpeaker.
//
// The output is ordered by start time and adjacent segments never overlap.
// Every input segment span is covered by the output: no speech time is
// dropped or duplicated. Merging additionally absorbs pauses between
// same-speaker segments at or below the gap tolerance, so the output union
// may exceed the input union by exactly those bridged gaps.
func Align(segments []model.TranscriptSegment, turns []model.SpeakerTurn, opts Options) []model.AlignedSegment {
	if len(segments) == 0 {
		return []model.AlignedSegment{}
	}

	sortedSegments := make([]model.TranscriptSegment, len(segments))
	copy(sortedSegments, segments)
	sort.SliceStable(sortedSegments, func(i, j int) bool {
		return sortedSegments[i].Start < sortedSegments[j].Start
	})
	sortedSegments = clipSegmentOverlaps(sortedSegments)

	sortedTurns := make([]model.SpeakerTurn, len(turns))
	copy(sortedTurns, turns)
	sort.SliceStable(sortedTurns, func(i, j int) bool {
		return sortedTurns[i].Start < sortedTurns[j].Start
	})

	var out []model.AlignedSegment
	for _, seg := range sortedSegments {
		out = append(out, alignSegment(seg, intersecting(seg.TimeSpan, sortedTurns))...)
	}

	out = mergeAdjacent(out, opts.gapTolerance())

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	assertNonOverlapping(out)
	return out
}

// clipSegmentOverlaps raises the start of any transcript segment that begins
// before the previous one ends. Transcription engines emit sequential
// segments, but the non-overlap guarantee of the output must hold for any
// well-formed input, so overlapped time is attributed to the earlier segment.
// Segments swallowed whole by their predecessor are dropped.
func clipSegmentOverlaps(segments []model.TranscriptSegment) []model.TranscriptSegment {
	out := segments[:0]
	prevEnd := -1.0
	for _, seg := range segments {
		if seg.Start < prevEnd {
			if prevEnd >= seg.End {
				continue
			}
			seg.Start = prevEnd
		}
		prevEnd = seg.End
		out = append(out, seg)
	}
	return out
}

// intersecting returns the turns overlapping span, preserving sorted order.
// Turns are sorted by start, so the scan stops at the first turn starting at
// or after the span end.
func intersecting(span model.TimeSpan, turns []model.SpeakerTurn) []model.SpeakerTurn {
	var hits []model.SpeakerTurn
	for _, turn := range turns {
		if turn.Start >= span.End {
			break
		}
		if turn.Overlaps(span) {
			hits = append(hits, turn)
		}
	}
	return hits
}

func alignSegment(seg model.TranscriptSegment, turns []model.SpeakerTurn) []model.AlignedSegment {
	if len(turns) == 0 {
		return []model.AlignedSegment{{
			Start:     seg.Start,
			End:       seg.End,
			Text:      strings.TrimSpace(seg.Text),
			SpeakerID: model.UnknownSpeaker,
		}}
	}

	// A single turn covering the whole segment needs no splitting.
	if len(turns) == 1 && turns[0].Start <= seg.Start && turns[0].End >= seg.End {
		return []model.AlignedSegment{{
			Start:     seg.Start,
			End:       seg.End,
			Text:      strings.TrimSpace(seg.Text),
			SpeakerID: turns[0].SpeakerID,
		}}
	}

	spans := subSpans(seg.TimeSpan, turns)
	out := make([]model.AlignedSegment, 0, len(spans))
	for _, span := range spans {
		out = append(out, model.AlignedSegment{
			Start:     span.Start,
			End:       span.End,
			SpeakerID: dominantSpeaker(span, turns),
		})
	}
	distributeText(seg, out)
	return out
}

// subSpans cuts the segment at every intersecting turn boundary clipped to the
// segment's own interval.
func subSpans(span model.TimeSpan, turns []model.SpeakerTurn) []model.TimeSpan {
	bounds := []float64{span.Start, span.End}
	for _, turn := range turns {
		if turn.Start > span.Start && turn.Start < span.End {
			bounds = append(bounds, turn.Start)
		}
		if turn.End > span.Start && turn.End < span.End {
			bounds = append(bounds, turn.End)
		}
	}
	sort.Float64s(bounds)

	deduped := make([]float64, 0, len(bounds))
	deduped = append(deduped, bounds[0])
	for _, b := range bounds[1:] {
		if b-deduped[len(deduped)-1] > boundaryEpsilon {
			deduped = append(deduped, b)
		}
	}

	spans := make([]model.TimeSpan, 0, len(deduped)-1)
	for i := 0; i+1 < len(deduped); i++ {
		spans = append(spans, model.TimeSpan{Start: deduped[i], End: deduped[i+1]})
	}
	return spans
}

// dominantSpeaker picks the turn with the greatest overlap duration. Turns
// arrive in sorted order and only a strictly greater overlap displaces the
// current winner, so ties deterministically go to the earlier turn.
func dominantSpeaker(span model.TimeSpan, turns []model.SpeakerTurn) string {
	overlapping := lo.Filter(turns, func(turn model.SpeakerTurn, _ int) bool {
		return span.Intersection(turn.TimeSpan) > 0
	})
	if len(overlapping) == 0 {
		return model.UnknownSpeaker
	}
	best := lo.MaxBy(overlapping, func(a, b model.SpeakerTurn) bool {
		return span.Intersection(a.TimeSpan) > span.Intersection(b.TimeSpan)
	})
	return best.SpeakerID
}

// distributeText fills in the text of each sub-span in place.
//
// With word-level timing every word goes to the sub-span containing its start
// time. Without it the segment text cannot be partitioned faithfully, so the
// full text is replicated onto every sub-span with a trailing ellipsis on all
// but the last; replicated text is marked rather than silently duplicated.
func distributeText(seg model.TranscriptSegment, spans []model.AlignedSegment) {
	text := strings.TrimSpace(seg.Text)
	if len(spans) == 1 {
		spans[0].Text = text
		return
	}

	if len(seg.Words) == 0 {
		for i := range spans {
			if i < len(spans)-1 {
				spans[i].Text = text + "…"
			} else {
				spans[i].Text = text
			}
		}
		return
	}

	for _, word := range seg.Words {
		idx := len(spans) - 1
		for i := range spans {
			if word.Start < spans[i].End {
				idx = i
				break
			}
		}
		token := strings.TrimSpace(word.Text)
		if token == "" {
			continue
		}
		if spans[idx].Text == "" {
			spans[idx].Text = token
		} else {
			spans[idx].Text += " " + token
		}
	}
}

// mergeAdjacent folds consecutive same-speaker segments whose gap is at most
// tolerance into one, concatenating text in order. The merged span bridges
// the gap, so sub-tolerance pauses are absorbed into the speaker's span.
// This keeps the transcript reading as continuous speech per speaker instead
// of fragments produced by diarization noise.
func mergeAdjacent(segments []model.AlignedSegment, tolerance float64) []model.AlignedSegment {
	if len(segments) == 0 {
		return []model.AlignedSegment{}
	}

	merged := []model.AlignedSegment{segments[0]}
	for _, seg := range segments[1:] {
		last := &merged[len(merged)-1]
		if seg.SpeakerID == last.SpeakerID && seg.Start-last.End <= tolerance {
			if seg.End > last.End {
				last.End = seg.End
			}
			last.Text = joinText(last.Text, seg.Text)
			continue
		}
		merged = append(merged, seg)
	}
	return merged
}

func joinText(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

// assertNonOverlapping verifies the construction guarantee that adjacent
// output segments never overlap. A violation is a defect in this package,
// never user input, so it panics instead of returning an error.
func assertNonOverlapping(segments []model.AlignedSegment) {
	for i := 0; i+1 < len(segments); i++ {
		if segments[i].End > segments[i+1].Start+boundaryEpsilon {
			panic(fmt.Sprintf("aligned segments overlap: [%.3f, %.3f] and [%.3f, %.3f]",
				segments[i].Start, segments[i].End, segments[i+1].Start, segments[i+1].End))
		}
	}
}
