package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeSpan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		span    TimeSpan
		wantErr bool
	}{
		{name: "valid", span: TimeSpan{Start: 0, End: 1.5}, wantErr: false},
		{name: "zero_length", span: TimeSpan{Start: 2, End: 2}, wantErr: true},
		{name: "inverted", span: TimeSpan{Start: 3, End: 1}, wantErr: true},
		{name: "negative_start", span: TimeSpan{Start: -0.1, End: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.span.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTimeSpan_Intersection(t *testing.T) {
	base := TimeSpan{Start: 2, End: 8}

	assert.InDelta(t, 4.0, base.Intersection(TimeSpan{Start: 4, End: 10}), 1e-9)
	assert.InDelta(t, 6.0, base.Intersection(TimeSpan{Start: 0, End: 100}), 1e-9)
	assert.Zero(t, base.Intersection(TimeSpan{Start: 8, End: 9}), "touching spans do not overlap")
	assert.Zero(t, base.Intersection(TimeSpan{Start: 0, End: 2}))
}

func TestTimeSpan_Overlaps(t *testing.T) {
	base := TimeSpan{Start: 2, End: 8}

	assert.True(t, base.Overlaps(TimeSpan{Start: 7.9, End: 12}))
	assert.False(t, base.Overlaps(TimeSpan{Start: 8, End: 12}))
	assert.False(t, base.Overlaps(TimeSpan{Start: 0, End: 2}))
}

func TestTranscriptSegment_Validate(t *testing.T) {
	valid := TranscriptSegment{TimeSpan: TimeSpan{Start: 0, End: 2}, Text: "hello"}
	assert.NoError(t, valid.Validate())

	blank := TranscriptSegment{TimeSpan: TimeSpan{Start: 0, End: 2}, Text: "   "}
	assert.Error(t, blank.Validate())
}

func TestProcessingResult_OK(t *testing.T) {
	assert.True(t, ProcessingResult{Status: StatusSuccess}.OK())
	assert.False(t, ProcessingResult{Status: StatusError}.OK())
	assert.False(t, ProcessingResult{Status: StatusTimeout}.OK())
}
