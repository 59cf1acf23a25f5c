package output

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "echoscribe/internal/app/errors"
	"echoscribe/internal/app/model"
)

func sampleResult() model.ProcessingResult {
	return model.ProcessingResult{
		Source: "https://example.com/episode.mp3",
		Status: model.StatusSuccess,
		Segments: []model.AlignedSegment{
			{Start: 0, End: 4.2, Text: "hello everyone", SpeakerID: "SPEAKER_00"},
			{Start: 4.5, End: 9, Text: "glad to be here", SpeakerID: "SPEAKER_01"},
		},
	}
}

func TestJSONSaver_WritesDocument(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.json")

	location, err := NewJSONSaver().Save(context.Background(), sampleResult(), target)
	require.NoError(t, err)
	assert.Equal(t, target, location)

	data, err := os.ReadFile(location)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "https://example.com/episode.mp3", doc.Source)
	assert.Equal(t, model.StatusSuccess, doc.Status)
	require.Len(t, doc.Segments, 2)
	assert.Equal(t, "SPEAKER_01", doc.Segments[1].SpeakerID)
}

func TestJSONSaver_DirectoryDestinationUsesDefaultName(t *testing.T) {
	dir := t.TempDir()

	location, err := NewJSONSaver().Save(context.Background(), sampleResult(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultFileName), location)
}

func TestJSONSaver_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := NewJSONSaver().Save(context.Background(), sampleResult(), filepath.Join(dir, "out.json"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".echoscribe-"), "temp file left behind: %s", e.Name())
	}
}

func TestJSONSaver_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewJSONSaver().Save(ctx, sampleResult(), filepath.Join(t.TempDir(), "out.json"))
	assert.True(t, errors.Is(err, apperrors.ErrDeadlineExceeded))
}

type stubSaver struct {
	location string
	called   bool
}

func (s *stubSaver) Save(_ context.Context, _ model.ProcessingResult, _ string) (string, error) {
	s.called = true
	return s.location, nil
}

func TestRouter_DispatchesByDestination(t *testing.T) {
	file := &stubSaver{location: "local.json"}
	object := &stubSaver{location: "s3://bucket/key.json"}
	router := NewRouter(file, object)

	loc, err := router.Save(context.Background(), sampleResult(), "results/out.json")
	require.NoError(t, err)
	assert.Equal(t, "local.json", loc)
	assert.True(t, file.called)
	assert.False(t, object.called)

	loc, err = router.Save(context.Background(), sampleResult(), "s3://bucket/key.json")
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/key.json", loc)
	assert.True(t, object.called)
}

func TestRouter_ObjectStorageNotConfigured(t *testing.T) {
	router := NewRouter(&stubSaver{}, nil)

	_, err := router.Save(context.Background(), sampleResult(), "s3://bucket/key.json")
	assert.True(t, errors.Is(err, apperrors.ErrPersistence))
}

func TestParseObjectDestination(t *testing.T) {
	bucket, key, err := parseObjectDestination("s3://transcripts/shows/ep42.json")
	require.NoError(t, err)
	assert.Equal(t, "transcripts", bucket)
	assert.Equal(t, "shows/ep42.json", key)

	_, _, err = parseObjectDestination("http://not-s3/key")
	assert.Error(t, err)
}
