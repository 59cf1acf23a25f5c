package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echoscribe/internal/app/model"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db := NewSQLiteDB(filepath.Join(t.TempDir(), "runs.db"))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteDB_RecordAndFetch(t *testing.T) {
	db := newTestDB(t)

	err := db.RecordRun(model.RunRecord{
		Source:         "https://example.com/episode.mp3",
		Status:         "success",
		SegmentCount:   4,
		OutputLocation: "results/speaker_transcriptions.json",
		DurationMs:     1234,
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)

	err = db.RecordRun(model.RunRecord{
		Source:       "https://example.com/broken.mp3",
		Status:       "error",
		FailedStage:  "transcription",
		ErrorMessage: "engine unavailable",
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)

	records, err := db.GetAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	bySource := map[string]model.RunRecord{}
	for _, r := range records {
		bySource[r.Source] = r
	}
	assert.Equal(t, "success", bySource["https://example.com/episode.mp3"].Status)
	assert.Equal(t, 4, bySource["https://example.com/episode.mp3"].SegmentCount)
	assert.Equal(t, "transcription", bySource["https://example.com/broken.mp3"].FailedStage)
}

func TestSQLiteDB_CheckIfProcessed(t *testing.T) {
	db := newTestDB(t)

	_, err := db.CheckIfProcessed("unseen.mp3")
	assert.Error(t, err, "unseen sources have no successful run")

	require.NoError(t, db.RecordRun(model.RunRecord{
		Source: "seen.mp3", Status: "error", FailedStage: "acquisition", CreatedAt: time.Now(),
	}))
	_, err = db.CheckIfProcessed("seen.mp3")
	assert.Error(t, err, "failed runs do not mark a source processed")

	require.NoError(t, db.RecordRun(model.RunRecord{
		Source: "seen.mp3", Status: "success", SegmentCount: 2, CreatedAt: time.Now(),
	}))
	id, err := db.CheckIfProcessed("seen.mp3")
	assert.NoError(t, err)
	assert.Positive(t, id)
}
