package pyannote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "echoscribe/internal/app/errors"
)

func writeAudioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "episode.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF fake audio"), 0o644))
	return path
}

func TestDiarize(t *testing.T) {
	var gotAuth, gotSpeakers string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/diarize", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotSpeakers = r.FormValue("num_speakers")
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "episode.wav", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		// Out of order on purpose; the client sorts by start.
		w.Write([]byte(`{"turns": [
			{"start": 5.0, "end": 9.5, "speaker": "SPEAKER_01"},
			{"start": 0.0, "end": 5.0, "speaker": "SPEAKER_00"}
		]}`))
	}))
	defer server.Close()

	d := NewDiarizer(Config{BaseURL: server.URL, AuthToken: "hf_test", NumSpeakers: 2})
	turns, err := d.Diarize(context.Background(), writeAudioFixture(t))

	require.NoError(t, err)
	assert.Equal(t, "Bearer hf_test", gotAuth)
	assert.Equal(t, "2", gotSpeakers)
	require.Len(t, turns, 2)
	assert.Equal(t, "SPEAKER_00", turns[0].SpeakerID)
	assert.Equal(t, 0.0, turns[0].Start)
	assert.Equal(t, "SPEAKER_01", turns[1].SpeakerID)
}

func TestDiarize_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	d := NewDiarizer(Config{BaseURL: server.URL})
	_, err := d.Diarize(context.Background(), writeAudioFixture(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDiarizationEngine)
	assert.Contains(t, err.Error(), "503")
}

func TestDiarize_MissingFile(t *testing.T) {
	d := NewDiarizer(Config{BaseURL: "http://127.0.0.1:1"})
	_, err := d.Diarize(context.Background(), "/nonexistent/audio.wav")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDiarizationEngine)
}

func TestDiarize_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	d := NewDiarizer(Config{BaseURL: server.URL})
	_, err := d.Diarize(context.Background(), writeAudioFixture(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse response")
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	d := NewDiarizer(Config{BaseURL: server.URL})
	assert.NoError(t, d.HealthCheck(context.Background()))

	down := NewDiarizer(Config{BaseURL: "http://127.0.0.1:1"})
	assert.Error(t, down.HealthCheck(context.Background()))
}

func TestNewDiarizerDefaults(t *testing.T) {
	d := NewDiarizer(Config{BaseURL: "http://example.com"})
	assert.Equal(t, "/diarize", d.config.DiarizePath)
	assert.Equal(t, "/health", d.config.HealthPath)
	assert.NotZero(t, d.config.Timeout)
}
