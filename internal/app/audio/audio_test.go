package audio

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probeFromJSON(t *testing.T, payload string) ffprobeOutput {
	t.Helper()
	var probe ffprobeOutput
	require.NoError(t, json.Unmarshal([]byte(payload), &probe))
	return probe
}

func TestIsCanonical(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    bool
	}{
		{
			name: "16kHz mono pcm wav",
			payload: `{"streams": [
				{"codec_type": "audio", "codec_name": "pcm_s16le", "sample_rate": "16000", "channels": 1}
			]}`,
			want: true,
		},
		{
			name: "stereo needs conversion",
			payload: `{"streams": [
				{"codec_type": "audio", "codec_name": "pcm_s16le", "sample_rate": "16000", "channels": 2}
			]}`,
			want: false,
		},
		{
			name: "44.1kHz needs conversion",
			payload: `{"streams": [
				{"codec_type": "audio", "codec_name": "pcm_s16le", "sample_rate": "44100", "channels": 1}
			]}`,
			want: false,
		},
		{
			name: "mp3 needs conversion",
			payload: `{"streams": [
				{"codec_type": "audio", "codec_name": "mp3", "sample_rate": "16000", "channels": 1}
			]}`,
			want: false,
		},
		{
			name: "video stream alone does not qualify",
			payload: `{"streams": [
				{"codec_type": "video", "codec_name": "h264"}
			]}`,
			want: false,
		},
		{
			name: "audio stream among video streams qualifies",
			payload: `{"streams": [
				{"codec_type": "video", "codec_name": "mjpeg"},
				{"codec_type": "audio", "codec_name": "pcm_s16le", "sample_rate": "16000", "channels": 1}
			]}`,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isCanonical(probeFromJSON(t, tt.payload)))
		})
	}
}
