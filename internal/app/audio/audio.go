// Package audio normalizes acquired audio with ffmpeg so both inference
// engines see the same 16kHz mono WAV input.
package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

type ffprobeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate int    `json:"sample_rate,string"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// Normalizer converts audio files to the pipeline's canonical format.
type Normalizer struct{}

// NewNormalizer creates a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Prepare returns a 16kHz mono WAV for the given audio file, converting only
// when the input is not already in that format. Conversions are cached next
// to the input.
func (n *Normalizer) Prepare(ctx context.Context, audioPath string) (string, error) {
	ok, err := is16kHzMonoWav(ctx, audioPath)
	if err != nil {
		return "", err
	}
	if ok {
		return audioPath, nil
	}

	outputPath := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + "_16khz.wav"
	if _, err := os.Stat(outputPath); err == nil {
		return outputPath, nil
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-i", audioPath,
		"-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1", outputPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("ffmpeg error: %v, stderr: %s", err, stderr.String())
	}
	return outputPath, nil
}

// Duration returns the audio length in whole seconds.
func Duration(ctx context.Context, audioPath string) (int, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", audioPath)
	output, err := cmd.Output()
	if err != nil {
		return 0, err
	}
	durationFloat, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, err
	}
	return int(math.Round(durationFloat)), nil
}

func is16kHzMonoWav(ctx context.Context, audioPath string) (bool, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "quiet", "-print_format", "json", "-show_streams", audioPath)
	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("ffprobe failed for %s: %w", audioPath, err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return false, err
	}
	return isCanonical(probe), nil
}

func isCanonical(probe ffprobeOutput) bool {
	for _, stream := range probe.Streams {
		if stream.CodecType == "audio" && stream.CodecName == "pcm_s16le" &&
			stream.SampleRate == 16000 && stream.Channels == 1 {
			return true
		}
	}
	return false
}
