// Package pyannote implements speaker diarization via HTTP against a
// pyannote.audio inference server.
package pyannote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	apperrors "echoscribe/internal/app/errors"
	"echoscribe/internal/app/model"
)

// Config holds the diarization server settings.
type Config struct {
	BaseURL       string            `yaml:"base_url"`       // e.g. "http://127.0.0.1:9000"
	DiarizePath   string            `yaml:"diarize_path"`   // endpoint path (default "/diarize")
	HealthPath    string            `yaml:"health_path"`    // health endpoint path (default "/health")
	AuthToken     string            `yaml:"auth_token"`     // Hugging Face token forwarded to the server
	Timeout       time.Duration     `yaml:"timeout"`        // request timeout
	NumSpeakers   int               `yaml:"num_speakers"`   // fixed speaker count hint, 0 = auto
	CustomHeaders map[string]string `yaml:"custom_headers"` // extra HTTP headers
}

// Diarizer calls a pyannote inference server over HTTP.
type Diarizer struct {
	config Config
	client *http.Client
}

// diarizationResponse is the server's JSON envelope.
type diarizationResponse struct {
	Turns []turn `json:"turns"`
}

type turn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// NewDiarizer creates a Diarizer, filling config defaults.
func NewDiarizer(config Config) *Diarizer {
	if config.DiarizePath == "" {
		config.DiarizePath = "/diarize"
	}
	if config.HealthPath == "" {
		config.HealthPath = "/health"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Minute
	}
	return &Diarizer{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Diarize uploads the audio file and returns speaker turns sorted by start
// time.
func (d *Diarizer) Diarize(ctx context.Context, audioPath string) ([]model.SpeakerTurn, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrDiarizationEngine, "audio file %q: %v", audioPath, err)
	}

	body, contentType, err := d.multipartForm(audioPath)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrDiarizationEngine, "build request: %v", err)
	}

	url := d.config.BaseURL + d.config.DiarizePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrDiarizationEngine, "create request: %v", err)
	}
	req.Header.Set("Content-Type", contentType)
	if d.config.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+d.config.AuthToken)
	}
	for key, value := range d.config.CustomHeaders {
		req.Header.Set(key, value)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrDiarizationEngine, "POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrDiarizationEngine, "read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrapf(apperrors.ErrDiarizationEngine,
			"server returned %d: %s", resp.StatusCode, string(data))
	}

	var parsed diarizationResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrDiarizationEngine, "parse response: %v", err)
	}

	turns := make([]model.SpeakerTurn, 0, len(parsed.Turns))
	for _, t := range parsed.Turns {
		turns = append(turns, model.SpeakerTurn{
			TimeSpan:  model.TimeSpan{Start: t.Start, End: t.End},
			SpeakerID: t.Speaker,
		})
	}
	sort.SliceStable(turns, func(i, j int) bool { return turns[i].Start < turns[j].Start })
	return turns, nil
}

// HealthCheck verifies the server is reachable and responding.
func (d *Diarizer) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.config.BaseURL+d.config.HealthPath, nil)
	if err != nil {
		return fmt.Errorf("create health check request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("diarization server unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("diarization server returned %d", resp.StatusCode)
	}
	return nil
}

func (d *Diarizer) multipartForm(audioPath string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", audioPath, err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", err
	}

	if d.config.NumSpeakers > 0 {
		if err := writer.WriteField("num_speakers", strconv.Itoa(d.config.NumSpeakers)); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}
