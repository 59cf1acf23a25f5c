package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnginesConfig is the optional YAML file tuning the inference engines. The
// environment supplies credentials; this file supplies knobs.
type EnginesConfig struct {
	Transcription TranscriptionConfig `yaml:"transcription,omitempty"`
	Diarization   DiarizationConfig   `yaml:"diarization,omitempty"`
	Alignment     AlignmentConfig     `yaml:"alignment,omitempty"`
}

// TranscriptionConfig tunes the whisper engine.
type TranscriptionConfig struct {
	Model    string `yaml:"model,omitempty"`
	Language string `yaml:"language,omitempty"`
}

// DiarizationConfig tunes the pyannote engine.
type DiarizationConfig struct {
	DiarizePath string        `yaml:"diarize_path,omitempty"`
	HealthPath  string        `yaml:"health_path,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	NumSpeakers int           `yaml:"num_speakers,omitempty"`
}

// AlignmentConfig tunes the speaker alignment engine.
type AlignmentConfig struct {
	// MergeGapToleranceSec is the largest silence, in seconds, still merged
	// between consecutive segments of the same speaker.
	MergeGapToleranceSec float64 `yaml:"merge_gap_tolerance_sec,omitempty"`
}

// LoadEnginesConfig reads the engines YAML file. A missing path returns an
// empty config so every knob falls back to its default.
func LoadEnginesConfig(configPath string) (*EnginesConfig, error) {
	configPath = os.ExpandEnv(configPath)

	var config EnginesConfig
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Validate rejects values outside their meaningful ranges.
func (c *EnginesConfig) Validate() error {
	if c.Alignment.MergeGapToleranceSec < 0 {
		return fmt.Errorf("alignment.merge_gap_tolerance_sec must not be negative")
	}
	if c.Diarization.NumSpeakers < 0 {
		return fmt.Errorf("diarization.num_speakers must not be negative")
	}
	if c.Diarization.Timeout < 0 {
		return fmt.Errorf("diarization.timeout must not be negative")
	}
	return nil
}
